package main

import "github.com/KaramelBytes/stratify-cli/cmd"

func main() {
	cmd.Execute()
}
