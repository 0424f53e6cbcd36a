package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage saved sampling configurations",
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		names := store.Names()
		if len(names) == 0 {
			fmt.Fprintln(out, "(no saved configurations)")
			return nil
		}
		for _, n := range names {
			e := store.Entries[n]
			fmt.Fprintf(out, "- %s: %s (from %s, updated %s)\n", n, e.Config.Describe(), e.Source, e.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var configsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved configuration with its strata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWorkspace()
		if err != nil {
			return err
		}
		e, err := store.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name: %s\n", e.Name)
		fmt.Fprintf(out, "Source: %s\n", e.Source)
		fmt.Fprintf(out, "Created: %s\n", e.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Updated: %s\n", e.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Method: %s\n", e.Config.Describe())
		if len(e.Config.Levels) > 0 {
			printStrata(out, e.Config.Levels)
		}
		return nil
	},
}

var configsRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a saved configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWorkspace()
		if err != nil {
			return err
		}
		if err := store.Rename(args[0], args[1]); err != nil {
			return err
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed '%s' to '%s'\n", args[0], args[1])
		return nil
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved configuration",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openWorkspace()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configsCmd)
	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsShowCmd)
	configsCmd.AddCommand(configsRenameCmd)
	configsCmd.AddCommand(configsDeleteCmd)
}
