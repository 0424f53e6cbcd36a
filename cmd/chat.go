package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chatFlags       aiFlags
	chatHistoryPath string
)

var chatCmd = &cobra.Command{
	Use:   "chat <file> <question>",
	Short: "Ask a question about the current view",
	Long: `Ask a question about the current view. The model sees the column names, up to
chat_sample_rows rows and, with --history, the earlier turns of the conversation.`,
	Example: `  stratify chat claims.csv "Which region has the most rejected claims?" --history claims.chat.json
  stratify chat claims.csv "And by month?" --history claims.chat.json`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		question := strings.TrimSpace(strings.Join(args[1:], " "))
		if question == "" {
			return fmt.Errorf("question cannot be empty")
		}
		s, err := chatFlags.open(args[0])
		if err != nil {
			return err
		}
		history, err := loadChatHistory(chatHistoryPath)
		if err != nil {
			return err
		}
		rows := limitRows(s.View(), promptRows(c.ChatSampleRows, ai.ChatRows))
		msgs, err := ai.BuildChatPrompt(s.Dataset().Headers, rows, history, question)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		req := chatFlags.request(c, msgs)
		if chatFlags.dryRun {
			printDryRun(out, req)
			return nil
		}
		runtime, err := c.Runtime(chatFlags.provider)
		if err != nil {
			return err
		}
		ctx, cancel := chatFlags.context()
		defer cancel()
		answer, err := generate(ctx, out, runtime, req, chatFlags.stream)
		if err != nil {
			return err
		}
		if !chatFlags.stream {
			fmt.Fprintln(out, answer)
		}
		if chatHistoryPath == "" {
			return nil
		}
		history = append(history,
			ai.ChatMessage{Sender: "user", Text: question},
			ai.ChatMessage{Sender: "assistant", Text: answer})
		return saveChatHistory(chatHistoryPath, history)
	},
}

// loadChatHistory reads a conversation file. A missing file is an empty
// conversation.
func loadChatHistory(path string) ([]ai.ChatMessage, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	var out []ai.ChatMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse chat history %s: %w", path, err)
	}
	return out, nil
}

func saveChatHistory(path string, history []ai.ChatMessage) error {
	b, err := utils.PrettyJSON(history)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatFlags.bind(chatCmd)
	chatCmd.Flags().StringVar(&chatHistoryPath, "history", "", "JSON file that keeps the conversation between calls")
}
