package ai

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
)

// ChatRows is how many rows of the current view a chat request sees.
const ChatRows = 100

// turnTokens caps each earlier turn quoted back to the model.
const turnTokens = 400

const chatSystem = "You are a friendly, helpful data analysis assistant for an internal auditor. " +
	"Your knowledge is strictly limited to the data provided. Do not answer questions unrelated to this dataset; " +
	"if the data cannot answer a question, say clearly that the information is not in the dataset. " +
	"Keep answers short and useful and use **bold** for important points."

// ChatMessage is one turn of a conversation about the data.
type ChatMessage struct {
	Sender string `json:"sender"` // "user" or "assistant"
	Text   string `json:"text"`
}

// BuildChatPrompt embeds headers, up to ChatRows rows, the conversation so
// far and the new question into a single request.
func BuildChatPrompt(headers []string, rows []table.Row, history []ChatMessage, question string) ([]Message, error) {
	sample, err := rowsJSON(rows, ChatRows)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("Column names in the dataset:\n")
	b.WriteString(strings.Join(headers, ", "))
	b.WriteString(fmt.Sprintf("\n\nData sample (%d rows):\n", min(len(rows), ChatRows)))
	b.WriteString(sample)
	b.WriteString("\n\nConversation so far:\n")
	for _, m := range history {
		who := "Assistant"
		if m.Sender == "user" {
			who = "User"
		}
		text := m.Text
		if clipped := utils.TruncateToTokenLimit(text, turnTokens); clipped != text {
			text = clipped + " [...]"
		}
		b.WriteString(who + ": " + text + "\n")
	}
	b.WriteString("\nUsing all of the above, answer the user's question.\nUser: ")
	b.WriteString(question)
	return []Message{
		{Role: "system", Content: chatSystem},
		{Role: "user", Content: b.String()},
	}, nil
}
