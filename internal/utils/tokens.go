package utils

// charsPerToken is the rough size of a token for prompt budgeting.
const charsPerToken = 4

// CountTokens estimates the tokens in text. Any non-empty text counts as at
// least one token.
func CountTokens(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	if t := n / charsPerToken; t > 0 {
		return t
	}
	return 1
}

// TruncateToTokenLimit cuts text to roughly limit tokens.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if n := limit * charsPerToken; n < len(runes) {
		return string(runes[:n])
	}
	return text
}

// Section is a labelled part of a prompt.
type Section struct {
	Label string
	Text  string
}

// TokenBreakdown estimates tokens per section, keeping section order.
func TokenBreakdown(sections []Section) ([]int, int) {
	out := make([]int, len(sections))
	total := 0
	for i, s := range sections {
		out[i] = CountTokens(s.Text)
		total += out[i]
	}
	return out, total
}
