package view

import (
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Search keeps rows where any header's cell contains query, ignoring case.
// A blank query keeps everything.
func Search(rows []table.Row, headers []string, query string) []table.Row {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	q := strings.ToLower(query)
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(r.Get(h).String()), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
