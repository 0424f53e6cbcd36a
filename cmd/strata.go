package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/stats"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// printStrata renders each level as a table. Levels and rules are numbered
// from 1 so they can be addressed in the shell.
func printStrata(w io.Writer, levels []sampling.Level) {
	if len(levels) == 0 {
		fmt.Fprintln(w, "(no stratification levels)")
		return
	}
	for i, l := range levels {
		col := l.Column
		if l.Unset() {
			col = "(unset)"
		}
		fmt.Fprintf(w, "Level %d: %s [%s]\n", i+1, col, l.ColumnType)
		var recs [][]string
		if l.ColumnType == table.Numeric {
			for j, s := range l.Numeric {
				id := fmt.Sprint(j + 1)
				if s.IsRemainder() {
					id = "-"
				}
				recs = append(recs, []string{id, s.Label, fmt.Sprint(s.Count), string(s.SampleSize), sizeStatus(s.Error)})
			}
		} else {
			for _, s := range l.Categorical {
				recs = append(recs, []string{"", stratumName(s.Value), fmt.Sprint(s.Count), string(s.SampleSize), sizeStatus(s.Error)})
			}
		}
		fmt.Fprint(w, stats.MarkdownTable([]string{"#", "Stratum", "Records", "Sample size", "Status"}, recs))
	}
}

func sizeStatus(err *sampling.SizeError) string {
	if err == nil {
		return "ok"
	}
	return "✗ " + err.Error()
}

// reportStrataErrors prints every invalid stratum and reports whether any
// were found.
func reportStrataErrors(w io.Writer, m *sampling.Model) bool {
	errs := m.Errors()
	for _, e := range errs {
		fmt.Fprintf(w, "✗ %s\n", e.Error())
	}
	return len(errs) > 0
}
