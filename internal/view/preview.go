package view

import (
	"fmt"
	"math/rand"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// PreviewMode selects which rows a preview shows.
type PreviewMode string

const (
	PreviewFirst  PreviewMode = "first"
	PreviewLast   PreviewMode = "last"
	PreviewRandom PreviewMode = "random"
)

// ParsePreviewMode validates a CLI value.
func ParsePreviewMode(s string) (PreviewMode, error) {
	switch m := PreviewMode(s); m {
	case PreviewFirst, PreviewLast, PreviewRandom:
		return m, nil
	case "":
		return PreviewFirst, nil
	}
	return "", fmt.Errorf("unknown preview mode %q (first|last|random)", s)
}

// Preview returns up to n rows. Random mode shuffles with rng and is
// intentionally non-deterministic unless the caller seeds rng.
func Preview(rows []table.Row, n int, mode PreviewMode, rng *rand.Rand) []table.Row {
	if n <= 0 || len(rows) == 0 {
		return nil
	}
	if n > len(rows) {
		n = len(rows)
	}
	switch mode {
	case PreviewLast:
		return append([]table.Row(nil), rows[len(rows)-n:]...)
	case PreviewRandom:
		idx := rng.Perm(len(rows))[:n]
		out := make([]table.Row, n)
		for i, j := range idx {
			out[i] = rows[j]
		}
		return out
	default:
		return append([]table.Row(nil), rows[:n]...)
	}
}
