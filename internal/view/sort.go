package view

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// SortSpec orders the view by one column.
type SortSpec struct {
	Key       string
	Direction Direction
}

// ParseSort reads "col" or "col:desc" / "col:asc".
func ParseSort(s string) (*SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	key, dir := s, Ascending
	if i := strings.LastIndex(s, ":"); i >= 0 {
		switch strings.ToLower(s[i+1:]) {
		case "desc", "descending":
			key, dir = s[:i], Descending
		case "asc", "ascending":
			key = s[:i]
		}
	}
	if key == "" {
		return nil, fmt.Errorf("sort needs a column name")
	}
	return &SortSpec{Key: key, Direction: dir}, nil
}

// NextSort cycles a column header click: a new key sorts ascending, the same
// key flips direction.
func NextSort(cur *SortSpec, key string) *SortSpec {
	if cur != nil && cur.Key == key && cur.Direction == Ascending {
		return &SortSpec{Key: key, Direction: Descending}
	}
	return &SortSpec{Key: key, Direction: Ascending}
}

// SortRows returns a stably sorted copy of rows. Cells that both read as
// numbers compare numerically; anything else compares as text with embedded
// digits in natural order.
func SortRows(rows []table.Row, spec *SortSpec) []table.Row {
	out := append([]table.Row(nil), rows...)
	if spec == nil || spec.Key == "" {
		return out
	}
	col := collate.New(language.Und, collate.Numeric)
	sign := 1
	if spec.Direction == Descending {
		sign = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*Compare(col, out[i].Get(spec.Key), out[j].Get(spec.Key)) < 0
	})
	return out
}

// Compare orders two cells for sorting.
func Compare(col *collate.Collator, a, b table.Value) int {
	if x, ok := sortNumber(a); ok {
		if y, ok := sortNumber(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return col.CompareString(a.String(), b.String())
}

func sortNumber(v table.Value) (float64, bool) {
	if v.Blank() {
		return 0, false
	}
	return table.ToNumber(v)
}
