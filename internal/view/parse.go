package view

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

var (
	keywordExpr = regexp.MustCompile(`(?i)^(.+?)\s+(in|between)\s+(.+)$`)
	opExpr      = regexp.MustCompile(`^(.+?)\s*(!=|=|>|<)\s*(.*)$`)
)

// ParseFilter turns a command-line expression into a column filter:
//
//	region in North|South
//	amount between 10..20
//	amount>1000   amount<0   amount=5   amount!=5
//
// On numeric columns "=" and "!=" compare numbers; on categorical columns
// they select or exclude values. Categorical labels resolve to the
// column's distinct cells whose text matches, so "5" selects both the
// number 5 and the text "5" when both occur.
func ParseFilter(expr string, ds table.Dataset) (string, Filter, error) {
	expr = strings.TrimSpace(expr)
	if m := keywordExpr.FindStringSubmatch(expr); m != nil {
		col, kw, arg := strings.TrimSpace(m[1]), strings.ToLower(m[2]), strings.TrimSpace(m[3])
		if err := knownColumn(ds, col); err != nil {
			return "", Filter{}, err
		}
		if kw == "in" {
			f, err := allowList(ds, col, strings.Split(arg, "|"), false)
			return col, f, err
		}
		lo, hi, ok := strings.Cut(arg, "..")
		if !ok {
			return "", Filter{}, fmt.Errorf("%w: between expects lo..hi, got %q", ErrInvalidFilter, arg)
		}
		v1, err := parseBound(lo)
		if err != nil {
			return "", Filter{}, err
		}
		v2, err := parseBound(hi)
		if err != nil {
			return "", Filter{}, err
		}
		f := NewNumeric(Between, &v1, &v2)
		return col, f, f.Validate()
	}
	m := opExpr.FindStringSubmatch(expr)
	if m == nil {
		return "", Filter{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidFilter, expr)
	}
	col, op, arg := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])
	if err := knownColumn(ds, col); err != nil {
		return "", Filter{}, err
	}
	numeric := table.IsNumeric(col, ds)
	if !numeric && (op == "=" || op == "!=") {
		f, err := allowList(ds, col, []string{arg}, op == "!=")
		return col, f, err
	}
	v, err := parseBound(arg)
	if err != nil {
		return "", Filter{}, err
	}
	cond := map[string]Condition{"=": Equals, "!=": NotEquals, ">": GreaterThan, "<": LessThan}[op]
	f := NewNumeric(cond, &v, nil)
	return col, f, f.Validate()
}

func knownColumn(ds table.Dataset, col string) error {
	if !ds.HasColumn(col) {
		return fmt.Errorf("%w: unknown column %q", ErrInvalidFilter, col)
	}
	return nil
}

func parseBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidFilter, s)
	}
	return v, nil
}

// allowList selects the distinct cells whose text is one of labels, or every
// other distinct cell when exclude is set.
func allowList(ds table.Dataset, col string, labels []string, exclude bool) (Filter, error) {
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[strings.TrimSpace(l)] = true
	}
	var picked []table.Value
	matched := make(map[string]bool)
	for _, v := range table.Distinct(ds.Rows, col) {
		s := v.String()
		if want[s] {
			matched[s] = true
		}
		if want[s] != exclude {
			picked = append(picked, v)
		}
	}
	for l := range want {
		if !matched[l] {
			return Filter{}, fmt.Errorf("%w: column %q has no value %q", ErrInvalidFilter, col, l)
		}
	}
	return NewCategorical(picked...), nil
}
