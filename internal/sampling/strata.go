package sampling

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// RemainderID is the reserved id of the catch-all numeric stratum.
const RemainderID = "other"

// RemainderLabel names the catch-all stratum in reports.
const RemainderLabel = "Other (remainder)"

// Operator is a numeric rule comparator.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

var operatorSymbols = map[Operator]string{
	OpEq: "=", OpNeq: "≠", OpGt: ">", OpGte: "≥", OpLt: "<", OpLte: "≤",
}

// ParseOperator accepts an operator name or its symbol, including ASCII
// spellings such as ">=" and "!=".
func ParseOperator(s string) (Operator, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "=", "==":
		return OpEq, nil
	case "!=", "<>":
		return OpNeq, nil
	case ">=":
		return OpGte, nil
	case "<=":
		return OpLte, nil
	}
	for op, sym := range operatorSymbols {
		if s == string(op) || s == sym {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operator %q (eq|neq|gt|gte|lt|lte)", s)
}

// Symbol returns the display form of the operator.
func (o Operator) Symbol() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return string(o)
}

// Holds reports whether x satisfies the operator against threshold.
func (o Operator) Holds(x, threshold float64) bool {
	switch o {
	case OpEq:
		return x == threshold
	case OpNeq:
		return x != threshold
	case OpGt:
		return x > threshold
	case OpGte:
		return x >= threshold
	case OpLt:
		return x < threshold
	case OpLte:
		return x <= threshold
	}
	return false
}

// CategoricalStratum is one distinct value of a categorical level.
type CategoricalStratum struct {
	Value      string     `json:"value"`
	Count      int        `json:"count"`
	SampleSize SampleSize `json:"sampleSize"`
	Error      *SizeError `json:"-"`
}

// NumericStratum is a rule of a numeric level, or its remainder.
type NumericStratum struct {
	ID         string     `json:"id"`
	Operator   Operator   `json:"operator,omitempty"`
	Threshold  float64    `json:"value"`
	Label      string     `json:"label"`
	Count      int        `json:"count"`
	SampleSize SampleSize `json:"sampleSize"`
	Error      *SizeError `json:"-"`
}

// IsRemainder reports whether s is the catch-all stratum.
func (s NumericStratum) IsRemainder() bool { return s.ID == RemainderID }

func ruleLabel(op Operator, threshold float64) string {
	return op.Symbol() + " " + table.FormatNumber(threshold)
}

func remainder(count int, size SampleSize) NumericStratum {
	return NumericStratum{ID: RemainderID, Label: RemainderLabel, Count: count, SampleSize: size}
}

// GroupCategorical counts a column's values by their text form, in order of
// first appearance. Every stratum starts with a size of "0".
func GroupCategorical(rows []table.Row, column string) []CategoricalStratum {
	index := make(map[string]int)
	var out []CategoricalStratum
	for _, r := range rows {
		key := r.Get(column).String()
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, CategoricalStratum{Value: key, Count: 1, SampleSize: "0"})
	}
	return out
}

// MergeCategorical carries sizes from prev onto fresh by value. Values new to
// fresh, or whose previous size was blank, get "0"; values missing from fresh
// are dropped.
func MergeCategorical(prev, fresh []CategoricalStratum) []CategoricalStratum {
	sizes := make(map[string]SampleSize, len(prev))
	for _, s := range prev {
		sizes[s.Value] = s.SampleSize
	}
	out := make([]CategoricalStratum, len(fresh))
	for i, s := range fresh {
		s.SampleSize = "0"
		if sz, ok := sizes[s.Value]; ok && strings.TrimSpace(string(sz)) != "" {
			s.SampleSize = sz
		}
		s.Error = nil
		out[i] = s
	}
	return out
}

// Claim assigns each row to the first rule it satisfies. The result has one
// group per rule plus a final remainder group. Cells that do not read as
// numbers always land in the remainder.
func Claim(rows []table.Row, column string, rules []NumericStratum) [][]table.Row {
	groups := make([][]table.Row, len(rules)+1)
	for _, r := range rows {
		i := claimIndex(r.Get(column), rules)
		groups[i] = append(groups[i], r)
	}
	return groups
}

func claimIndex(v table.Value, rules []NumericStratum) int {
	x, ok := table.ParseFloatPrefix(v)
	if ok {
		for i, rule := range rules {
			if rule.Operator.Holds(x, rule.Threshold) {
				return i
			}
		}
	}
	return len(rules)
}

// explicitRules returns the user rules without the remainder.
func explicitRules(strata []NumericStratum) []NumericStratum {
	out := make([]NumericStratum, 0, len(strata))
	for _, s := range strata {
		if !s.IsRemainder() {
			out = append(out, s)
		}
	}
	return out
}

func findRemainder(strata []NumericStratum) (NumericStratum, bool) {
	for _, s := range strata {
		if s.IsRemainder() {
			return s, true
		}
	}
	return NumericStratum{}, false
}
