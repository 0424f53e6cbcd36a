package view

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// FilterKind tags a Filter variant.
type FilterKind string

const (
	KindCategorical FilterKind = "categorical"
	KindNumeric     FilterKind = "numeric"
)

// Condition is a numeric filter comparator.
type Condition string

const (
	Equals      Condition = "equals"
	NotEquals   Condition = "notEquals"
	GreaterThan Condition = "greaterThan"
	LessThan    Condition = "lessThan"
	Between     Condition = "between"
)

// ErrInvalidFilter wraps every filter rejection.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter is either an allow-list of exact cell values or a numeric comparator.
type Filter struct {
	Kind      FilterKind
	Values    map[table.Value]struct{}
	Condition Condition
	Value1    *float64
	Value2    *float64
}

// NewCategorical builds an allow-list filter.
func NewCategorical(values ...table.Value) Filter {
	set := make(map[table.Value]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return Filter{Kind: KindCategorical, Values: set}
}

// NewNumeric builds a comparator filter. v2 is only read by Between.
func NewNumeric(cond Condition, v1, v2 *float64) Filter {
	return Filter{Kind: KindNumeric, Condition: cond, Value1: v1, Value2: v2}
}

// Float is a helper for building numeric bounds inline.
func Float(f float64) *float64 { return &f }

// Validate rejects numeric filters with missing bounds or inverted ranges.
func (f Filter) Validate() error {
	switch f.Kind {
	case KindCategorical:
		return nil
	case KindNumeric:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFilter, f.Kind)
	}
	switch f.Condition {
	case Equals, NotEquals, GreaterThan, LessThan:
		if f.Value1 == nil {
			return fmt.Errorf("%w: %s needs a value", ErrInvalidFilter, f.Condition)
		}
	case Between:
		if f.Value1 == nil || f.Value2 == nil {
			return fmt.Errorf("%w: between needs two values", ErrInvalidFilter)
		}
		if *f.Value1 > *f.Value2 {
			return fmt.Errorf("%w: between %v and %v is an empty range", ErrInvalidFilter, *f.Value1, *f.Value2)
		}
	default:
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidFilter, f.Condition)
	}
	return nil
}

// Match reports whether a cell passes the filter.
func (f Filter) Match(v table.Value) bool {
	if f.Kind == KindCategorical {
		_, ok := f.Values[v]
		return ok
	}
	x, ok := table.ParseFloatPrefix(v)
	if !ok {
		return false
	}
	switch f.Condition {
	case Equals:
		return x == *f.Value1
	case NotEquals:
		return x != *f.Value1
	case GreaterThan:
		return x > *f.Value1
	case LessThan:
		return x < *f.Value1
	case Between:
		return *f.Value1 <= x && x <= *f.Value2
	}
	return false
}

// FilterMap holds at most one filter per column.
type FilterMap map[string]Filter

// Set validates f and stores it for column. An invalid filter leaves the map untouched.
func (m FilterMap) Set(column string, f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	m[column] = f
	return nil
}

// Clear removes the filter on column.
func (m FilterMap) Clear(column string) { delete(m, column) }

// ApplyFilters keeps rows passing every filter. The input is not modified.
func ApplyFilters(rows []table.Row, filters FilterMap) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if passes(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func passes(r table.Row, filters FilterMap) bool {
	for col, f := range filters {
		if !f.Match(r.Get(col)) {
			return false
		}
	}
	return true
}
