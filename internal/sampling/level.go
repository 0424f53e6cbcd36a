package sampling

import (
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Level is one independent partition of the population. Categorical levels
// use Categorical; numeric levels use Numeric, whose last entry is always
// the remainder.
type Level struct {
	ID          string               `json:"id"`
	Column      string               `json:"column"`
	ColumnType  table.ColumnType     `json:"columnType"`
	Categorical []CategoricalStratum `json:"categorical,omitempty"`
	Numeric     []NumericStratum     `json:"numeric,omitempty"`
}

// Unset reports whether the level still needs a column.
func (l *Level) Unset() bool { return l.Column == "" }

// Len returns the number of strata in the level.
func (l *Level) Len() int {
	if l.ColumnType == table.Numeric {
		return len(l.Numeric)
	}
	return len(l.Categorical)
}

// Members splits population into the level's strata, aligned with
// Categorical or Numeric. Membership is derived from the rows passed in.
func (l *Level) Members(population []table.Row) [][]table.Row {
	if l.Unset() {
		return make([][]table.Row, l.Len())
	}
	if l.ColumnType == table.Numeric {
		return Claim(population, l.Column, explicitRules(l.Numeric))
	}
	index := make(map[string]int, len(l.Categorical))
	for i, s := range l.Categorical {
		index[s.Value] = i
	}
	out := make([][]table.Row, len(l.Categorical))
	for _, r := range population {
		if i, ok := index[r.Get(l.Column).String()]; ok {
			out[i] = append(out[i], r)
		}
	}
	return out
}

// recompute refreshes counts against population, keeps requested sizes and
// revalidates them.
func (l *Level) recompute(population []table.Row) {
	if l.Unset() {
		l.Categorical, l.Numeric = nil, nil
		return
	}
	if l.ColumnType == table.Numeric {
		rules := explicitRules(l.Numeric)
		rem, _ := findRemainder(l.Numeric)
		groups := Claim(population, l.Column, rules)
		next := make([]NumericStratum, 0, len(rules)+1)
		for i, r := range rules {
			r.Count = len(groups[i])
			next = append(next, r)
		}
		next = append(next, remainder(len(groups[len(rules)]), rem.SampleSize))
		l.Numeric = next
	} else {
		l.Categorical = MergeCategorical(l.Categorical, GroupCategorical(population, l.Column))
	}
	l.validate()
}

// reset rebuilds the strata from scratch, discarding sizes.
func (l *Level) reset(population []table.Row) {
	l.Categorical, l.Numeric = nil, nil
	if l.Unset() {
		return
	}
	if l.ColumnType == table.Numeric {
		l.Numeric = []NumericStratum{remainder(len(population), "")}
		return
	}
	l.Categorical = GroupCategorical(population, l.Column)
}

// normalize guarantees a numeric level ends with exactly one remainder.
func (l *Level) normalize() {
	if l.ColumnType != table.Numeric {
		return
	}
	rem, ok := findRemainder(l.Numeric)
	if !ok {
		rem = remainder(0, "")
	}
	l.Numeric = append(explicitRules(l.Numeric), rem)
}

func (l *Level) validate() {
	for i := range l.Categorical {
		s := &l.Categorical[i]
		s.Error = ValidateSize(s.SampleSize, s.Count)
	}
	for i := range l.Numeric {
		s := &l.Numeric[i]
		s.Error = ValidateSize(s.SampleSize, s.Count)
	}
}

func (l *Level) clone() Level {
	out := *l
	out.Categorical = append([]CategoricalStratum(nil), l.Categorical...)
	out.Numeric = append([]NumericStratum(nil), l.Numeric...)
	return out
}

// StratumError locates a validation failure.
type StratumError struct {
	LevelID string
	Column  string
	Stratum string
	Err     *SizeError
}

func (e StratumError) Error() string {
	return e.Column + " / " + e.Stratum + ": " + e.Err.Error()
}

func (l *Level) errors() []StratumError {
	var out []StratumError
	for _, s := range l.Categorical {
		if s.Error != nil {
			out = append(out, StratumError{LevelID: l.ID, Column: l.Column, Stratum: s.Value, Err: s.Error})
		}
	}
	for _, s := range l.Numeric {
		if s.Error != nil {
			out = append(out, StratumError{LevelID: l.ID, Column: l.Column, Stratum: s.Label, Err: s.Error})
		}
	}
	return out
}
