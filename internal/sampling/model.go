package sampling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// MaxLevels caps the number of concurrent stratification levels.
const MaxLevels = 4

var (
	ErrTooManyLevels   = errors.New("maximum of 4 stratification levels reached")
	ErrUnknownLevel    = errors.New("unknown stratification level")
	ErrUnknownStratum  = errors.New("unknown stratum")
	ErrNotNumericLevel = errors.New("rules apply only to numeric levels")
	ErrRemainderRule   = errors.New("the remainder stratum cannot be removed")
	ErrAutoFillNumeric = errors.New("auto-fill applies only to categorical levels")
)

// Model is the editable set of stratification levels. Every level is an
// independent partition of the same population; levels do not nest.
type Model struct {
	Levels []Level
	newID  func() string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{newID: uuid.NewString}
}

// FromLevels wraps already built levels, for example a rehydrated config.
func FromLevels(levels []Level) *Model {
	m := NewModel()
	for _, l := range levels {
		m.Levels = append(m.Levels, l.clone())
	}
	return m
}

// Snapshot returns a deep copy of the levels.
func (m *Model) Snapshot() []Level {
	out := make([]Level, len(m.Levels))
	for i := range m.Levels {
		out[i] = m.Levels[i].clone()
	}
	return out
}

// Level returns the level with id.
func (m *Model) Level(id string) (*Level, error) {
	for i := range m.Levels {
		if m.Levels[i].ID == id {
			return &m.Levels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, id)
}

// AddLevel appends a level on the first header no other level uses. When
// every header is taken the column is left unset. The column type comes
// from the unfiltered base dataset; counts come from population.
func (m *Model) AddLevel(base table.Dataset, population []table.Row) (*Level, error) {
	if len(m.Levels) >= MaxLevels {
		return nil, ErrTooManyLevels
	}
	used := make(map[string]bool, len(m.Levels))
	for _, l := range m.Levels {
		used[l.Column] = true
	}
	lvl := Level{ID: m.newID(), ColumnType: table.Categorical}
	for _, h := range base.Headers {
		if !used[h] {
			lvl.Column = h
			lvl.ColumnType = table.TypeOf(h, base)
			break
		}
	}
	lvl.reset(population)
	m.Levels = append(m.Levels, lvl)
	return &m.Levels[len(m.Levels)-1], nil
}

// RemoveLevel drops a level by id.
func (m *Model) RemoveLevel(id string) error {
	for i := range m.Levels {
		if m.Levels[i].ID == id {
			m.Levels = append(m.Levels[:i], m.Levels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownLevel, id)
}

// SetColumn retargets a level and rebuilds its strata from scratch. An empty
// column unsets the level.
func (m *Model) SetColumn(id, column string, base table.Dataset, population []table.Row) error {
	l, err := m.Level(id)
	if err != nil {
		return err
	}
	if column != "" && !base.HasColumn(column) {
		return fmt.Errorf("unknown column %q", column)
	}
	l.Column = column
	l.ColumnType = table.Categorical
	if column != "" {
		l.ColumnType = table.TypeOf(column, base)
	}
	l.reset(population)
	return nil
}

// AddRule inserts a rule just before the remainder and re-claims the level.
func (m *Model) AddRule(id string, op Operator, threshold float64, population []table.Row) (string, error) {
	l, err := m.numericLevel(id)
	if err != nil {
		return "", err
	}
	if _, ok := operatorSymbols[op]; !ok {
		return "", fmt.Errorf("unknown operator %q", op)
	}
	rule := NumericStratum{ID: m.newID(), Operator: op, Threshold: threshold, Label: ruleLabel(op, threshold)}
	rules := append(explicitRules(l.Numeric), rule)
	rem, ok := findRemainder(l.Numeric)
	if !ok {
		rem = remainder(0, "")
	}
	l.Numeric = append(rules, rem)
	l.recompute(population)
	return rule.ID, nil
}

// RemoveRule deletes a rule and re-claims the level, since later rules and
// the remainder may pick up its rows.
func (m *Model) RemoveRule(id, ruleID string, population []table.Row) error {
	l, err := m.numericLevel(id)
	if err != nil {
		return err
	}
	if ruleID == RemainderID {
		return ErrRemainderRule
	}
	for i, s := range l.Numeric {
		if s.ID == ruleID {
			l.Numeric = append(l.Numeric[:i:i], l.Numeric[i+1:]...)
			l.recompute(population)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStratum, ruleID)
}

func (m *Model) numericLevel(id string) (*Level, error) {
	l, err := m.Level(id)
	if err != nil {
		return nil, err
	}
	if l.Unset() || l.ColumnType != table.Numeric {
		return nil, ErrNotNumericLevel
	}
	return l, nil
}

// SetSampleSize records a requested size for one stratum, keyed by the
// categorical value or the rule id, and validates it against the stratum's
// current count. The returned error is the stratum's validation state; the
// size is stored either way.
func (m *Model) SetSampleSize(id, key string, size SampleSize) (*SizeError, error) {
	l, err := m.Level(id)
	if err != nil {
		return nil, err
	}
	if l.ColumnType == table.Numeric {
		for i := range l.Numeric {
			if s := &l.Numeric[i]; s.ID == key {
				s.SampleSize = size
				s.Error = ValidateSize(size, s.Count)
				return s.Error, nil
			}
		}
	} else {
		for i := range l.Categorical {
			if s := &l.Categorical[i]; s.Value == key {
				s.SampleSize = size
				s.Error = ValidateSize(size, s.Count)
				return s.Error, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q in level %s", ErrUnknownStratum, key, l.Column)
}

// AutoFill sets every stratum of a level to the same percentage.
func (m *Model) AutoFill(id string, pct float64) error {
	l, err := m.Level(id)
	if err != nil {
		return err
	}
	if l.ColumnType == table.Numeric {
		return ErrAutoFillNumeric
	}
	size := Percent(pct)
	for i := range l.Categorical {
		l.Categorical[i].SampleSize = size
	}
	l.validate()
	return nil
}

// Recompute refreshes every level against a new population.
func (m *Model) Recompute(population []table.Row) {
	for i := range m.Levels {
		m.Levels[i].recompute(population)
	}
}

// Errors lists every stratum currently failing validation.
func (m *Model) Errors() []StratumError {
	var out []StratumError
	for i := range m.Levels {
		out = append(out, m.Levels[i].errors()...)
	}
	return out
}

// HasErrors reports whether a stratified draw is currently blocked.
func (m *Model) HasErrors() bool { return len(m.Errors()) > 0 }
