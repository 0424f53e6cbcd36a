package sampling

import (
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Rehydrate re-evaluates a saved config against another dataset. Counts are
// recomputed from population while requested sizes are kept. Levels whose
// column is missing from base come back unset with no strata, and must be
// retargeted before a stratified draw uses them.
func Rehydrate(cfg Config, base table.Dataset, population []table.Row) Config {
	out := cfg
	out.Levels = make([]Level, 0, len(cfg.Levels))
	for _, saved := range cfg.Levels {
		l := saved.clone()
		if l.Column == "" || !base.HasColumn(l.Column) {
			l.Column = ""
			l.ColumnType = table.Categorical
			l.Categorical, l.Numeric = nil, nil
			out.Levels = append(out.Levels, l)
			continue
		}
		if l.ColumnType != table.Numeric {
			l.ColumnType = table.Categorical
		}
		if l.ColumnType == table.Numeric {
			for i := range l.Numeric {
				if !l.Numeric[i].IsRemainder() && l.Numeric[i].Label == "" {
					l.Numeric[i].Label = ruleLabel(l.Numeric[i].Operator, l.Numeric[i].Threshold)
				}
			}
			l.normalize()
		}
		l.recompute(population)
		out.Levels = append(out.Levels, l)
	}
	if out.Method == "" {
		out.Method = MethodRandom
	}
	return out
}
