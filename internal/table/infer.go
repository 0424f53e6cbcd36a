package table

// ColumnType is the inferred kind of a column.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Categorical ColumnType = "categorical"
)

// NumericThreshold is the share of non-blank cells that must coerce for a
// column to count as numeric. The comparison is strict.
const NumericThreshold = 0.8

// IsNumeric reports whether column is numeric in ds. Callers pass the
// unfiltered base dataset so the answer does not move with the view.
func IsNumeric(column string, ds Dataset) bool {
	return isNumericRows(column, ds.Rows)
}

func isNumericRows(column string, rows []Row) bool {
	var total, ok int
	for _, r := range rows {
		v := r.Get(column)
		if v.Blank() {
			continue
		}
		total++
		if _, good := Coerce(v); good {
			ok++
		}
	}
	if total == 0 {
		return false
	}
	return float64(ok)/float64(total) > NumericThreshold
}

// TypeOf returns the inferred ColumnType of column in ds.
func TypeOf(column string, ds Dataset) ColumnType {
	if IsNumeric(column, ds) {
		return Numeric
	}
	return Categorical
}

// Types infers every header of ds.
func Types(ds Dataset) map[string]ColumnType {
	out := make(map[string]ColumnType, len(ds.Headers))
	for _, h := range ds.Headers {
		out[h] = TypeOf(h, ds)
	}
	return out
}
