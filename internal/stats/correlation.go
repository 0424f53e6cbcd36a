package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Correlations builds the matrix over numeric columns of rows, or returns
// nil with fewer than two numeric columns. Each pair uses only rows where
// both cells read as numbers; undefined coefficients become 0.
func Correlations(rows []table.Row, headers []string) *CorrMatrix {
	var cols []string
	for _, h := range headers {
		if _, _, ok := numericShare(rows, h); ok {
			cols = append(cols, h)
		}
	}
	if len(cols) < 2 {
		return nil
	}
	vals := make([][]float64, len(cols))
	for i, c := range cols {
		vals[i] = make([]float64, len(rows))
		for k, r := range rows {
			x, ok := table.ParseFloatPrefix(r.Get(c))
			if !ok {
				x = math.NaN()
			}
			vals[i][k] = x
		}
	}
	n := len(cols)
	m := &CorrMatrix{Columns: cols, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(vals[i], vals[j])
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return m
}

func pearson(a, b []float64) float64 {
	var x, y []float64
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
