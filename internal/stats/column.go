// Package stats describes the current view: per-column statistics,
// outliers, correlations, KPIs and chart aggregates.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Summary holds descriptive statistics of a numeric column.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	// Modes is empty when every value occurs equally often.
	Modes  []float64
	StdDev float64
	Min    float64
	Max    float64
	Q1     float64
	Q3     float64
	IQR    float64
}

// ColumnInfo is the analysis of one column over a row set.
type ColumnInfo struct {
	Name     string
	Type     table.ColumnType
	Missing  int
	Distinct int
	Stats    *Summary
	Outliers []table.Row
}

// numericShare reports whether more than 80% of the non-blank cells read
// as numbers and returns those numbers. Unlike type inference this does not
// treat dates as numbers.
func numericShare(rows []table.Row, column string) ([]float64, int, bool) {
	var nums []float64
	valid := 0
	for _, r := range rows {
		v := r.Get(column)
		if v.Blank() {
			continue
		}
		valid++
		if x, ok := table.ToNumber(v); ok {
			nums = append(nums, x)
		}
	}
	return nums, valid, valid > 0 && float64(len(nums))/float64(valid) > table.NumericThreshold
}

// Describe analyzes column over rows.
func Describe(rows []table.Row, column string) ColumnInfo {
	info := ColumnInfo{Name: column, Type: table.Categorical}
	nums, valid, numeric := numericShare(rows, column)
	info.Missing = len(rows) - valid
	info.Distinct = len(table.Distinct(rows, column))
	if !numeric {
		return info
	}
	s := Calculate(nums)
	if s == nil {
		return info
	}
	info.Type = table.Numeric
	info.Stats = s
	info.Outliers = Outliers(rows, column, s.Q1, s.Q3, s.IQR)
	return info
}

// DescribeAll analyzes every header.
func DescribeAll(ds table.Dataset, rows []table.Row) []ColumnInfo {
	out := make([]ColumnInfo, len(ds.Headers))
	for i, h := range ds.Headers {
		out[i] = Describe(rows, h)
	}
	return out
}

// Calculate computes a Summary, or nil for no data. The standard deviation
// is the sample deviation, so a single value yields NaN.
func Calculate(data []float64) *Summary {
	if len(data) == 0 {
		return nil
	}
	s := &Summary{Count: len(data)}
	s.Mean, _ = mstats.Mean(data)
	s.Median, _ = mstats.Median(data)
	s.Min, _ = mstats.Min(data)
	s.Max, _ = mstats.Max(data)
	if len(data) > 1 {
		s.StdDev, _ = mstats.StandardDeviationSample(data)
	} else {
		s.StdDev = math.NaN()
	}
	s.Modes = modes(data)

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	s.Q1 = quartile(sorted, len(sorted)/4)
	s.Q3 = quartile(sorted, 3*len(sorted)/4)
	s.IQR = s.Q3 - s.Q1
	return s
}

// quartile reads sorted at i, averaging with the previous element when the
// length is a multiple of four.
func quartile(sorted []float64, i int) float64 {
	if len(sorted)%4 == 0 {
		return (sorted[i-1] + sorted[i]) / 2
	}
	return sorted[i]
}

// modes returns the most frequent values in the order they reached the top
// count, or nothing when all values tie.
func modes(data []float64) []float64 {
	counts := make(map[float64]int)
	best := 0
	var out []float64
	for _, x := range data {
		counts[x]++
		c := counts[x]
		switch {
		case c > best:
			best = c
			out = []float64{x}
		case c == best && !containsFloat(out, x):
			out = append(out, x)
		}
	}
	if len(out) == len(counts) {
		return nil
	}
	return out
}

func containsFloat(xs []float64, x float64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Outliers returns rows whose leading number falls outside the 1.5 x IQR fences.
func Outliers(rows []table.Row, column string, q1, q3, iqr float64) []table.Row {
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	var out []table.Row
	for _, r := range rows {
		x, ok := table.ParseFloatPrefix(r.Get(column))
		if ok && (x < lo || x > hi) {
			out = append(out, r)
		}
	}
	return out
}
