package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// KPI is the headline summary of a row set.
type KPI struct {
	Rows           int
	Columns        int
	NumericColumns int
	MissingValues  int
}

// Summarize computes KPIs over rows using the column types of ds.
func Summarize(ds table.Dataset, rows []table.Row) KPI {
	k := KPI{Rows: len(rows), Columns: len(ds.Headers)}
	for _, h := range ds.Headers {
		if table.IsNumeric(h, ds) {
			k.NumericColumns++
		}
		for _, r := range rows {
			if r.Get(h).Blank() {
				k.MissingValues++
			}
		}
	}
	return k
}

// Report is a markdown-friendly analysis of the current view.
type Report struct {
	Name     string
	KPI      KPI
	Cols     []ColumnInfo
	Corr     *CorrMatrix
	Samples  [][]string
	Headers  []string
	Warnings []string
}

// Options controls report content.
type Options struct {
	// Columns limits the column section; empty means all headers.
	Columns []string
	// Correlations adds the correlation section.
	Correlations bool
	// SampleRows is the number of example rows to include.
	SampleRows int
	// MaxOutliers caps listed outlier rows per column.
	MaxOutliers int
}

// Build assembles a report for rows of ds.
func Build(name string, ds table.Dataset, rows []table.Row, opt Options) *Report {
	r := &Report{Name: name, KPI: Summarize(ds, rows), Headers: ds.Headers}
	cols := opt.Columns
	if len(cols) == 0 {
		cols = ds.Headers
	}
	for _, c := range cols {
		if !ds.HasColumn(c) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("unknown column %q skipped", c))
			continue
		}
		r.Cols = append(r.Cols, Describe(rows, c))
	}
	if opt.Correlations {
		r.Corr = Correlations(rows, ds.Headers)
		if r.Corr == nil {
			r.Warnings = append(r.Warnings, "fewer than two numeric columns; no correlations")
		}
	}
	n := opt.SampleRows
	if n > len(rows) {
		n = len(rows)
	}
	if n > 0 {
		r.Samples = table.Records(ds.Headers, rows[:n])
	}
	if opt.MaxOutliers > 0 {
		for i := range r.Cols {
			if len(r.Cols[i].Outliers) > opt.MaxOutliers {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d outliers, showing %d", r.Cols[i].Name, len(r.Cols[i].Outliers), opt.MaxOutliers))
				r.Cols[i].Outliers = r.Cols[i].Outliers[:opt.MaxOutliers]
			}
		}
	}
	return r
}

func fmtNum(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", x)
}

// Markdown renders the report with bracketed section headers.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.KPI.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d)\n", r.KPI.Columns, r.KPI.NumericColumns))
	b.WriteString(fmt.Sprintf("Missing values: %d\n\n", r.KPI.MissingValues))

	b.WriteString("[COLUMNS]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, distinct %d)", safeName(c.Name), c.Type, c.Missing, c.Distinct))
		if s := c.Stats; s != nil {
			b.WriteString(fmt.Sprintf(" - mean %s, median %s, std %s, min %s, max %s, Q1 %s, Q3 %s, IQR %s",
				fmtNum(s.Mean), fmtNum(s.Median), fmtNum(s.StdDev), fmtNum(s.Min), fmtNum(s.Max),
				fmtNum(s.Q1), fmtNum(s.Q3), fmtNum(s.IQR)))
			if len(s.Modes) > 0 {
				ms := make([]string, len(s.Modes))
				for i, m := range s.Modes {
					ms[i] = fmtNum(m)
				}
				b.WriteString("; mode " + strings.Join(ms, ", "))
			}
			b.WriteString(fmt.Sprintf("; outliers %d", len(c.Outliers)))
		}
		b.WriteString("\n")
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: r.Corr.Values[i][j]})
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	var withOutliers []ColumnInfo
	for _, c := range r.Cols {
		if len(c.Outliers) > 0 {
			withOutliers = append(withOutliers, c)
		}
	}
	if len(withOutliers) > 0 {
		b.WriteString("\n[OUTLIERS]\n")
		for _, c := range withOutliers {
			vals := make([]string, len(c.Outliers))
			for i, row := range c.Outliers {
				vals[i] = safeVal(row.Get(c.Name).String())
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, strings.Join(vals, ", ")))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString(MarkdownTable(r.Headers, r.Samples))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// MarkdownTable renders records as a pipe table, clipping long cells.
func MarkdownTable(headers []string, records [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range headers {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range headers {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range records {
		b.WriteString("| ")
		for i := range headers {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if r := []rune(val); len(r) > 80 {
				val = string(r[:77]) + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
