package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Row maps column names to cells. A missing key reads as Empty.
type Row map[string]Value

// Get returns the cell for column, Empty when absent.
func (r Row) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered header list plus rows interpreted against it.
// Datasets are treated as immutable snapshots: edits build new ones.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// New builds a dataset, rejecting duplicate or empty header names.
func New(headers []string, rows []Row) (Dataset, error) {
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		if h == "" {
			return Dataset{}, fmt.Errorf("header %d is empty", i+1)
		}
		if _, ok := seen[h]; ok {
			return Dataset{}, fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = struct{}{}
	}
	return Dataset{Headers: append([]string(nil), headers...), Rows: rows}, nil
}

// FromRecords builds a dataset from a header record and string records,
// the shape produced by delimited-text readers. Short records leave missing
// columns Empty; extra fields are ignored.
func FromRecords(headers []string, records [][]string) (Dataset, error) {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = ParseCell(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return New(headers, rows)
}

// Len returns the row count.
func (d Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether name is a current header.
func (d Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// ColumnIndex returns the header position of name, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of one column in row order.
func (d Dataset) Column(name string) []Value {
	out := make([]Value, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Get(name)
	}
	return out
}

// Distinct returns the distinct cells of a column in first-appearance order.
func Distinct(rows []Row, column string) []Value {
	seen := make(map[Value]struct{})
	var out []Value
	for _, r := range rows {
		v := r.Get(column)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Records renders rows as string records in header order.
func Records(headers []string, rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, len(headers))
		for j, h := range headers {
			rec[j] = r.Get(h).String()
		}
		out[i] = rec
	}
	return out
}

// RowKey is the content identity of a row over headers. Cells keep their
// kind, so the number 1 and the text "1" produce different keys.
func RowKey(row Row, headers []string) string {
	var b strings.Builder
	for _, h := range headers {
		v := row.Get(h)
		switch v.kind {
		case KindNumber:
			b.WriteByte('n')
			b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
		case KindText:
			b.WriteByte('s')
			b.WriteString(strconv.Quote(v.text))
		default:
			b.WriteByte('_')
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// duplicateKey is RowKey with Empty read as the empty string.
func duplicateKey(row Row, headers []string) string {
	var b strings.Builder
	for _, h := range headers {
		v := row.Get(h)
		if v.kind == KindEmpty {
			v = Text("")
		}
		if v.kind == KindNumber {
			b.WriteByte('n')
			b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
		} else {
			b.WriteByte('s')
			b.WriteString(strconv.Quote(v.text))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
