package table

import (
	"errors"
	"fmt"
)

// ErrLastColumn is returned when an edit would leave a dataset without columns.
var ErrLastColumn = errors.New("cannot delete the last remaining column")

// DuplicateGroup is a set of rows sharing the same content.
type DuplicateGroup struct {
	Row     Row
	Count   int
	Indexes []int
}

// DuplicateReport summarizes repeated rows in a dataset.
type DuplicateReport struct {
	Groups []DuplicateGroup
	// Removable counts rows beyond the first of each group.
	Removable int
}

// FindDuplicates groups rows with identical values over the headers, with
// missing cells read as the empty string. Groups appear in first-seen order.
func FindDuplicates(ds Dataset) DuplicateReport {
	index := make(map[string]int)
	var groups []DuplicateGroup
	for i, r := range ds.Rows {
		k := duplicateKey(r, ds.Headers)
		if gi, ok := index[k]; ok {
			groups[gi].Count++
			groups[gi].Indexes = append(groups[gi].Indexes, i)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, DuplicateGroup{Row: r, Count: 1, Indexes: []int{i}})
	}
	var rep DuplicateReport
	for _, g := range groups {
		if g.Count > 1 {
			rep.Groups = append(rep.Groups, g)
			rep.Removable += g.Count - 1
		}
	}
	return rep
}

// DuplicateRows returns every row belonging to a duplicate group, grouped.
func (r DuplicateReport) DuplicateRows(ds Dataset) []Row {
	var out []Row
	for _, g := range r.Groups {
		for _, i := range g.Indexes {
			out = append(out, ds.Rows[i])
		}
	}
	return out
}

// Dedupe keeps the first occurrence of every row and reports how many were dropped.
func Dedupe(ds Dataset) (Dataset, int) {
	seen := make(map[string]struct{}, len(ds.Rows))
	rows := make([]Row, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		k := duplicateKey(r, ds.Headers)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, r)
	}
	return Dataset{Headers: ds.Headers, Rows: rows}, len(ds.Rows) - len(rows)
}

// BlankSummary lists fully blank columns and counts fully blank rows.
type BlankSummary struct {
	Columns []string
	Rows    int
}

// Empty reports whether nothing needs cleaning.
func (b BlankSummary) Empty() bool { return len(b.Columns) == 0 && b.Rows == 0 }

// FindBlanks reports columns and rows where every cell is missing or whitespace.
func FindBlanks(ds Dataset) BlankSummary {
	var s BlankSummary
	for _, h := range ds.Headers {
		blank := true
		for _, r := range ds.Rows {
			if !r.Get(h).Whitespace() {
				blank = false
				break
			}
		}
		if blank {
			s.Columns = append(s.Columns, h)
		}
	}
	for _, r := range ds.Rows {
		if blankRow(r, ds.Headers) {
			s.Rows++
		}
	}
	return s
}

func blankRow(r Row, headers []string) bool {
	for _, h := range headers {
		if !r.Get(h).Whitespace() {
			return false
		}
	}
	return true
}

// CleanBlanks drops fully blank columns and/or rows. Blank rows are judged
// against the headers that remain after column removal.
func CleanBlanks(ds Dataset, rows, cols bool) Dataset {
	out := ds
	if cols {
		drop := make(map[string]struct{})
		for _, c := range FindBlanks(ds).Columns {
			drop[c] = struct{}{}
		}
		if len(drop) > 0 {
			headers := make([]string, 0, len(ds.Headers))
			for _, h := range ds.Headers {
				if _, ok := drop[h]; !ok {
					headers = append(headers, h)
				}
			}
			next := make([]Row, len(ds.Rows))
			for i, r := range ds.Rows {
				nr := r.Clone()
				for c := range drop {
					delete(nr, c)
				}
				next[i] = nr
			}
			out = Dataset{Headers: headers, Rows: next}
		}
	}
	if rows {
		kept := make([]Row, 0, len(out.Rows))
		for _, r := range out.Rows {
			if !blankRow(r, out.Headers) {
				kept = append(kept, r)
			}
		}
		out = Dataset{Headers: out.Headers, Rows: kept}
	}
	return out
}

// DeleteColumn removes a column from the headers and every row.
func DeleteColumn(ds Dataset, column string) (Dataset, error) {
	idx := ds.ColumnIndex(column)
	if idx < 0 {
		return Dataset{}, fmt.Errorf("unknown column %q", column)
	}
	if len(ds.Headers) <= 1 {
		return Dataset{}, ErrLastColumn
	}
	headers := make([]string, 0, len(ds.Headers)-1)
	headers = append(headers, ds.Headers[:idx]...)
	headers = append(headers, ds.Headers[idx+1:]...)
	rows := make([]Row, len(ds.Rows))
	for i, r := range ds.Rows {
		nr := r.Clone()
		delete(nr, column)
		rows[i] = nr
	}
	return Dataset{Headers: headers, Rows: rows}, nil
}

// DeleteRow removes the row at index.
func DeleteRow(ds Dataset, index int) (Dataset, error) {
	if index < 0 || index >= len(ds.Rows) {
		return Dataset{}, fmt.Errorf("row %d out of range (0..%d)", index, len(ds.Rows)-1)
	}
	rows := make([]Row, 0, len(ds.Rows)-1)
	rows = append(rows, ds.Rows[:index]...)
	rows = append(rows, ds.Rows[index+1:]...)
	return Dataset{Headers: ds.Headers, Rows: rows}, nil
}

// MoveColumn moves the header at from to position to. Rows are unchanged.
func MoveColumn(ds Dataset, from, to int) (Dataset, error) {
	n := len(ds.Headers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return Dataset{}, fmt.Errorf("column position out of range (0..%d)", n-1)
	}
	headers := append([]string(nil), ds.Headers...)
	h := headers[from]
	headers = append(headers[:from], headers[from+1:]...)
	headers = append(headers[:to], append([]string{h}, headers[to:]...)...)
	return Dataset{Headers: headers, Rows: ds.Rows}, nil
}
