package view

import (
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Pipeline is the derived view over a dataset: filter, then search, then sort.
// Apply is pure in its inputs.
type Pipeline struct {
	Filters FilterMap
	Query   string
	Sort    *SortSpec
}

// NewPipeline returns an empty pipeline that passes every row through.
func NewPipeline() *Pipeline {
	return &Pipeline{Filters: FilterMap{}}
}

// Apply runs the pipeline over ds.
func (p *Pipeline) Apply(ds table.Dataset) []table.Row {
	rows := ApplyFilters(ds.Rows, p.Filters)
	rows = Search(rows, ds.Headers, p.Query)
	return SortRows(rows, p.Sort)
}

// Reset drops every filter, the search query and the sort.
func (p *Pipeline) Reset() {
	p.Filters = FilterMap{}
	p.Query = ""
	p.Sort = nil
}

// Active reports whether any part of the pipeline narrows or reorders rows.
func (p *Pipeline) Active() bool {
	return len(p.Filters) > 0 || p.Query != "" || p.Sort != nil
}

// DropColumn forgets filters and sort keyed on a removed column.
func (p *Pipeline) DropColumn(column string) {
	delete(p.Filters, column)
	if p.Sort != nil && p.Sort.Key == column {
		p.Sort = nil
	}
}
