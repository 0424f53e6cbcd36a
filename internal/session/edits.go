package session

import (
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// DeleteColumn removes a column. Only the filter and sort on that column
// are dropped; levels stratifying on it become unset.
func (s *Session) DeleteColumn(column string) error {
	ds, err := table.DeleteColumn(s.Dataset(), column)
	if err != nil {
		return err
	}
	s.commit(ds)
	s.Pipeline.DropColumn(column)
	s.resyncModel()
	return nil
}

// DeleteRow removes the row at index of the current dataset, not the view.
// View state is kept.
func (s *Session) DeleteRow(index int) error {
	ds, err := table.DeleteRow(s.Dataset(), index)
	if err != nil {
		return err
	}
	s.commit(ds)
	s.Restratify()
	return nil
}

// MoveColumn reorders headers. View state is kept.
func (s *Session) MoveColumn(from, to int) error {
	ds, err := table.MoveColumn(s.Dataset(), from, to)
	if err != nil {
		return err
	}
	s.commit(ds)
	return nil
}

// FindDuplicates reports duplicate rows of the current dataset.
func (s *Session) FindDuplicates() table.DuplicateReport {
	return table.FindDuplicates(s.Dataset())
}

// RemoveDuplicates keeps the first occurrence of each row. Nothing is
// committed when there are no duplicates.
func (s *Session) RemoveDuplicates() int {
	ds, removed := table.Dedupe(s.Dataset())
	if removed == 0 {
		return 0
	}
	s.commit(ds)
	s.afterStructuralEdit()
	return removed
}

// BlankSummary reports fully blank columns and rows.
func (s *Session) BlankSummary() table.BlankSummary {
	return table.FindBlanks(s.Dataset())
}

// CleanBlanks drops fully blank rows and/or columns and returns what was
// found before cleaning.
func (s *Session) CleanBlanks(rows, cols bool) table.BlankSummary {
	sum := s.BlankSummary()
	if (!rows || sum.Rows == 0) && (!cols || len(sum.Columns) == 0) {
		return sum
	}
	s.commit(table.CleanBlanks(s.Dataset(), rows, cols))
	s.afterStructuralEdit()
	return sum
}

func (s *Session) afterStructuralEdit() {
	s.Pipeline.Reset()
	s.clearSample()
	s.resyncModel()
}
