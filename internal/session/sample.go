package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/stratify-cli/internal/history"
	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Draw samples the current view with the session's config. A stratified
// draw with invalid strata is refused with sampling.ErrStrataInvalid and
// leaves any earlier sample in place.
func (s *Session) Draw() (table.Dataset, error) {
	cfg := s.SamplingConfig()
	if cfg.Method == sampling.MethodStratified && s.Model.HasErrors() {
		return table.Dataset{}, fmt.Errorf("%w: %v", sampling.ErrStrataInvalid, s.Model.Errors()[0])
	}
	ds := s.Dataset()
	pop := s.View()
	rows, err := sampling.Draw(cfg, pop, ds.Headers, s.rng)
	if err != nil {
		return table.Dataset{}, err
	}
	out := table.Dataset{Headers: append([]string(nil), ds.Headers...), Rows: rows}
	s.sample = history.New(s.sampleCap, out)
	s.SamplePipeline.Reset()
	s.logger.WithFields(logrus.Fields{
		"method":     cfg.Method,
		"population": len(pop),
		"rows":       len(rows),
	}).Info("sample drawn")
	return out, nil
}

// Sample returns the current sample.
func (s *Session) Sample() (table.Dataset, bool) {
	if s.sample == nil {
		return table.Dataset{}, false
	}
	return s.sample.Current(), true
}

// SampleView applies the sample pipeline to the current sample.
func (s *Session) SampleView() []table.Row {
	ds, ok := s.Sample()
	if !ok {
		return nil
	}
	return s.SamplePipeline.Apply(ds)
}

// SampleDeleteColumn removes a column from the sample only.
func (s *Session) SampleDeleteColumn(column string) error {
	ds, ok := s.Sample()
	if !ok {
		return ErrNoSample
	}
	next, err := table.DeleteColumn(ds, column)
	if err != nil {
		return err
	}
	s.sample.Push(next)
	s.SamplePipeline.DropColumn(column)
	return nil
}

// SampleUndo restores the sample before its last column deletion. It is a
// no-op when there is nothing to undo.
func (s *Session) SampleUndo() bool {
	if s.sample == nil {
		return false
	}
	if _, ok := s.sample.Undo(); !ok {
		return false
	}
	s.SamplePipeline.Reset()
	return true
}

func (s *Session) clearSample() {
	s.sample = nil
	s.SamplePipeline.Reset()
}
