// Package session owns a working dataset and everything derived from it:
// the view pipeline, the stratification model, and the last drawn sample.
// It is the one place that resets derived state after an edit or undo.
package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/stratify-cli/internal/history"
	"github.com/KaramelBytes/stratify-cli/internal/logging"
	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/view"
)

// ErrNoSample is returned by sample operations before anything is drawn.
var ErrNoSample = errors.New("no sample drawn yet")

// Options tunes a session.
type Options struct {
	// HistorySize is the number of undo steps kept for the dataset.
	HistorySize int
	// SampleHistorySize is the number of undo steps kept for the sample.
	SampleHistorySize int
	Rand              *rand.Rand
	Logger            logrus.FieldLogger
}

// DefaultOptions keeps five dataset undo steps and three sample undo steps.
func DefaultOptions() Options {
	return Options{HistorySize: 5, SampleHistorySize: 4}
}

// Session is not safe for concurrent use.
type Session struct {
	// Config carries method, size and interval. Its Levels are ignored;
	// the live levels are in Model.
	Config   sampling.Config
	Pipeline *view.Pipeline
	Model    *sampling.Model
	// SamplePipeline filters and sorts the drawn sample for display and export.
	SamplePipeline *view.Pipeline

	log       *history.Log[table.Dataset]
	sample    *history.Log[table.Dataset]
	sampleCap int
	rng       *rand.Rand
	logger    logrus.FieldLogger
}

// New starts a session over ds.
func New(ds table.Dataset, opts Options) *Session {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}
	return &Session{
		Config:         sampling.DefaultConfig(),
		Pipeline:       view.NewPipeline(),
		Model:          sampling.NewModel(),
		SamplePipeline: view.NewPipeline(),
		log:            history.New(opts.HistorySize+1, ds),
		sampleCap:      opts.SampleHistorySize + 1,
		rng:            opts.Rand,
		logger:         opts.Logger,
	}
}

// Dataset returns the current snapshot.
func (s *Session) Dataset() table.Dataset { return s.log.Current() }

// View returns the filtered, searched and sorted rows of the current dataset.
func (s *Session) View() []table.Row { return s.Pipeline.Apply(s.Dataset()) }

// Restratify recomputes every level's counts against the current view.
func (s *Session) Restratify() {
	rows := s.View()
	s.Model.Recompute(rows)
	s.logger.WithField("rows", len(rows)).Debug("restratified")
}

// SetFilter validates and applies a column filter.
func (s *Session) SetFilter(column string, f view.Filter) error {
	if err := s.Pipeline.Filters.Set(column, f); err != nil {
		return err
	}
	s.Restratify()
	return nil
}

// ClearFilter drops the filter on column.
func (s *Session) ClearFilter(column string) {
	s.Pipeline.Filters.Clear(column)
	s.Restratify()
}

// SetQuery sets the free-text search.
func (s *Session) SetQuery(q string) {
	s.Pipeline.Query = q
	s.Restratify()
}

// SetSort replaces the sort spec; nil clears it.
func (s *Session) SetSort(spec *view.SortSpec) {
	s.Pipeline.Sort = spec
	s.Restratify()
}

// ResetView clears filters, search, sort and the sample.
func (s *Session) ResetView() {
	s.Pipeline.Reset()
	s.clearSample()
	s.Restratify()
}

// CanUndo reports whether a dataset undo is available.
func (s *Session) CanUndo() bool { return s.log.CanUndo() }

// Undo steps the dataset back one edit and resets derived state, since
// filters and sort may name columns the older snapshot lacks. Levels on
// such columns become unset.
func (s *Session) Undo() bool {
	if _, ok := s.log.Undo(); !ok {
		return false
	}
	s.Pipeline.Reset()
	s.clearSample()
	s.resyncModel()
	s.logger.WithField("steps_left", s.log.Steps()).Debug("undo")
	return true
}

func (s *Session) commit(ds table.Dataset) {
	s.log.Push(ds)
	s.logger.WithFields(logrus.Fields{
		"rows":    ds.Len(),
		"columns": len(ds.Headers),
	}).Debug("dataset edit committed")
}

// resyncModel re-evaluates the levels against the current dataset and view.
func (s *Session) resyncModel() {
	cfg := sampling.Rehydrate(sampling.Config{Method: s.Config.Method, Levels: s.Model.Snapshot()}, s.Dataset(), s.View())
	s.Model = sampling.FromLevels(cfg.Levels)
}

// SamplingConfig returns the full config: settings plus a copy of the levels.
func (s *Session) SamplingConfig() sampling.Config {
	cfg := s.Config
	cfg.Levels = s.Model.Snapshot()
	return cfg
}

// LoadConfig rehydrates a saved config against the current dataset and
// view, replacing the session's settings and levels.
func (s *Session) LoadConfig(cfg sampling.Config) sampling.Config {
	out := sampling.Rehydrate(cfg, s.Dataset(), s.View())
	s.Config = out
	s.Config.Levels = nil
	s.Model = sampling.FromLevels(out.Levels)
	s.logger.WithFields(logrus.Fields{
		"method": out.Method,
		"levels": len(out.Levels),
	}).Debug("config loaded")
	return out
}
