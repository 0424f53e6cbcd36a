package session

import (
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
)

// AddLevel adds a stratification level on the first unused column.
func (s *Session) AddLevel() (sampling.Level, error) {
	l, err := s.Model.AddLevel(s.Dataset(), s.View())
	if err != nil {
		return sampling.Level{}, err
	}
	s.logger.WithFields(logrus.Fields{"level_id": l.ID, "column": l.Column}).Debug("level added")
	return *l, nil
}

// RemoveLevel drops a level.
func (s *Session) RemoveLevel(id string) error { return s.Model.RemoveLevel(id) }

// SetLevelColumn retargets a level, rebuilding its strata.
func (s *Session) SetLevelColumn(id, column string) error {
	return s.Model.SetColumn(id, column, s.Dataset(), s.View())
}

// AddRule appends a numeric rule ahead of the remainder.
func (s *Session) AddRule(id string, op sampling.Operator, threshold float64) (string, error) {
	return s.Model.AddRule(id, op, threshold, s.View())
}

// RemoveRule deletes a numeric rule.
func (s *Session) RemoveRule(id, ruleID string) error {
	return s.Model.RemoveRule(id, ruleID, s.View())
}

// SetSampleSize records a stratum's requested size and returns its
// validation state.
func (s *Session) SetSampleSize(id, key string, size sampling.SampleSize) (*sampling.SizeError, error) {
	return s.Model.SetSampleSize(id, key, size)
}

// AutoFill sets every stratum of a level to pct percent.
func (s *Session) AutoFill(id string, pct float64) error { return s.Model.AutoFill(id, pct) }

// ApplyPlan replaces the sampling setup with a YAML plan built against the
// current dataset and view.
func (s *Session) ApplyPlan(p *sampling.Plan) error {
	cfg, model, err := p.Build(s.Dataset(), s.View())
	if err != nil {
		return err
	}
	cfg.Levels = nil
	s.Config = cfg
	s.Model = model
	return nil
}
