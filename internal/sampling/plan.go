package sampling

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/stratify-cli/internal/table"
)

// Plan is the YAML form of a sampling setup:
//
//	method: stratified
//	levels:
//	  - column: region
//	    sizes: {North: 5, South: "20%"}
//	  - column: amount
//	    rules:
//	      - {op: gt, value: 1000, size: 3}
//	      - {op: lt, value: 0, size: "50%"}
//	    remainder: 2
type Plan struct {
	Method   string      `yaml:"method"`
	Size     *int        `yaml:"size"`
	Percent  bool        `yaml:"percent"`
	Interval *int        `yaml:"interval"`
	Levels   []PlanLevel `yaml:"levels"`
}

// PlanLevel describes one stratification level.
type PlanLevel struct {
	Column    string                `yaml:"column"`
	AutoFill  *float64              `yaml:"autofill"`
	Sizes     map[string]SampleSize `yaml:"sizes"`
	Rules     []PlanRule            `yaml:"rules"`
	Remainder SampleSize            `yaml:"remainder"`
}

// PlanRule is a numeric rule in a plan.
type PlanRule struct {
	Op    string     `yaml:"op"`
	Value float64    `yaml:"value"`
	Size  SampleSize `yaml:"size"`
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &p, nil
}

// Build applies the plan through the model operations, so sizes are
// validated the same way as interactive edits. Validation failures stay on
// the strata; only structural problems return an error.
func (p *Plan) Build(base table.Dataset, population []table.Row) (Config, *Model, error) {
	cfg := DefaultConfig()
	if p.Method != "" {
		m, err := ParseMethod(p.Method)
		if err != nil {
			return Config{}, nil, err
		}
		cfg.Method = m
	}
	// Missing keys keep the defaults; explicit zeros are kept and draw
	// nothing.
	if p.Size != nil {
		cfg.SampleSize = *p.Size
	}
	cfg.IsPercentage = p.Percent
	if p.Interval != nil {
		cfg.SystematicInterval = *p.Interval
	}
	model := NewModel()
	for i, pl := range p.Levels {
		lvl, err := model.AddLevel(base, population)
		if err != nil {
			return Config{}, nil, err
		}
		id := lvl.ID
		if err := model.SetColumn(id, pl.Column, base, population); err != nil {
			return Config{}, nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		if err := p.applyLevel(model, id, pl, population); err != nil {
			return Config{}, nil, fmt.Errorf("level %d (%s): %w", i+1, pl.Column, err)
		}
	}
	cfg.Levels = model.Snapshot()
	return cfg, model, nil
}

func (p *Plan) applyLevel(model *Model, id string, pl PlanLevel, population []table.Row) error {
	l, err := model.Level(id)
	if err != nil {
		return err
	}
	if len(pl.Rules) > 0 && l.ColumnType != table.Numeric {
		return fmt.Errorf("rules given for categorical column")
	}
	ruleIDs := make([]string, 0, len(pl.Rules))
	for _, r := range pl.Rules {
		op, err := ParseOperator(r.Op)
		if err != nil {
			return err
		}
		rid, err := model.AddRule(id, op, r.Value, population)
		if err != nil {
			return err
		}
		ruleIDs = append(ruleIDs, rid)
	}
	if pl.AutoFill != nil {
		if err := model.AutoFill(id, *pl.AutoFill); err != nil {
			return err
		}
	}
	for i, r := range pl.Rules {
		if r.Size == "" {
			continue
		}
		if _, err := model.SetSampleSize(id, ruleIDs[i], r.Size); err != nil {
			return err
		}
	}
	if pl.Remainder != "" {
		if _, err := model.SetSampleSize(id, RemainderID, pl.Remainder); err != nil {
			return err
		}
	}
	for value, size := range pl.Sizes {
		if _, err := model.SetSampleSize(id, value, size); err != nil {
			return err
		}
	}
	return nil
}
