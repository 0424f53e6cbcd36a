package sampling

import (
	"fmt"
	"strings"
)

// Method selects how a sample is drawn.
type Method string

const (
	MethodRandom     Method = "random"
	MethodSystematic Method = "systematic"
	MethodStratified Method = "stratified"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodRandom, MethodSystematic, MethodStratified:
		return m, nil
	}
	return "", fmt.Errorf("unknown sampling method %q (random|systematic|stratified)", s)
}

// Config is the saved unit of a sampling setup. It is plain data and can be
// rehydrated against a different dataset.
type Config struct {
	Method             Method  `json:"method"`
	SampleSize         int     `json:"sampleSize"`
	IsPercentage       bool    `json:"isPercentage"`
	SystematicInterval int     `json:"systematicInterval"`
	Levels             []Level `json:"stratificationLevels"`
}

// DefaultConfig mirrors a fresh sampling panel.
func DefaultConfig() Config {
	return Config{
		Method:             MethodRandom,
		SampleSize:         10,
		SystematicInterval: 5,
	}
}

// RandomTarget resolves the simple-random size for a population of n rows.
func (c Config) RandomTarget(n int) int {
	if c.IsPercentage {
		return clamp(round(float64(c.SampleSize)/100*float64(n)), n)
	}
	return clamp(c.SampleSize, n)
}

// Describe is a one-line summary used in listings.
func (c Config) Describe() string {
	switch c.Method {
	case MethodSystematic:
		return fmt.Sprintf("systematic, every %d rows", c.SystematicInterval)
	case MethodStratified:
		if len(c.Levels) == 0 {
			return "stratified, no levels"
		}
		cols := make([]string, 0, len(c.Levels))
		for _, l := range c.Levels {
			if l.Column == "" {
				cols = append(cols, "(unset)")
				continue
			}
			cols = append(cols, l.Column)
		}
		return fmt.Sprintf("stratified by %s", strings.Join(cols, ", "))
	default:
		if c.IsPercentage {
			return fmt.Sprintf("random, %d%%", c.SampleSize)
		}
		return fmt.Sprintf("random, %d rows", c.SampleSize)
	}
}
