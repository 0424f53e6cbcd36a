package sampling

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SampleSize is a requested stratum size: blank, a whole count, or "N%".
type SampleSize string

// Percent returns a percentage size string such as "25%".
func Percent(p float64) SampleSize {
	return SampleSize(strconv.FormatFloat(p, 'f', -1, 64) + "%")
}

// Count returns an absolute size string.
func Count(n int) SampleSize { return SampleSize(strconv.Itoa(n)) }

func (s *SampleSize) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = SampleSize(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("sample size must be a string or number: %w", err)
	}
	*s = SampleSize(n.String())
	return nil
}

func (s *SampleSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: sample size must be a scalar", node.Line)
	}
	*s = SampleSize(node.Value)
	return nil
}

// SizeErrorKind classifies a rejected sample size.
type SizeErrorKind string

const (
	PercentRange     SizeErrorKind = "percent_range"
	NotNumber        SizeErrorKind = "not_number"
	NotWhole         SizeErrorKind = "not_whole"
	ExceedsAvailable SizeErrorKind = "exceeds_available"
)

// SizeError is a validation result attached to a stratum.
type SizeError struct {
	Kind      SizeErrorKind `json:"kind"`
	Input     string        `json:"input"`
	Available int           `json:"available"`
}

func (e *SizeError) Error() string {
	switch e.Kind {
	case PercentRange:
		return "percentage must be between 0 and 100"
	case NotNumber:
		return "must be a positive number"
	case NotWhole:
		return "must be a whole number"
	case ExceedsAvailable:
		return fmt.Sprintf("cannot exceed available population (%d)", e.Available)
	}
	return "invalid sample size"
}

// round matches half-up rounding toward +Inf.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ValidateSize checks a requested size against the population it draws from.
// Blank input is valid and means zero.
func ValidateSize(input SampleSize, available int) *SizeError {
	raw := strings.TrimSpace(string(input))
	if raw == "" {
		return nil
	}
	fail := func(k SizeErrorKind) *SizeError {
		return &SizeError{Kind: k, Input: string(input), Available: available}
	}
	var count int
	if strings.HasSuffix(raw, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "%")), 64)
		if err != nil || math.IsNaN(pct) || pct < 0 || pct > 100 {
			return fail(PercentRange)
		}
		count = round(pct / 100 * float64(available))
	} else {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || n < 0 {
			return fail(NotNumber)
		}
		if n != math.Trunc(n) {
			return fail(NotWhole)
		}
		if n > float64(available) {
			return fail(ExceedsAvailable)
		}
		count = int(n)
	}
	if count > available {
		return fail(ExceedsAvailable)
	}
	return nil
}

// ResolveSize turns a size into a row count for a population of available
// rows. Blank or unparseable input resolves to 0; the result is clamped to
// [0, available].
func ResolveSize(input SampleSize, available int) int {
	raw := strings.TrimSpace(string(input))
	var n int
	switch {
	case raw == "":
		return 0
	case strings.HasSuffix(raw, "%"):
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "%")), 64)
		if err != nil || math.IsNaN(pct) {
			return 0
		}
		n = round(pct / 100 * float64(available))
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		n = int(math.Trunc(f))
	}
	return clamp(n, available)
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
