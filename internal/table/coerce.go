package table

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// All numeric coercion used by inference, filtering, sorting and strata
// lives in this file so every caller agrees on what "numeric" means.

var (
	decimalRe   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	radixRe     = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
	datePrefix  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// dateLayouts are tried in order for date-like text. Layouts without a zone
// are read in local time except the bare date, which is UTC midnight.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
}

func trimJS(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' })
}

// ToNumber converts a whole cell to a number. Text is trimmed; blank text is
// 0; decimal, exponent, Infinity and 0x/0o/0b integer forms are accepted.
// Empty cells and NaN never convert.
func ToNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num)
	case KindText:
		return textToNumber(v.text)
	default:
		return 0, false
	}
}

func textToNumber(s string) (float64, bool) {
	s = trimJS(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if radixRe.MatchString(s) {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	if !decimalRe.MatchString(s) {
		return 0, false
	}
	return parseDecimal(s)
}

func parseDecimal(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// ParseFloatPrefix reads the longest leading decimal number of a cell,
// ignoring trailing text ("12kg" is 12). Empty cells and text without a
// leading number fail.
func ParseFloatPrefix(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num)
	case KindText:
		s := strings.TrimLeftFunc(v.text, func(r rune) bool { return unicode.IsSpace(r) || r == '\ufeff' })
		m := floatPrefix.FindString(s)
		if m == "" {
			return 0, false
		}
		switch strings.TrimLeft(m, "+-") {
		case "Infinity":
			if strings.HasPrefix(m, "-") {
				return math.Inf(-1), true
			}
			return math.Inf(1), true
		}
		return parseDecimal(m)
	default:
		return 0, false
	}
}

// DateLike reports whether a cell is text starting with a YYYY-MM-DD prefix.
func DateLike(v Value) bool {
	return v.kind == KindText && datePrefix.MatchString(v.text)
}

// ParseDate converts date-like text to Unix milliseconds.
func ParseDate(s string) (float64, bool) {
	s = trimJS(s)
	if len(s) == len("2006-01-02") {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return 0, false
		}
		return float64(t.UnixMilli()), true
	}
	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	return 0, false
}

// Coerce is the inference-time conversion: date-like text becomes a
// timestamp, everything else goes through ToNumber.
func Coerce(v Value) (float64, bool) {
	if DateLike(v) {
		return ParseDate(v.text)
	}
	return ToNumber(v)
}

// ParseCell turns raw text from a file into a cell. Parsers hand every CSV
// field through here; it never guesses numbers, so "007" stays text.
func ParseCell(s string) Value {
	return Text(s)
}
