package table

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Value is a single loosely typed cell. The zero value is Empty.
// Values are comparable and may be used as map keys.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Empty returns the missing-cell marker.
func Empty() Value { return Value{} }

// Number wraps a float64 cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string cell. Empty strings stay Text; use Empty for missing cells.
func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Blank reports whether the cell counts as missing: Empty or the empty string.
func (v Value) Blank() bool {
	return v.kind == KindEmpty || (v.kind == KindText && v.text == "")
}

// Whitespace reports whether the cell is missing or only whitespace.
func (v Value) Whitespace() bool {
	return v.kind == KindEmpty || (v.kind == KindText && trimJS(v.text) == "")
}

// Num returns the payload of a Number cell.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the cell the way it is shown, searched and grouped.
// Empty renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// FormatNumber renders f in the shortest round-trip form, switching to
// exponent notation outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(FormatNumber(v.num))
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Empty()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	case bool:
		*v = Text(strconv.FormatBool(x))
	default:
		*v = Text(string(b))
	}
	return nil
}
