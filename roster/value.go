package roster

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON kind of a field value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // nested object or array, kept verbatim
)

// Value is a single field value with its JSON kind preserved.
// The dataset mixes strings, numbers (epoch-millisecond dates, numeric levels) and nulls,
// and display/export rules depend on the kind.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	raw  []byte
}

func NullValue() Value { return Value{kind: KindNull} }
func StringValue(s string) Value { return Value{kind: KindString, str: s} }
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func RawValue(raw []byte) Value { return Value{kind: KindRaw, raw: append([]byte(nil), raw...)} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// IsEmpty reports whether the value is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// String renders the value the way the browser renders it with String(v).
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRaw:
		return string(v.raw)
	default:
		return ""
	}
}

// MarshalJSON writes the value back in its original kind.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(v.num)), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindRaw:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// formatNumber renders numbers the way browsers print them: integers without a decimal
// point, exponent form outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Go pads the exponent to two digits; browsers print 1e-7, not 1e-07.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.IndexByte(s, 'e'); i >= 0 && len(s) > i+3 && s[i+2] == '0' {
		s = s[:i+2] + s[i+3:]
	}
	return s
}
