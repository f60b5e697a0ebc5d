package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which representation a Value currently holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBool
)

var kindNames = [...]string{
	KindEmpty:  "empty",
	KindText:   "text",
	KindInt:    "int",
	KindLong:   "long",
	KindFloat:  "float",
	KindDouble: "double",
	KindBool:   "bool",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the Kind named by s (as produced by Kind.String).
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return KindEmpty, false
}

// Value is the tagged content of a cell. The zero Value is empty.
//
// Int holds 32-bit integers, Long 64-bit integers, Float 32-bit and Double
// 64-bit floating point numbers. Numeric payloads share the i and f fields.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Empty is the empty value.
var Empty = Value{}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int returns a 32-bit integer value.
func Int(i int32) Value { return Value{kind: KindInt, i: int64(i)} }

// Long returns a 64-bit integer value.
func Long(i int64) Value { return Value{kind: KindLong, i: i} }

// Float returns a 32-bit floating point value.
func Float(f float32) Value { return Value{kind: KindFloat, f: float64(f)} }

// Double returns a 64-bit floating point value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the representation held by v.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v holds no content.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

func (v Value) isInteger() bool { return v.kind == KindInt || v.kind == KindLong }

func (v Value) isFloating() bool { return v.kind == KindFloat || v.kind == KindDouble }

// ValueOf maps a Go value onto a Value. Signed and unsigned integers up to
// 32 bits become Int, wider ones Long; float32 becomes Float, float64
// Double. Strings, fmt.Stringer implementations and Values pass through.
// nil yields Empty. Any other type is rejected with ErrInvalidArgument.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Empty, nil
	case Value:
		return t, nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case int8:
		return Int(int32(t)), nil
	case int16:
		return Int(int32(t)), nil
	case int32:
		return Int(t), nil
	case uint8:
		return Int(int32(t)), nil
	case uint16:
		return Int(int32(t)), nil
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return Int(int32(t)), nil
		}
		return Long(int64(t)), nil
	case int64:
		return Long(t), nil
	case uint32:
		return Long(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Empty, invalidArgument("unsigned value %d overflows long", t)
		}
		return Long(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Empty, invalidArgument("unsigned value %d overflows long", t)
		}
		return Long(int64(t)), nil
	case float32:
		return Float(t), nil
	case float64:
		return Double(t), nil
	case fmt.Stringer:
		return Text(t.String()), nil
	default:
		return Empty, invalidArgument("unsupported cell content type %T", x)
	}
}

// Any returns the payload as a Go value: nil, string, int32, int64,
// float32, float64 or bool.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return int32(v.i)
	case KindLong:
		return v.i
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String returns the textual form used by render. The empty value renders
// as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt, KindLong:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) mismatch(to Kind) error {
	ce := &ConversionError{From: v.kind, To: to, Row: -1, Column: -1}
	if v.kind == KindText {
		ce.Text = v.s
	}
	return ce
}

// AsText returns the textual form of any non-empty value.
func (v Value) AsText() (string, error) {
	if v.IsEmpty() {
		return "", ErrEmptyCell
	}
	return v.String(), nil
}

// AsBool succeeds only for Bool values.
func (v Value) AsBool() (bool, error) {
	switch {
	case v.IsEmpty():
		return false, ErrEmptyCell
	case v.kind == KindBool:
		return v.b, nil
	default:
		return false, v.mismatch(KindBool)
	}
}

// integral returns the value as an int64 when it is an integer, or a
// floating value with no fractional part that fits in [lo, hi].
func (v Value) integral(to Kind, lo, hi int64) (int64, error) {
	if v.IsEmpty() {
		return 0, ErrEmptyCell
	}
	var n int64
	switch {
	case v.isInteger():
		n = v.i
	case v.isFloating():
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) || v.f != math.Trunc(v.f) ||
			v.f < float64(lo) || v.f >= float64(hi)+1 {
			return 0, v.mismatch(to)
		}
		n = int64(v.f)
	default:
		return 0, v.mismatch(to)
	}
	if n < lo || n > hi {
		return 0, v.mismatch(to)
	}
	return n, nil
}

// AsByte returns an integral value in the int8 range.
func (v Value) AsByte() (int8, error) {
	n, err := v.integral(KindInt, math.MinInt8, math.MaxInt8)
	return int8(n), err
}

// AsShort returns an integral value in the int16 range.
func (v Value) AsShort() (int16, error) {
	n, err := v.integral(KindInt, math.MinInt16, math.MaxInt16)
	return int16(n), err
}

// AsInt returns an integral value in the int32 range.
func (v Value) AsInt() (int32, error) {
	n, err := v.integral(KindInt, math.MinInt32, math.MaxInt32)
	return int32(n), err
}

// AsLong returns an integral value as int64.
func (v Value) AsLong() (int64, error) {
	return v.integral(KindLong, math.MinInt64, math.MaxInt64)
}

// AsDouble returns any numeric value as float64.
func (v Value) AsDouble() (float64, error) {
	switch {
	case v.IsEmpty():
		return 0, ErrEmptyCell
	case v.isInteger():
		return float64(v.i), nil
	case v.isFloating():
		return v.f, nil
	default:
		return 0, v.mismatch(KindDouble)
	}
}

// AsFloat returns any numeric value narrowed to float32. Finite doubles
// beyond the float32 range are rejected rather than becoming infinities.
func (v Value) AsFloat() (float32, error) {
	f, err := v.AsDouble()
	if errors.Is(err, ErrEmptyCell) {
		return 0, err
	}
	if err != nil {
		return 0, v.mismatch(KindFloat)
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, v.mismatch(KindFloat)
	}
	return float32(f), nil
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindInt, KindLong:
		return v.i == o.i
	case KindFloat, KindDouble:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

type jsonValue struct {
	Kind  string          `json:"k"`
	Value json.RawMessage `json:"v,omitempty"`
}

// MarshalJSON encodes the value as {"k": kind, "v": payload}. Non-finite
// floating point payloads are carried as text so they survive JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Kind: v.kind.String()}
	var payload any
	switch v.kind {
	case KindEmpty:
		return json.Marshal(out)
	case KindFloat, KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			payload = v.String()
		} else {
			payload = v.f
		}
	default:
		payload = v.Any()
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	out.Value = raw
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, ok := ParseKind(in.Kind)
	if !ok {
		return fmt.Errorf("unknown value kind %q", in.Kind)
	}

	switch kind {
	case KindEmpty:
		*v = Empty
	case KindText:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return err
		}
		*v = Text(s)
	case KindInt:
		var i int32
		if err := json.Unmarshal(in.Value, &i); err != nil {
			return err
		}
		*v = Int(i)
	case KindLong:
		var i int64
		if err := json.Unmarshal(in.Value, &i); err != nil {
			return err
		}
		*v = Long(i)
	case KindFloat, KindDouble:
		f, err := unmarshalFloat(in.Value)
		if err != nil {
			return err
		}
		if kind == KindFloat {
			*v = Float(float32(f))
		} else {
			*v = Double(f)
		}
	case KindBool:
		var b bool
		if err := json.Unmarshal(in.Value, &b); err != nil {
			return err
		}
		*v = Bool(b)
	}
	return nil
}

func unmarshalFloat(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
