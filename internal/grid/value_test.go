package grid

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestCell_SetAndGet(t *testing.T) {
	c := &Cell{}
	if !c.IsEmpty() {
		t.Fatal("new cell is not empty")
	}

	c.SetInt(42)
	if got, err := c.Int(); err != nil || got != 42 {
		t.Errorf("Int() = %d, %v, want 42, nil", got, err)
	}
	if got, err := c.Double(); err != nil || got != 42 {
		t.Errorf("Double() = %v, %v, want 42, nil", got, err)
	}
	if got, err := c.Text(); err != nil || got != "42" {
		t.Errorf("Text() = %q, %v, want %q, nil", got, err, "42")
	}

	c.SetDouble(4.5)
	if got, err := c.Double(); err != nil || got != 4.5 {
		t.Errorf("Double() = %v, %v, want 4.5, nil", got, err)
	}
	if c.Content().Kind() != KindDouble {
		t.Errorf("Kind = %s, want double", c.Content().Kind())
	}

	c.Clear()
	if !c.IsEmpty() {
		t.Error("Clear() left content")
	}
}

func TestCell_EmptyAccess(t *testing.T) {
	c := &Cell{}
	getters := map[string]func() error{
		"Int":    func() error { _, err := c.Int(); return err },
		"Long":   func() error { _, err := c.Long(); return err },
		"Double": func() error { _, err := c.Double(); return err },
		"Float":  func() error { _, err := c.Float(); return err },
		"Bool":   func() error { _, err := c.Bool(); return err },
		"Text":   func() error { _, err := c.Text(); return err },
		"Byte":   func() error { _, err := c.Byte(); return err },
		"Short":  func() error { _, err := c.Short(); return err },
	}
	for name, get := range getters {
		if err := get(); !errors.Is(err, ErrEmptyCell) {
			t.Errorf("%s() on empty cell error = %v, want ErrEmptyCell", name, err)
		}
	}
	if c.String() != "" {
		t.Errorf("String() on empty cell = %q, want empty", c.String())
	}
}

func TestValue_Conversions(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		get     func(Value) (any, error)
		want    any
		wantErr error
	}{
		{"text to double", Text("x"), func(v Value) (any, error) { return v.AsDouble() }, nil, ErrValueConversion},
		{"text to bool", Text("true"), func(v Value) (any, error) { return v.AsBool() }, nil, ErrValueConversion},
		{"text to int", Text("1"), func(v Value) (any, error) { return v.AsInt() }, nil, ErrValueConversion},
		{"bool to int", Bool(true), func(v Value) (any, error) { return v.AsInt() }, nil, ErrValueConversion},
		{"bool to bool", Bool(true), func(v Value) (any, error) { return v.AsBool() }, true, nil},
		{"long to int in range", Long(7), func(v Value) (any, error) { return v.AsInt() }, int32(7), nil},
		{"long to int overflow", Long(math.MaxInt32 + 1), func(v Value) (any, error) { return v.AsInt() }, nil, ErrValueConversion},
		{"int to byte overflow", Int(300), func(v Value) (any, error) { return v.AsByte() }, nil, ErrValueConversion},
		{"int to short", Int(-300), func(v Value) (any, error) { return v.AsShort() }, int16(-300), nil},
		{"integral double to long", Double(3), func(v Value) (any, error) { return v.AsLong() }, int64(3), nil},
		{"fractional double to int", Double(4.5), func(v Value) (any, error) { return v.AsInt() }, nil, ErrValueConversion},
		{"huge double to long", Double(math.Pow(2, 63)), func(v Value) (any, error) { return v.AsLong() }, nil, ErrValueConversion},
		{"nan to long", Double(math.NaN()), func(v Value) (any, error) { return v.AsLong() }, nil, ErrValueConversion},
		{"long to double", Long(5), func(v Value) (any, error) { return v.AsDouble() }, float64(5), nil},
		{"double to float", Double(1.5), func(v Value) (any, error) { return v.AsFloat() }, float32(1.5), nil},
		{"huge double to float", Double(1e300), func(v Value) (any, error) { return v.AsFloat() }, nil, ErrValueConversion},
		{"bool to text", Bool(false), func(v Value) (any, error) { return v.AsText() }, "false", nil},
		{"double to text", Double(2.5), func(v Value) (any, error) { return v.AsText() }, "2.5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get(tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConversionError_Detail(t *testing.T) {
	_, err := Text("x").AsDouble()
	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not *ConversionError", err)
	}
	if ce.From != KindText || ce.To != KindDouble || ce.Text != "x" {
		t.Errorf("ConversionError = %+v", ce)
	}
	if want := `cannot convert text "x" to double`; ce.Error() != want {
		t.Errorf("Error() = %q, want %q", ce.Error(), want)
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want Value
	}{
		{nil, Empty},
		{"s", Text("s")},
		{true, Bool(true)},
		{int8(-1), Int(-1)},
		{int16(2), Int(2)},
		{uint8(3), Int(3)},
		{int(4), Int(4)},
		{int(math.MaxInt32) + 1, Long(math.MaxInt32 + 1)},
		{int64(5), Long(5)},
		{uint32(6), Long(6)},
		{float32(0.5), Float(0.5)},
		{0.25, Double(0.25)},
		{KindBool, Text("bool")},
	}
	for _, tt := range tests {
		got, err := ValueOf(tt.in)
		if err != nil {
			t.Errorf("ValueOf(%v) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ValueOf(%v) = %s %q, want %s %q", tt.in, got.Kind(), got, tt.want.Kind(), tt.want)
		}
	}

	if _, err := ValueOf(struct{}{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValueOf(struct{}) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := ValueOf(uint64(math.MaxUint64)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValueOf(MaxUint64) error = %v, want ErrInvalidArgument", err)
	}
}

func TestCell_SetAny_KeepsContentOnError(t *testing.T) {
	c := &Cell{}
	c.SetText("keep")
	if err := c.SetAny([]int{1}); err == nil {
		t.Fatal("SetAny([]int) succeeded")
	}
	if c.String() != "keep" {
		t.Errorf("content = %q after failed SetAny, want %q", c.String(), "keep")
	}
}

func TestCell_ByteShortRune(t *testing.T) {
	c := &Cell{}
	c.SetByte(-5)
	if c.Content().Kind() != KindInt {
		t.Errorf("SetByte kind = %s, want int", c.Content().Kind())
	}
	c.SetShort(1000)
	if got, _ := c.Short(); got != 1000 {
		t.Errorf("Short() = %d, want 1000", got)
	}
	c.SetRune('z')
	if got, _ := c.Text(); got != "z" {
		t.Errorf("Text() = %q, want %q", got, "z")
	}
}

func TestValue_JSON(t *testing.T) {
	values := []Value{
		Empty, Text("a,b"), Int(-3), Long(1 << 40), Float(0.5), Double(4.5),
		Double(math.Inf(1)), Bool(true),
	}
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var got []Value
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("decoded %d values, want %d", len(got), len(values))
	}
	for i := range values {
		if !got[i].Equal(values[i]) {
			t.Errorf("value %d = %s %q, want %s %q", i, got[i].Kind(), got[i], values[i].Kind(), values[i])
		}
	}

	var v Value
	if err := json.Unmarshal([]byte(`{"k":"money","v":1}`), &v); err == nil {
		t.Error("Unmarshal accepted unknown kind")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Empty, ""},
		{Text("hi"), "hi"},
		{Int(1), "1"},
		{Long(-9), "-9"},
		{Double(4.5), "4.5"},
		{Double(1), "1"},
		{Float(0.1), "0.1"},
		{Bool(true), "true"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%s.String() = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}
