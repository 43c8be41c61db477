package argz

import (
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	var nilPtr *int
	one := 1
	cases := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{int8(-1), true},
		{0.0, false},
		{0.1, true},
		{"", false},
		{"a", true},
		{[]int{}, false},
		{[]int{0}, true},
		{map[string]int{}, false},
		{nilPtr, false},
		{&one, true},
		{struct{}{}, true},
	}
	for _, tc := range cases {
		if got := truthy(tc.value); got != tc.want {
			t.Errorf("truthy(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestLooseEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{1, int64(1), true},
		{1, 1.0, true},
		{1, true, true},
		{0, false, true},
		{1, "1", false},
		{"a", "a", true},
		{int64(math.MaxInt64), int64(math.MaxInt64 - 1), false},
		{[]int{1}, []int{1}, true},
		{nil, nil, true},
		{nil, 0, false},
	}
	for _, tc := range cases {
		if got := looseEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("looseEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	if n, ok := asInt(uint8(7)); !ok || n != 7 {
		t.Errorf("expected 7, got %d %v", n, ok)
	}
	if _, ok := asInt(uint64(math.MaxUint64)); ok {
		t.Error("expected values above MaxInt64 to be rejected")
	}
	if _, ok := asInt(true); ok {
		t.Error("expected bools not to be integers")
	}
	if n, ok := asInt(port(80)); !ok || n != 80 {
		t.Errorf("expected named ints to convert, got %d %v", n, ok)
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue("a"); got != "'a'" {
		t.Errorf("unexpected %q", got)
	}
	if got := formatValue(nil); got != "nil" {
		t.Errorf("unexpected %q", got)
	}
	if got := formatValue(1.5); got != "1.5" {
		t.Errorf("unexpected %q", got)
	}
	if typeName(nil) != "nil" || typeName(port(1)) != "argz.port" {
		t.Errorf("unexpected type names %q %q", typeName(nil), typeName(port(1)))
	}
}
