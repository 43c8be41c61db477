package argz

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"
)

type port int

func isEven(v any) bool {
	n, ok := v.(int)
	return ok && n%2 == 0
}

func TestTypeCheck(t *testing.T) {
	t.Run("Accepts Configured Type", func(t *testing.T) {
		ok, reason := IsType[int]().Test(1)
		if !ok || reason != "" {
			t.Errorf("expected 1 to be accepted, got %v %q", ok, reason)
		}
	})

	t.Run("Rejects Other Types", func(t *testing.T) {
		ok, reason := IsType[int]().Test("x")
		if ok {
			t.Fatal("expected string to be rejected")
		}
		if reason != "Type int expected but got string" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Named Types Match Their Kind", func(t *testing.T) {
		if ok, _ := IsType[int]().Test(port(8080)); !ok {
			t.Error("expected named int type to match int")
		}
		if ok, _ := IsType[int]().Exact().Test(port(8080)); ok {
			t.Error("expected exact check to reject named int type")
		}
	})

	t.Run("Bool Is Not An Integer By Default", func(t *testing.T) {
		if ok, _ := IsType[int]().Test(true); ok {
			t.Error("expected bool to be rejected")
		}
		if ok, _ := IsType[int]().WithBoolSubclasses().Test(true); !ok {
			t.Error("expected bool to be accepted with bool subclasses")
		}
		if ok, _ := IsType[bool]().Test(true); !ok {
			t.Error("expected bool to match bool")
		}
	})

	t.Run("Interfaces Accept Implementers", func(t *testing.T) {
		check := IsType[fmt.Stringer]()
		if ok, _ := check.Test(time.Second); !ok {
			t.Error("expected time.Duration to implement fmt.Stringer")
		}
		if ok, _ := check.Test(5); ok {
			t.Error("expected int to be rejected")
		}
	})

	t.Run("Nil Values", func(t *testing.T) {
		if ok, _ := IsType[error]().Test(nil); !ok {
			t.Error("expected nil to satisfy an interface type")
		}
		ok, reason := IsType[int]().Test(nil)
		if ok {
			t.Error("expected nil to be rejected by int")
		}
		if reason != "Type int expected but got nil" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Multiple Types", func(t *testing.T) {
		check, err := NewTypeCheck([]reflect.Type{reflect.TypeOf(0), reflect.TypeOf("")}, true, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if check.String() != "type(int, string)" {
			t.Errorf("unexpected String %q", check.String())
		}
		_, reason := check.Test(1.5)
		if reason != "Type int or string expected but got float64" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Empty Type Set Is A Contract Violation", func(t *testing.T) {
		_, err := NewTypeCheck(nil, true, false)
		if !IsContract(err) || !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected malformed spec contract error, got %v", err)
		}
		_, err = NewTypeCheck([]reflect.Type{nil}, true, false)
		if !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected malformed spec for nil type, got %v", err)
		}
	})
}

func TestValueSet(t *testing.T) {
	t.Run("Membership", func(t *testing.T) {
		set := IsOneOf(1, 4, 9)
		if ok, _ := set.Test(4); !ok {
			t.Error("expected 4 to be accepted")
		}
		ok, reason := set.Test(2)
		if ok {
			t.Error("expected 2 to be rejected")
		}
		if reason != "Value 1 or 4 or 9 expected but got 2" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Type Matching", func(t *testing.T) {
		set := IsOneOf(1)
		if ok, _ := set.Test(true); ok {
			t.Error("expected true not to match 1")
		}
		if ok, _ := set.Test(int64(1)); ok {
			t.Error("expected int64(1) not to match int(1)")
		}
		if ok, _ := set.Test(1.0); ok {
			t.Error("expected 1.0 not to match 1")
		}
	})

	t.Run("Loose Matching", func(t *testing.T) {
		set := IsOneOf(1).Loose()
		for _, v := range []any{1, int64(1), 1.0, true} {
			if ok, _ := set.Test(v); !ok {
				t.Errorf("expected %v (%T) to match loosely", v, v)
			}
		}
		if ok, _ := set.Test("1"); ok {
			t.Error("expected string not to match a number")
		}
	})

	t.Run("Deduplicates Members", func(t *testing.T) {
		set, err := NewValueSet([]any{1, 1, 2}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := set.Values(); len(got) != 2 {
			t.Errorf("expected 2 members, got %v", got)
		}
		if set.String() != "value(1, 2)" {
			t.Errorf("unexpected String %q", set.String())
		}
	})

	t.Run("Composite Members", func(t *testing.T) {
		set := IsOneOf([]int{1, 2})
		if ok, _ := set.Test([]int{1, 2}); !ok {
			t.Error("expected equal slice to be accepted")
		}
	})

	t.Run("Empty Set Is A Contract Violation", func(t *testing.T) {
		_, err := NewValueSet(nil, true)
		if !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected malformed spec, got %v", err)
		}
	})
}

func TestNumericRange(t *testing.T) {
	t.Run("Agrees With Integer Interval", func(t *testing.T) {
		r := InRange(0, 10)
		cases := []struct {
			value any
			want  bool
		}{
			{-1, false},
			{0, true},
			{9, true},
			{10, false},
			{9.5, false},
		}
		for _, tc := range cases {
			if ok, _ := r.Test(tc.value); ok != tc.want {
				t.Errorf("Test(%v) = %v, want %v", tc.value, ok, tc.want)
			}
		}
	})

	t.Run("Any Integer Kind", func(t *testing.T) {
		r := InRange(0, 10)
		for _, v := range []any{int8(3), uint16(3), int64(3), uint(3)} {
			if ok, _ := r.Test(v); !ok {
				t.Errorf("expected %T to be accepted", v)
			}
		}
		if ok, _ := r.Test(true); ok {
			t.Error("expected bool to be rejected")
		}
	})

	t.Run("Step", func(t *testing.T) {
		r, err := NewNumericRange(0, 10, 3, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, v := range []int{0, 3, 6, 9} {
			if ok, _ := r.Test(v); !ok {
				t.Errorf("expected %d to be accepted", v)
			}
		}
		ok, reason := r.Test(4)
		if ok {
			t.Error("expected 4 to be rejected")
		}
		if reason != "Value in range(0, 10, 3) expected but got 4" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Negative Step", func(t *testing.T) {
		r, err := NewNumericRange(10, 0, -2, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, v := range []int{10, 8, 2} {
			if ok, _ := r.Test(v); !ok {
				t.Errorf("expected %d to be accepted", v)
			}
		}
		for _, v := range []int{0, 9, 11, 12} {
			if ok, _ := r.Test(v); ok {
				t.Errorf("expected %d to be rejected", v)
			}
		}
	})

	t.Run("Full Int64 Span", func(t *testing.T) {
		r, err := NewNumericRange(math.MinInt64, math.MaxInt64, 1, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok, _ := r.Test(int64(math.MaxInt64 - 1)); !ok {
			t.Error("expected MaxInt64-1 to be accepted")
		}
		if ok, _ := r.Test(int64(math.MaxInt64)); ok {
			t.Error("expected stop to be excluded")
		}
	})

	t.Run("Loose Accepts Integral Floats", func(t *testing.T) {
		r, err := NewNumericRange(0, 10, 1, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok, _ := r.Test(5.0); !ok {
			t.Error("expected 5.0 to be accepted")
		}
		if ok, _ := r.Test(true); !ok {
			t.Error("expected true to count as 1")
		}
		if ok, _ := r.Test(5.5); ok {
			t.Error("expected 5.5 to be rejected")
		}
		if ok, _ := InRange(0, 10).Test(5.0); ok {
			t.Error("expected strict range to reject 5.0")
		}
	})

	t.Run("Reason", func(t *testing.T) {
		_, reason := InRange(0, 10).Test(12)
		if reason != "Value in range(0, 10) expected but got 12" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Zero Step Is A Contract Violation", func(t *testing.T) {
		_, err := NewNumericRange(0, 10, 0, true)
		if !IsContract(err) || !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected malformed spec, got %v", err)
		}
	})
}

func TestUserPredicate(t *testing.T) {
	t.Run("Boolean Function", func(t *testing.T) {
		p := Satisfies(isEven)
		if ok, _ := p.Test(4); !ok {
			t.Error("expected 4 to be even")
		}
		ok, reason := p.Test(3)
		if ok {
			t.Error("expected 3 to be rejected")
		}
		if reason != "Expression argz.isEven evaluated to false" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Error Message Becomes Reason", func(t *testing.T) {
		p := SatisfiesErr(func(v any) (bool, error) {
			if n, ok := v.(int); ok && n < 10 {
				return false, errors.New("too small")
			}
			return true, nil
		})
		_, reason := p.Test(3)
		if reason != "too small" {
			t.Errorf("expected error message as reason, got %q", reason)
		}
		if ok, _ := p.Test(12); !ok {
			t.Error("expected 12 to be accepted")
		}
	})

	t.Run("Empty Error Message", func(t *testing.T) {
		p := SatisfiesErr(func(any) (bool, error) { return true, errors.New("") }).Named("strict")
		ok, reason := p.Test(1)
		if ok {
			t.Error("expected an error to reject the value")
		}
		if reason != "Expression strict evaluated to false" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Panics Reject", func(t *testing.T) {
		p := Satisfies(func(any) bool { panic("boom") })
		ok, reason := p.Test(1)
		if ok {
			t.Error("expected a panic to reject the value")
		}
		if reason != "boom" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Named", func(t *testing.T) {
		p := Satisfies(isEven).Named("even")
		if p.String() != "func(even)" {
			t.Errorf("unexpected String %q", p.String())
		}
	})

	t.Run("Nil Function", func(t *testing.T) {
		if ok, _ := Satisfies(nil).Test(1); ok {
			t.Error("expected nil function to reject")
		}
	})
}

func TestEmptyPredicate(t *testing.T) {
	for _, v := range []any{nil, 0, "", struct{}{}} {
		if ok, _ := Empty().Test(v); !ok {
			t.Errorf("expected %v to be accepted", v)
		}
	}
	if Empty().String() != "any" {
		t.Errorf("unexpected String %q", Empty().String())
	}
}
