package argz

import (
	"errors"
	"math"
	"testing"
)

func TestBuiltins(t *testing.T) {
	t.Run("Number", func(t *testing.T) {
		for _, v := range []any{1, 1.5, uint8(2), float32(1), port(3)} {
			if ok, _ := Number().Test(v); !ok {
				t.Errorf("expected %v (%T) to be a number", v, v)
			}
		}
		for _, v := range []any{true, "1", nil} {
			if ok, _ := Number().Test(v); ok {
				t.Errorf("expected %v (%T) not to be a number", v, v)
			}
		}
		_, reason := Number().Test("1")
		if reason != "Numeric type expected but got string" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Uint", func(t *testing.T) {
		for _, v := range []any{0, 7, uint64(math.MaxUint64)} {
			if ok, _ := Uint().Test(v); !ok {
				t.Errorf("expected %v to be accepted", v)
			}
		}
		for _, v := range []any{-1, 1.0, true, "3"} {
			if ok, _ := Uint().Test(v); ok {
				t.Errorf("expected %v (%T) to be rejected", v, v)
			}
		}
	})

	t.Run("Iterable", func(t *testing.T) {
		for _, v := range []any{"ab", []int{}, [2]int{}, map[string]int{}, make(chan int)} {
			if ok, _ := Iterable().Test(v); !ok {
				t.Errorf("expected %T to be iterable", v)
			}
		}
		for _, v := range []any{5, nil, struct{}{}} {
			if ok, _ := Iterable().Test(v); ok {
				t.Errorf("expected %T not to be iterable", v)
			}
		}
	})

	t.Run("Hashable", func(t *testing.T) {
		for _, v := range []any{nil, 5, "a", [2]int{}, struct{ A int }{1}, [1]any{"x"}} {
			if ok, _ := Hashable().Test(v); !ok {
				t.Errorf("expected %T to be hashable", v)
			}
		}
		for _, v := range []any{[]int{}, map[string]int{}, func() {}, [1]any{[]int{1}}} {
			if ok, _ := Hashable().Test(v); ok {
				t.Errorf("expected %T not to be hashable", v)
			}
		}
		if _, reason := Hashable().Test([]int{1}); reason != "Value [1] ([]int) is not hashable" {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Callable", func(t *testing.T) {
		if ok, _ := Callable().Test(func() {}); !ok {
			t.Error("expected func to be callable")
		}
		var nilFunc func()
		if ok, _ := Callable().Test(nilFunc); ok {
			t.Error("expected nil func not to be callable")
		}
		if ok, _ := Callable().Test(5); ok {
			t.Error("expected int not to be callable")
		}
	})

	t.Run("Match Regex", func(t *testing.T) {
		p := MustMatchRegex("ab")
		if ok, _ := p.Test("abc"); !ok {
			t.Error("expected prefix match")
		}
		ok, reason := p.Test("cab")
		if ok {
			t.Error("expected match to be anchored at the start")
		}
		if reason != `"cab" string not matching the regex pattern "ab"` {
			t.Errorf("unexpected reason %q", reason)
		}
		_, reason = p.Test(5)
		if reason != "Type string expected but got int" {
			t.Errorf("unexpected reason %q", reason)
		}
		if p.String() != "match(ab)" {
			t.Errorf("unexpected String %q", p.String())
		}
	})

	t.Run("Full Match Regex", func(t *testing.T) {
		p := MustFullMatchRegex("a|ab")
		if ok, _ := p.Test("ab"); !ok {
			t.Error("expected full match of alternation")
		}
		ok, reason := p.Test("abc")
		if ok {
			t.Error("expected trailing text to be rejected")
		}
		if reason != `"abc" string not fully matching the regex pattern "a|ab"` {
			t.Errorf("unexpected reason %q", reason)
		}
	})

	t.Run("Bad Pattern", func(t *testing.T) {
		_, err := MatchRegex("(")
		if !IsContract(err) || !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected malformed spec contract error, got %v", err)
		}
		defer func() {
			if recover() == nil {
				t.Error("expected MustFullMatchRegex to panic")
			}
		}()
		MustFullMatchRegex("[")
	})
}
