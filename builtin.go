package argz

import (
	"fmt"
	"reflect"
	"regexp"
)

// kindCheck accepts values by reflect.Kind with a fixed explanation.
type kindCheck struct {
	accept func(v any) bool
	reason func(v any) string
	name   string
}

func (k *kindCheck) Test(value any) (bool, string) {
	if k.accept(value) {
		return true, ""
	}
	return false, k.reason(value)
}

func (k *kindCheck) String() string {
	return k.name
}

// Number accepts any integer or float kind. Bools are not numbers.
func Number() Predicate {
	return &kindCheck{
		name:   "number",
		accept: isNumber,
		reason: func(v any) string {
			return fmt.Sprintf("Numeric type expected but got %s", typeName(v))
		},
	}
}

// Uint accepts integer kinds greater than or equal to zero.
func Uint() Predicate {
	return &kindCheck{
		name: "uint",
		accept: func(v any) bool {
			n, ok := asInt(v)
			if ok {
				return n >= 0
			}
			// values above MaxInt64 only exist for unsigned kinds
			return v != nil && isIntKind(reflect.TypeOf(v).Kind())
		},
		reason: func(v any) string {
			return fmt.Sprintf("int value greater or equal than 0 expected but got %v (%s)", v, typeName(v))
		},
	}
}

// Iterable accepts strings, slices, arrays, maps and channels.
func Iterable() Predicate {
	return &kindCheck{
		name: "iterable",
		accept: func(v any) bool {
			if v == nil {
				return false
			}
			switch reflect.TypeOf(v).Kind() {
			case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
				return true
			}
			return false
		},
		reason: func(v any) string {
			return fmt.Sprintf("Value %v is not iterable", v)
		},
	}
}

// Hashable accepts values usable as map keys, checking the dynamic contents
// of interfaces, arrays and structs. nil is hashable.
func Hashable() Predicate {
	return &kindCheck{
		name: "hashable",
		accept: func(v any) bool {
			return v == nil || reflect.ValueOf(v).Comparable()
		},
		reason: func(v any) string {
			return fmt.Sprintf("Value %v (%s) is not hashable", v, typeName(v))
		},
	}
}

// Callable accepts non-nil function values.
func Callable() Predicate {
	return &kindCheck{
		name: "callable",
		accept: func(v any) bool {
			if v == nil {
				return false
			}
			rv := reflect.ValueOf(v)
			return rv.Kind() == reflect.Func && !rv.IsNil()
		},
		reason: func(v any) string {
			return fmt.Sprintf("Value %v is not callable", v)
		},
	}
}

// RegexPredicate accepts strings matching a pattern anchored at the start,
// or over the whole string when full is set.
type RegexPredicate struct {
	prog    *regexp.Regexp
	pattern string
	full    bool
}

// MatchRegex accepts strings whose prefix matches pattern.
func MatchRegex(pattern string) (*RegexPredicate, error) {
	return compileRegex(pattern, false)
}

// FullMatchRegex accepts strings entirely matched by pattern.
func FullMatchRegex(pattern string) (*RegexPredicate, error) {
	return compileRegex(pattern, true)
}

// MustMatchRegex is like MatchRegex but panics on a bad pattern.
func MustMatchRegex(pattern string) *RegexPredicate {
	p, err := MatchRegex(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// MustFullMatchRegex is like FullMatchRegex but panics on a bad pattern.
func MustFullMatchRegex(pattern string) *RegexPredicate {
	p, err := FullMatchRegex(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func compileRegex(pattern string, full bool) (*RegexPredicate, error) {
	anchored := "^(?:" + pattern + ")"
	if full {
		anchored += "$"
	}
	prog, err := regexp.Compile(anchored)
	if err != nil {
		return nil, &ContractError{Op: "regex", Err: fmt.Errorf("%w: %w", ErrMalformedSpec, err)}
	}
	return &RegexPredicate{prog: prog, pattern: pattern, full: full}, nil
}

// Test implements Predicate.
func (r *RegexPredicate) Test(value any) (bool, string) {
	s, ok := asString(value)
	if !ok {
		return false, fmt.Sprintf("Type string expected but got %s", typeName(value))
	}
	if r.prog.MatchString(s) {
		return true, ""
	}
	if r.full {
		return false, fmt.Sprintf("%q string not fully matching the regex pattern %q", s, r.pattern)
	}
	return false, fmt.Sprintf("%q string not matching the regex pattern %q", s, r.pattern)
}

func (r *RegexPredicate) String() string {
	if r.full {
		return "fullmatch(" + r.pattern + ")"
	}
	return "match(" + r.pattern + ")"
}
