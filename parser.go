package argz

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Parser is a named pure transform from a raw value to a processed one. The
// zero value passes values through unchanged.
type Parser struct {
	fn   func(any) (any, error)
	name string
}

// Apply wraps a fallible transform.
func Apply(name string, fn func(any) (any, error)) Parser {
	return Parser{name: name, fn: fn}
}

// Map wraps an infallible transform.
func Map(name string, fn func(any) any) Parser {
	return Parser{name: name, fn: func(v any) (any, error) { return fn(v), nil }}
}

// Typed wraps a transform over a concrete input type. Values of any other type
// fail to parse.
func Typed[T, U any](name string, fn func(T) (U, error)) Parser {
	return Parser{name: name, fn: func(v any) (any, error) {
		t, ok := v.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("expected %T but got %s", zero, typeName(v))
		}
		return fn(t)
	}}
}

// Passthrough returns the parser that leaves values untouched.
func Passthrough() Parser {
	return Parser{name: "passthrough"}
}

// Name returns the parser's name.
func (p Parser) Name() string {
	if p.name == "" && p.fn == nil {
		return "passthrough"
	}
	return p.name
}

func (p Parser) String() string {
	return p.Name()
}

// IsPassthrough reports whether the parser leaves values untouched.
func (p Parser) IsPassthrough() bool {
	return p.fn == nil
}

// Parse transforms v. Panics raised by the transform are returned as errors.
func (p Parser) Parse(v any) (result any, err error) {
	if p.fn == nil {
		return v, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &panicError{value: r}
		}
	}()
	return p.fn(v)
}

// ToString renders values with fmt.Sprint.
func ToString() Parser {
	return Map("string", func(v any) any {
		if s, ok := asString(v); ok {
			return s
		}
		return fmt.Sprint(v)
	})
}

// ToInt converts integers, bools, floats (truncated toward zero) and decimal
// strings to int.
func ToInt() Parser {
	return Apply("int", func(v any) (any, error) {
		if b, ok := asBool(v); ok {
			if b {
				return 1, nil
			}
			return 0, nil
		}
		if n, ok := asInt(v); ok {
			if n < math.MinInt || n > math.MaxInt {
				return nil, fmt.Errorf("%w: %d does not fit in int", ErrOverflow, n)
			}
			return int(n), nil
		}
		if f, ok := asFloat(v); ok {
			return floatToInt(f)
		}
		if s, ok := asString(v); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
			if err != nil {
				return nil, fmt.Errorf("invalid literal for int: %q", s)
			}
			return int(n), nil
		}
		return nil, fmt.Errorf("cannot convert %s to int", typeName(v))
	})
}

func floatToInt(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot convert %v to int", f)
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return nil, fmt.Errorf("%w: %v does not fit in int", ErrOverflow, f)
	}
	return int(t), nil
}

// ToFloat converts numbers, bools and numeric strings to float64.
func ToFloat() Parser {
	return Apply("float", func(v any) (any, error) {
		if f, ok := numericValue(v); ok {
			return f, nil
		}
		if s, ok := asString(v); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("could not convert string to float: %q", s)
			}
			return f, nil
		}
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Uint64 {
			return float64(reflect.ValueOf(v).Uint()), nil
		}
		return nil, fmt.Errorf("cannot convert %s to float", typeName(v))
	})
}

// ToBool parses strings with strconv.ParseBool and coerces everything else by
// truthiness.
func ToBool() Parser {
	return Apply("bool", func(v any) (any, error) {
		if s, ok := asString(v); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("invalid literal for bool: %q", s)
			}
			return b, nil
		}
		return truthy(v), nil
	})
}

func rounding(name string, round func(float64) float64) Parser {
	return Apply(name, func(v any) (any, error) {
		if n, ok := asInt(v); ok {
			return int(n), nil
		}
		if f, ok := asFloat(v); ok {
			return floatToInt(round(f))
		}
		return nil, fmt.Errorf("%w for %s: %s", ErrUnsupportedOperand, name, typeName(v))
	})
}

// Floor rounds numbers down to an int.
func Floor() Parser {
	return rounding("floor", math.Floor)
}

// Ceil rounds numbers up to an int.
func Ceil() Parser {
	return rounding("ceil", math.Ceil)
}

// AbsValue returns the absolute value of a number.
func AbsValue() Parser {
	return Apply("abs", abs)
}

func stringParser(name string, fn func(string) string) Parser {
	return Apply(name, func(v any) (any, error) {
		s, ok := asString(v)
		if !ok {
			return nil, fmt.Errorf("expected string but got %s", typeName(v))
		}
		return fn(s), nil
	})
}

// ToLower lower-cases strings.
func ToLower() Parser { return stringParser("lower", strings.ToLower) }

// ToUpper upper-cases strings.
func ToUpper() Parser { return stringParser("upper", strings.ToUpper) }

// TrimSpace strips leading and trailing white space from strings.
func TrimSpace() Parser { return stringParser("trim", strings.TrimSpace) }
