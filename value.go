package argz

import (
	"fmt"
	"math"
	"reflect"
)

// anyType is the universal interface type. A TypeCheck over it accepts every value.
var anyType = reflect.TypeOf((*any)(nil)).Elem()

// boolType is the exact runtime type singled out by TypeCheck's bool rule.
var boolType = reflect.TypeOf(false)

var (
	intType   = reflect.TypeOf(0)
	int64Type = reflect.TypeOf(int64(0))
)

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isSignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// asInt reports the value of any integer kind as an int64. Bools are not integers here.
// Unsigned values above math.MaxInt64 are rejected.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// asFloat reports the value of any float kind as a float64.
func asFloat(v any) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if isFloatKind(rv.Kind()) {
		return rv.Float(), true
	}
	return 0, false
}

// asBool reports the value of any bool kind.
func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if v == nil {
		return false, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// asString reports the value of any string kind.
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// isInteger reports whether v has an integer kind.
func isInteger(v any) bool {
	_, ok := asInt(v)
	return ok
}

// isNumber reports whether v has an integer or float kind.
func isNumber(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return isIntKind(k) || isFloatKind(k)
}

// truthy coerces a value the way the expression language does: false, zero
// numbers, empty strings and containers, and nil are false.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := asBool(v); ok {
		return b
	}
	if i, ok := asInt(v); ok {
		return i != 0
	}
	if f, ok := asFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return true
}

// looseEqual compares numbers by value across kinds (bools count as 0 and 1)
// and everything else with reflect.DeepEqual.
func looseEqual(a, b any) bool {
	if x, ok := asInt(a); ok {
		if y, ok := asInt(b); ok {
			return x == y
		}
	}
	if x, ok := numericValue(a); ok {
		if y, ok := numericValue(b); ok {
			return x == y
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// numericValue widens ints, floats and bools to float64 for comparison.
// Large int64 values lose precision; exact int comparison goes through asInt first.
func numericValue(v any) (float64, bool) {
	if b, ok := asBool(v); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return asFloat(v)
}

// formatValue renders a literal for expression text: strings are single quoted.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	if v == nil {
		return "nil"
	}
	return fmt.Sprint(v)
}

// typeName renders the dynamic type of v.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
