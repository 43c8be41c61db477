package argz

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// operator describes how an expression node is evaluated and rendered.
// template is a fmt format with one %s per operand.
type operator struct {
	binary   func(a, b any) (any, error)
	unary    func(a any) (any, error)
	symbol   string
	template string
}

func binaryOp(symbol string, fn func(a, b any) (any, error)) *operator {
	return &operator{symbol: symbol, template: "%s " + symbol + " %s", binary: fn}
}

func unaryOp(symbol, template string, fn func(a any) (any, error)) *operator {
	return &operator{symbol: symbol, template: template, unary: fn}
}

// Operator table.
var (
	opAdd      = binaryOp("+", add)
	opSub      = binaryOp("-", arith("-", subInt, func(x, y float64) (float64, error) { return x - y, nil }))
	opMul      = binaryOp("*", arith("*", mulInt, func(x, y float64) (float64, error) { return x * y, nil }))
	opDiv      = binaryOp("/", trueDiv)
	opFloorDiv = binaryOp("//", arith("//", floorDivInt, floorDivFloat))
	opMod      = binaryOp("%", arith("%", modInt, modFloat))
	opPow      = binaryOp("**", pow)

	opAnd = binaryOp("&", bitwise("&", func(x, y int64) int64 { return x & y }, func(x, y bool) bool { return x && y }))
	opOr  = binaryOp("|", bitwise("|", func(x, y int64) int64 { return x | y }, func(x, y bool) bool { return x || y }))
	opXor = binaryOp("^", bitwise("^", func(x, y int64) int64 { return x ^ y }, func(x, y bool) bool { return x != y }))
	opShl = binaryOp("<<", shl)
	opShr = binaryOp(">>", shr)

	opNeg    = unaryOp("neg", "-%s", neg)
	opPos    = unaryOp("pos", "+%s", pos)
	opAbs    = unaryOp("abs", "|%s|", abs)
	opInvert = unaryOp("~", "~%s", invert)

	opIndex = &operator{symbol: "[]", template: "%s[%s]", binary: index}

	opLt = binaryOp("<", compare("<", func(c int) bool { return c < 0 }))
	opLe = binaryOp("<=", compare("<=", func(c int) bool { return c <= 0 }))
	opGt = binaryOp(">", compare(">", func(c int) bool { return c > 0 }))
	opGe = binaryOp(">=", compare(">=", func(c int) bool { return c >= 0 }))
	opEq = binaryOp("==", func(a, b any) (any, error) { return looseEqual(a, b), nil })
	opNe = binaryOp("!=", func(a, b any) (any, error) { return !looseEqual(a, b), nil })
)

func unsupported(symbol string, operands ...any) error {
	names := make([]string, len(operands))
	for i, o := range operands {
		names[i] = typeName(o)
	}
	return fmt.Errorf("%w for '%s': %s", ErrUnsupportedOperand, symbol, strings.Join(names, " and "))
}

// numeric reports an operand as an int64 (ints and bools) or a float64.
func numeric(v any) (i int64, f float64, isInt, ok bool) {
	if b, isBool := asBool(v); isBool {
		if b {
			return 1, 1, true, true
		}
		return 0, 0, true, true
	}
	if n, isN := asInt(v); isN {
		return n, float64(n), true, true
	}
	if x, isF := asFloat(v); isF {
		return 0, x, false, true
	}
	return 0, 0, false, false
}

// integerType is the type an integer operand contributes to a result. Bools
// count as int.
func integerType(v any) reflect.Type {
	if _, ok := asBool(v); ok {
		return intType
	}
	return reflect.TypeOf(v)
}

// resultType picks the integer type of a binary result: the operands' shared
// type, or the other operand's type when one side is a plain int. Any other
// mix widens to int64.
func resultType(a, b any) reflect.Type {
	ta, tb := integerType(a), integerType(b)
	switch {
	case ta == tb:
		return ta
	case ta == intType:
		return tb
	case tb == intType:
		return ta
	}
	return int64Type
}

// narrow converts an int64 result to t, reporting results outside t's range
// as overflow.
func narrow(r int64, t reflect.Type) (any, error) {
	switch t {
	case int64Type:
		return r, nil
	case intType:
		if int64(int(r)) == r {
			return int(r), nil
		}
		return nil, fmt.Errorf("%w: %d does not fit int", ErrOverflow, r)
	}
	v := reflect.New(t).Elem()
	if isSignedKind(t.Kind()) {
		if v.OverflowInt(r) {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrOverflow, r, t)
		}
		v.SetInt(r)
		return v.Interface(), nil
	}
	if r < 0 || v.OverflowUint(uint64(r)) {
		return nil, fmt.Errorf("%w: %d does not fit %s", ErrOverflow, r, t)
	}
	v.SetUint(uint64(r))
	return v.Interface(), nil
}

func arith(symbol string, intOp func(x, y int64) (int64, error), floatOp func(x, y float64) (float64, error)) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		ai, af, aInt, aok := numeric(a)
		bi, bf, bInt, bok := numeric(b)
		if !aok || !bok {
			return nil, unsupported(symbol, a, b)
		}
		if aInt && bInt {
			r, err := intOp(ai, bi)
			if err != nil {
				return nil, err
			}
			return narrow(r, resultType(a, b))
		}
		return floatOp(af, bf)
	}
}

func add(a, b any) (any, error) {
	if x, ok := asString(a); ok {
		if y, ok := asString(b); ok {
			return x + y, nil
		}
		return nil, unsupported("+", a, b)
	}
	return arith("+", addInt, func(x, y float64) (float64, error) { return x + y, nil })(a, b)
}

func addInt(x, y int64) (int64, error) {
	if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, x, y)
	}
	return x + y, nil
}

func subInt(x, y int64) (int64, error) {
	if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, x, y)
	}
	return x - y, nil
}

func mulInt(x, y int64) (int64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	p := x * y
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) || p/y != x {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, x, y)
	}
	return p, nil
}

func trueDiv(a, b any) (any, error) {
	_, af, _, aok := numeric(a)
	_, bf, _, bok := numeric(b)
	if !aok || !bok {
		return nil, unsupported("/", a, b)
	}
	if bf == 0 {
		return nil, ErrDivisionByZero
	}
	return af / bf, nil
}

func floorDivInt(x, y int64) (int64, error) {
	if y == 0 {
		return 0, ErrDivisionByZero
	}
	if x == math.MinInt64 && y == -1 {
		return 0, fmt.Errorf("%w: %d // %d", ErrOverflow, x, y)
	}
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q, nil
}

func floorDivFloat(x, y float64) (float64, error) {
	if y == 0 {
		return 0, ErrDivisionByZero
	}
	return math.Floor(x / y), nil
}

// modInt takes the sign of the divisor.
func modInt(x, y int64) (int64, error) {
	if y == 0 {
		return 0, ErrDivisionByZero
	}
	r := x % y
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r, nil
}

func modFloat(x, y float64) (float64, error) {
	if y == 0 {
		return 0, ErrDivisionByZero
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r, nil
}

func pow(a, b any) (any, error) {
	ai, af, aInt, aok := numeric(a)
	bi, bf, bInt, bok := numeric(b)
	if !aok || !bok {
		return nil, unsupported("**", a, b)
	}
	if aInt && bInt && bi >= 0 {
		r, err := powInt(ai, bi)
		if err != nil {
			return nil, err
		}
		return narrow(r, resultType(a, b))
	}
	if af == 0 && bf < 0 {
		return nil, ErrDivisionByZero
	}
	if af < 0 && bf != math.Trunc(bf) {
		return nil, fmt.Errorf("%w: negative base %v with fractional exponent %v", ErrUnsupportedOperand, af, bf)
	}
	return math.Pow(af, bf), nil
}

func powInt(base, exp int64) (int64, error) {
	result := int64(1)
	b := base
	for e := exp; e > 0; e >>= 1 {
		var err error
		if e&1 == 1 {
			if result, err = mulInt(result, b); err != nil {
				return 0, fmt.Errorf("%w: %d ** %d", ErrOverflow, base, exp)
			}
		}
		if e > 1 {
			if b, err = mulInt(b, b); err != nil {
				return 0, fmt.Errorf("%w: %d ** %d", ErrOverflow, base, exp)
			}
		}
	}
	return result, nil
}

// bitwise accepts two integers, or two bools for which the result stays a bool.
func bitwise(symbol string, intOp func(x, y int64) int64, boolOp func(x, y bool) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		if x, ok := asBool(a); ok {
			if y, ok := asBool(b); ok {
				return boolOp(x, y), nil
			}
		}
		x, ok := integerOperand(a)
		if !ok {
			return nil, unsupported(symbol, a, b)
		}
		y, ok := integerOperand(b)
		if !ok {
			return nil, unsupported(symbol, a, b)
		}
		return narrow(intOp(x, y), resultType(a, b))
	}
}

func integerOperand(v any) (int64, bool) {
	i, _, isInt, ok := numeric(v)
	return i, ok && isInt
}

func shl(a, b any) (any, error) {
	x, okX := integerOperand(a)
	y, okY := integerOperand(b)
	if !okX || !okY {
		return nil, unsupported("<<", a, b)
	}
	if y < 0 {
		return nil, fmt.Errorf("%w: negative shift count %d", ErrUnsupportedOperand, y)
	}
	if x == 0 {
		return narrow(0, integerType(a))
	}
	if y >= 64 || (x<<y)>>y != x {
		return nil, fmt.Errorf("%w: %d << %d", ErrOverflow, x, y)
	}
	return narrow(x<<y, integerType(a))
}

func shr(a, b any) (any, error) {
	x, okX := integerOperand(a)
	y, okY := integerOperand(b)
	if !okX || !okY {
		return nil, unsupported(">>", a, b)
	}
	if y < 0 {
		return nil, fmt.Errorf("%w: negative shift count %d", ErrUnsupportedOperand, y)
	}
	if y >= 63 {
		y = 63
	}
	return narrow(x>>y, integerType(a))
}

func neg(a any) (any, error) {
	i, f, isInt, ok := numeric(a)
	if !ok {
		return nil, unsupported("neg", a)
	}
	if isInt {
		if i == math.MinInt64 {
			return nil, fmt.Errorf("%w: -(%d)", ErrOverflow, i)
		}
		return narrow(-i, integerType(a))
	}
	return -f, nil
}

func pos(a any) (any, error) {
	i, f, isInt, ok := numeric(a)
	if !ok {
		return nil, unsupported("pos", a)
	}
	if isInt {
		return narrow(i, integerType(a))
	}
	return f, nil
}

func abs(a any) (any, error) {
	i, f, isInt, ok := numeric(a)
	if !ok {
		return nil, unsupported("abs", a)
	}
	if isInt {
		if i == math.MinInt64 {
			return nil, fmt.Errorf("%w: |%d|", ErrOverflow, i)
		}
		if i < 0 {
			i = -i
		}
		return narrow(i, integerType(a))
	}
	return math.Abs(f), nil
}

func invert(a any) (any, error) {
	x, ok := integerOperand(a)
	if !ok {
		return nil, unsupported("~", a)
	}
	return narrow(^x, integerType(a))
}

// index supports slices, arrays and strings (by rune, negative indices count
// from the end) and maps.
func index(a, b any) (any, error) {
	if a == nil {
		return nil, unsupported("[]", a, b)
	}
	rv := reflect.ValueOf(a)
	switch rv.Kind() {
	case reflect.String:
		runes := []rune(rv.String())
		i, err := position(b, len(runes))
		if err != nil {
			return nil, err
		}
		return string(runes[i]), nil
	case reflect.Slice, reflect.Array:
		i, err := position(b, rv.Len())
		if err != nil {
			return nil, err
		}
		return rv.Index(i).Interface(), nil
	case reflect.Map:
		if b == nil {
			return nil, fmt.Errorf("%w: nil", ErrKeyNotFound)
		}
		key := reflect.ValueOf(b)
		keyType := rv.Type().Key()
		switch {
		case key.Type().AssignableTo(keyType):
		case isNumber(b) && key.Type().ConvertibleTo(keyType) && isIntKind(keyType.Kind()) == isInteger(b):
			key = key.Convert(keyType)
		default:
			return nil, unsupported("[]", a, b)
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, b)
		}
		return v.Interface(), nil
	}
	return nil, unsupported("[]", a, b)
}

func position(b any, length int) (int, error) {
	i, ok := integerOperand(b)
	if !ok {
		return 0, fmt.Errorf("%w: index must be an integer, got %s", ErrUnsupportedOperand, typeName(b))
	}
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, fmt.Errorf("%w: %v with length %d", ErrIndexOutOfRange, b, length)
	}
	return int(i), nil
}

// compare orders numbers against numbers and strings against strings.
func compare(symbol string, holds func(int) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) {
		if x, ok := asString(a); ok {
			if y, ok := asString(b); ok {
				return holds(strings.Compare(x, y)), nil
			}
			return nil, unsupported(symbol, a, b)
		}
		ai, af, aInt, aok := numeric(a)
		bi, bf, bInt, bok := numeric(b)
		if !aok || !bok {
			return nil, unsupported(symbol, a, b)
		}
		if aInt && bInt {
			return holds(cmpOrdered(ai, bi)), nil
		}
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false, nil
		}
		return holds(cmpOrdered(af, bf)), nil
	}
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
