package argz

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// SpecKind identifies the variant held by a Spec.
type SpecKind int

// Spec variants. The zero Spec is invalid.
const (
	InvalidSpec SpecKind = iota
	TypeSpec
	AnySpec
	LiteralSpec
	OneOfSpec
	KeysSpec
	RangeSpec
	FuncSpec
	ExprSpec
	PredicateSpec
	ListSpec
)

var specKindNames = map[SpecKind]string{
	InvalidSpec:   "invalid",
	TypeSpec:      "type",
	AnySpec:       "any",
	LiteralSpec:   "literal",
	OneOfSpec:     "oneof",
	KeysSpec:      "keys",
	RangeSpec:     "range",
	FuncSpec:      "func",
	ExprSpec:      "expr",
	PredicateSpec: "predicate",
	ListSpec:      "list",
}

func (k SpecKind) String() string {
	if name, ok := specKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SpecKind(%d)", int(k))
}

// Spec is a loosely typed description of a validator, resolved once into a
// Predicate by Resolve. Build one with the constructors below.
type Spec struct {
	typ               reflect.Type
	pred              Predicate
	fn                func(any) (bool, error)
	values            []any
	items             []Spec
	name              string
	expr              Expr
	start, stop, step int64
	kind              SpecKind
}

// Type describes values of type T (and, for interfaces, its implementers).
func Type[T any]() Spec {
	return Spec{kind: TypeSpec, typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOf describes values of the given type.
func TypeOf(t reflect.Type) Spec {
	return Spec{kind: TypeSpec, typ: t}
}

// Any matches every value.
func Any() Spec {
	return Spec{kind: AnySpec}
}

// Literal matches values equal to v with the same dynamic type.
func Literal(v any) Spec {
	return Spec{kind: LiteralSpec, values: []any{v}}
}

// OneOf matches values equal to any of vs with the same dynamic type.
func OneOf(vs ...any) Spec {
	return Spec{kind: OneOfSpec, values: append([]any(nil), vs...)}
}

// Keys matches the keys of m. The mapped values are ignored.
func Keys[K comparable, V any](m map[K]V) Spec {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := fmt.Sprint(keys[i]), fmt.Sprint(keys[j])
		if a != b {
			return a < b
		}
		return typeName(keys[i]) < typeName(keys[j])
	})
	return Spec{kind: KeysSpec, values: keys}
}

// Range matches integers in [start, stop).
func Range(start, stop int64) Spec {
	return RangeStep(start, stop, 1)
}

// RangeStep matches integers in the arithmetic sequence from start by step,
// stopping before stop.
func RangeStep(start, stop, step int64) Spec {
	return Spec{kind: RangeSpec, start: start, stop: stop, step: step}
}

// Func matches values for which fn returns true.
func Func(fn func(any) bool) Spec {
	s := Spec{kind: FuncSpec, name: funcName(fn)}
	if fn != nil {
		s.fn = func(v any) (bool, error) { return fn(v), nil }
	}
	return s
}

// FuncErr matches values for which fn returns true and no error.
func FuncErr(fn func(any) (bool, error)) Spec {
	return Spec{kind: FuncSpec, fn: fn, name: funcName(fn)}
}

// Expression matches values for which e evaluates truthy.
func Expression(e Expr) Spec {
	return Spec{kind: ExprSpec, expr: e}
}

// Pred wraps an already built predicate.
func Pred(p Predicate) Spec {
	return Spec{kind: PredicateSpec, pred: p}
}

// List matches values accepted by any of the items.
func List(items ...Spec) Spec {
	return Spec{kind: ListSpec, items: append([]Spec(nil), items...)}
}

// Kind returns the variant.
func (s Spec) Kind() SpecKind {
	return s.kind
}

func (s Spec) String() string {
	switch s.kind {
	case TypeSpec:
		if s.typ == nil {
			return "type(nil)"
		}
		return "type(" + s.typ.String() + ")"
	case AnySpec:
		return "any"
	case LiteralSpec, OneOfSpec, KeysSpec:
		parts := make([]string, len(s.values))
		for i, v := range s.values {
			parts[i] = fmt.Sprint(v)
		}
		return s.kind.String() + "(" + strings.Join(parts, ", ") + ")"
	case RangeSpec:
		return fmt.Sprintf("range(%d, %d, %d)", s.start, s.stop, s.step)
	case FuncSpec:
		return "func(" + s.name + ")"
	case ExprSpec:
		return "expr(" + s.expr.String() + ")"
	case PredicateSpec:
		if s.pred == nil {
			return "predicate(nil)"
		}
		return s.pred.String()
	case ListSpec:
		parts := make([]string, len(s.items))
		for i, item := range s.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "invalid"
}

// Resolve converts a spec into its canonical predicate. Resolving a Pred spec
// returns the wrapped predicate itself. Malformed specs yield a
// *ContractError wrapping ErrMalformedSpec.
func Resolve(s Spec) (Predicate, error) {
	switch s.kind {
	case PredicateSpec:
		if s.pred == nil {
			return nil, contractf("resolve", ErrMalformedSpec, "nil predicate")
		}
		return s.pred, nil
	case AnySpec:
		return Empty(), nil
	case TypeSpec:
		return NewTypeCheck([]reflect.Type{s.typ}, true, false)
	case LiteralSpec, OneOfSpec, KeysSpec:
		return NewValueSet(s.values, true)
	case ExprSpec:
		return s.expr.Predicate(), nil
	case FuncSpec:
		if s.fn == nil {
			return nil, contractf("resolve", ErrMalformedSpec, "nil function")
		}
		return &UserPredicate{fn: s.fn, name: s.name}, nil
	case RangeSpec:
		return NewNumericRange(s.start, s.stop, s.step, true)
	case ListSpec:
		return resolveList(s.items)
	}
	return nil, contractf("resolve", ErrMalformedSpec, "spec of kind %s", s.kind)
}

func resolveList(items []Spec) (Predicate, error) {
	if len(items) == 0 {
		return nil, contractf("resolve", ErrMalformedSpec, "empty list")
	}
	literal := true
	for _, item := range items {
		switch item.kind {
		case LiteralSpec, OneOfSpec, KeysSpec:
		default:
			literal = false
		}
	}
	if literal {
		var values []any
		for _, item := range items {
			values = append(values, item.values...)
		}
		return NewValueSet(values, true)
	}
	preds := make([]Predicate, len(items))
	for i, item := range items {
		p, err := Resolve(item)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return Or(preds[0], preds[1:]...), nil
}

// MustResolve is like Resolve but panics on a malformed spec.
func MustResolve(s Spec) Predicate {
	p, err := Resolve(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ResolveAll resolves specs in order, stopping at the first malformed one.
func ResolveAll(specs ...Spec) ([]Predicate, error) {
	preds := make([]Predicate, len(specs))
	for i, s := range specs {
		p, err := Resolve(s)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}
