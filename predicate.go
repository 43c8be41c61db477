package argz

import (
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strings"
)

// EmptyPredicate accepts every value.
type EmptyPredicate struct{}

// Empty returns the predicate that accepts everything.
func Empty() Predicate {
	return EmptyPredicate{}
}

// Test implements Predicate.
func (EmptyPredicate) Test(any) (bool, string) {
	return true, ""
}

func (EmptyPredicate) String() string {
	return "any"
}

// TypeCheck accepts values whose dynamic type belongs to a configured set.
//
// With subclasses enabled (the default) a configured type T also accepts:
//   - values of any type implementing T when T is an interface,
//   - named types sharing T's basic kind (type Port int matches int),
//   - bools when T is an integer kind and bool subclasses are enabled.
//
// A bare bool value is always compared exactly unless bool subclasses are enabled.
type TypeCheck struct {
	types          []reflect.Type
	subclasses     bool
	boolSubclasses bool
}

// NewTypeCheck builds a TypeCheck over the given types. Duplicates are
// dropped; an empty or nil type set is a contract violation.
func NewTypeCheck(types []reflect.Type, subclasses, boolSubclasses bool) (*TypeCheck, error) {
	unique := make([]reflect.Type, 0, len(types))
	for _, t := range types {
		if t == nil {
			return nil, contractf("type check", ErrMalformedSpec, "nil type")
		}
		if !containsType(unique, t) {
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		return nil, contractf("type check", ErrMalformedSpec, "no types given")
	}
	return &TypeCheck{types: unique, subclasses: subclasses, boolSubclasses: boolSubclasses}, nil
}

// IsType returns a TypeCheck for T with subclasses enabled.
//
//	argz.IsType[int]()          // int and named int types
//	argz.IsType[fmt.Stringer]() // anything implementing String()
func IsType[T any]() *TypeCheck {
	return &TypeCheck{
		types:      []reflect.Type{reflect.TypeOf((*T)(nil)).Elem()},
		subclasses: true,
	}
}

// Exact returns a copy that only accepts the configured types themselves.
func (c *TypeCheck) Exact() *TypeCheck {
	cp := *c
	cp.subclasses = false
	return &cp
}

// WithBoolSubclasses returns a copy that lets bools satisfy integer types.
func (c *TypeCheck) WithBoolSubclasses() *TypeCheck {
	cp := *c
	cp.boolSubclasses = true
	return &cp
}

// Types returns the configured types.
func (c *TypeCheck) Types() []reflect.Type {
	return append([]reflect.Type(nil), c.types...)
}

// Test implements Predicate.
func (c *TypeCheck) Test(value any) (bool, string) {
	if c.accepts(value) {
		return true, ""
	}
	return false, fmt.Sprintf("Type %s expected but got %s", c.names(" or "), typeName(value))
}

func (c *TypeCheck) accepts(value any) bool {
	if value == nil {
		if !c.subclasses {
			return false
		}
		for _, want := range c.types {
			if want.Kind() == reflect.Interface {
				return true
			}
		}
		return false
	}
	t := reflect.TypeOf(value)
	exact := !c.subclasses || (t == boolType && !c.boolSubclasses)
	for _, want := range c.types {
		if t == want {
			return true
		}
		if exact {
			continue
		}
		if want.Kind() == reflect.Interface {
			if t.Implements(want) {
				return true
			}
			continue
		}
		if isBasicKind(want.Kind()) && t.Kind() == want.Kind() {
			return true
		}
		if c.boolSubclasses && t.Kind() == reflect.Bool && isIntKind(want.Kind()) {
			return true
		}
	}
	return false
}

func (c *TypeCheck) names(sep string) string {
	names := make([]string, len(c.types))
	for i, t := range c.types {
		names[i] = t.String()
	}
	return strings.Join(names, sep)
}

func (c *TypeCheck) String() string {
	return "type(" + c.names(", ") + ")"
}

func isBasicKind(k reflect.Kind) bool {
	return k == reflect.Bool || k == reflect.String || isIntKind(k) || isFloatKind(k) ||
		k == reflect.Complex64 || k == reflect.Complex128
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// ValueSet accepts values equal to one of its members. With matchTypes the
// dynamic type must also be identical, so true never matches 1 and int64(1)
// never matches int(1).
type ValueSet struct {
	values     []any
	matchTypes bool
}

// NewValueSet builds a ValueSet, dropping duplicate members. An empty member
// list is a contract violation.
func NewValueSet(values []any, matchTypes bool) (*ValueSet, error) {
	if len(values) == 0 {
		return nil, contractf("value set", ErrMalformedSpec, "no values given")
	}
	set := &ValueSet{matchTypes: matchTypes}
	for _, v := range values {
		if !set.contains(v) {
			set.values = append(set.values, v)
		}
	}
	return set, nil
}

// IsOneOf returns a ValueSet with type matching enabled. It panics when no
// values are given.
func IsOneOf(values ...any) *ValueSet {
	set, err := NewValueSet(values, true)
	if err != nil {
		panic(err)
	}
	return set
}

// Loose returns a copy that compares values without matching types.
func (s *ValueSet) Loose() *ValueSet {
	cp := *s
	cp.matchTypes = false
	return &cp
}

// Values returns the members in insertion order.
func (s *ValueSet) Values() []any {
	return append([]any(nil), s.values...)
}

// Test implements Predicate.
func (s *ValueSet) Test(value any) (bool, string) {
	if s.contains(value) {
		return true, ""
	}
	return false, fmt.Sprintf("Value %s expected but got %v", s.join(" or "), value)
}

func (s *ValueSet) contains(value any) bool {
	for _, member := range s.values {
		if s.matchTypes && reflect.TypeOf(member) != reflect.TypeOf(value) {
			continue
		}
		if looseEqual(member, value) {
			return true
		}
	}
	return false
}

func (s *ValueSet) join(sep string) string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}

func (s *ValueSet) String() string {
	return "value(" + s.join(", ") + ")"
}

// NumericRange accepts integers in the arithmetic sequence start, start+step,
// ... stopping before stop. Membership is decided in constant time.
//
// With matchTypes only integer kinds are accepted; without it integral floats
// and bools (as 0 and 1) are accepted as well.
type NumericRange struct {
	exact      reflect.Type
	start      int64
	stop       int64
	step       int64
	matchTypes bool
}

// NewNumericRange builds a NumericRange. A zero step is a contract violation.
func NewNumericRange(start, stop, step int64, matchTypes bool) (*NumericRange, error) {
	if step == 0 {
		return nil, contractf("range", ErrMalformedSpec, "step must not be zero")
	}
	return &NumericRange{start: start, stop: stop, step: step, matchTypes: matchTypes}, nil
}

// InRange returns the range [start, stop) with step 1 and type matching enabled.
func InRange(start, stop int64) *NumericRange {
	return &NumericRange{start: start, stop: stop, step: 1, matchTypes: true}
}

// Bounds returns start, stop and step.
func (r *NumericRange) Bounds() (start, stop, step int64) {
	return r.start, r.stop, r.step
}

// Test implements Predicate.
func (r *NumericRange) Test(value any) (bool, string) {
	if r.accepts(value) {
		return true, ""
	}
	return false, fmt.Sprintf("Value in %s expected but got %v", r.interval(), value)
}

func (r *NumericRange) accepts(value any) bool {
	if r.exact != nil && reflect.TypeOf(value) != r.exact {
		return false
	}
	if n, ok := asInt(value); ok {
		return r.contains(n)
	}
	if r.matchTypes {
		return false
	}
	if b, ok := asBool(value); ok {
		if b {
			return r.contains(1)
		}
		return r.contains(0)
	}
	if f, ok := asFloat(value); ok {
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return false
		}
		return r.contains(int64(f))
	}
	return false
}

func (r *NumericRange) contains(n int64) bool {
	if r.step > 0 {
		if n < r.start || n >= r.stop {
			return false
		}
		return (uint64(n)-uint64(r.start))%uint64(r.step) == 0
	}
	if n > r.start || n <= r.stop {
		return false
	}
	return (uint64(r.start)-uint64(n))%uint64(-r.step) == 0
}

func (r *NumericRange) interval() string {
	if r.step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.start, r.stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.start, r.stop, r.step)
}

func (r *NumericRange) String() string {
	return r.interval()
}

// UserPredicate runs a caller-supplied function. A returned error or a panic
// rejects the value; a non-empty error message becomes the reason.
type UserPredicate struct {
	fn   func(any) (bool, error)
	name string
}

// Satisfies wraps a boolean function. The predicate is named after the function.
func Satisfies(fn func(any) bool) *UserPredicate {
	p := &UserPredicate{name: funcName(fn)}
	if fn != nil {
		p.fn = func(v any) (bool, error) { return fn(v), nil }
	}
	return p
}

// SatisfiesErr wraps a function that may explain rejection through its error.
func SatisfiesErr(fn func(any) (bool, error)) *UserPredicate {
	return &UserPredicate{fn: fn, name: funcName(fn)}
}

// Named returns a copy reported under the given name.
func (p *UserPredicate) Named(name string) *UserPredicate {
	cp := *p
	cp.name = name
	return &cp
}

// Test implements Predicate.
func (p *UserPredicate) Test(value any) (ok bool, reason string) {
	if p.fn == nil {
		return false, "predicate function is nil"
	}
	defer func() {
		if r := recover(); r != nil {
			ok, reason = false, (&panicError{value: r}).Error()
			if reason == "" {
				reason = p.failure()
			}
		}
	}()
	valid, err := p.fn(value)
	if err != nil {
		if msg := err.Error(); msg != "" {
			return false, msg
		}
		return false, p.failure()
	}
	if !valid {
		return false, p.failure()
	}
	return true, ""
}

func (p *UserPredicate) failure() string {
	if p.name == "" {
		return "Expression evaluated to false"
	}
	return fmt.Sprintf("Expression %s evaluated to false", p.name)
}

func (p *UserPredicate) String() string {
	return "func(" + p.name + ")"
}

// funcName returns the package-qualified name of a function value.
func funcName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
