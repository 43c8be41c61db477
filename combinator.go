package argz

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Disjunction accepts a value when any member accepts it. Members are tested
// left to right and testing stops at the first acceptance.
//
// When every member rejects, the reason lists every member's reason in order,
// separated by "; ".
type Disjunction struct {
	members []Predicate
}

// Or builds a Disjunction. Disjunction operands are flattened into the result.
func Or(first Predicate, rest ...Predicate) *Disjunction {
	d := &Disjunction{}
	for _, p := range append([]Predicate{first}, rest...) {
		if inner, ok := p.(*Disjunction); ok {
			d.members = append(d.members, inner.members...)
			continue
		}
		d.members = append(d.members, p)
	}
	return d
}

// Members returns the member predicates in order.
func (d *Disjunction) Members() []Predicate {
	return append([]Predicate(nil), d.members...)
}

// Test implements Predicate. A Disjunction without members rejects everything.
func (d *Disjunction) Test(value any) (bool, string) {
	if len(d.members) == 0 {
		return false, "no alternatives"
	}
	var failures error
	for _, p := range d.members {
		ok, reason := p.Test(value)
		if ok {
			return true, ""
		}
		if reason == "" {
			reason = fmt.Sprintf("%v rejected by %s", value, p)
		}
		failures = multierr.Append(failures, errors.New(reason))
	}
	return false, failures.Error()
}

func (d *Disjunction) String() string {
	return "(" + joinPredicates(d.members, " | ") + ")"
}

// Conjunction accepts a value when every member accepts it. Testing stops at
// the first rejection, whose reason is reported.
type Conjunction struct {
	members []Predicate
}

// And builds a Conjunction. Conjunction operands are flattened into the result.
func And(first Predicate, rest ...Predicate) *Conjunction {
	c := &Conjunction{}
	for _, p := range append([]Predicate{first}, rest...) {
		if inner, ok := p.(*Conjunction); ok {
			c.members = append(c.members, inner.members...)
			continue
		}
		c.members = append(c.members, p)
	}
	return c
}

// Members returns the member predicates in order.
func (c *Conjunction) Members() []Predicate {
	return append([]Predicate(nil), c.members...)
}

// Test implements Predicate.
func (c *Conjunction) Test(value any) (bool, string) {
	for _, p := range c.members {
		if ok, reason := p.Test(value); !ok {
			if reason == "" {
				reason = fmt.Sprintf("%v rejected by %s", value, p)
			}
			return false, reason
		}
	}
	return true, ""
}

func (c *Conjunction) String() string {
	return "(" + joinPredicates(c.members, " & ") + ")"
}

// Negation accepts exactly the values its inner predicate rejects.
type Negation struct {
	inner Predicate
}

// Not builds a Negation.
func Not(p Predicate) *Negation {
	return &Negation{inner: p}
}

// Inner returns the negated predicate.
func (n *Negation) Inner() Predicate {
	return n.inner
}

// Test implements Predicate.
func (n *Negation) Test(value any) (bool, string) {
	if ok, _ := n.inner.Test(value); ok {
		return false, fmt.Sprintf("Value %v must not satisfy %s", value, n.inner)
	}
	return true, ""
}

func (n *Negation) String() string {
	return "!" + n.inner.String()
}

// Exclusive accepts a value when exactly one of its two members accepts it,
// the same set as (a & !b) | (!a & b). Both members are always tested.
type Exclusive struct {
	a, b Predicate
}

// Xor builds an Exclusive.
func Xor(a, b Predicate) *Exclusive {
	return &Exclusive{a: a, b: b}
}

// Members returns both members.
func (x *Exclusive) Members() (Predicate, Predicate) {
	return x.a, x.b
}

// Test implements Predicate.
func (x *Exclusive) Test(value any) (bool, string) {
	okA, reasonA := x.a.Test(value)
	okB, reasonB := x.b.Test(value)
	switch {
	case okA != okB:
		return true, ""
	case okA:
		return false, fmt.Sprintf("Value %v satisfies both %s and %s", value, x.a, x.b)
	default:
		err := multierr.Combine(errors.New(reasonA), errors.New(reasonB))
		return false, fmt.Sprintf("Value %v satisfies neither %s nor %s: %v", value, x.a, x.b, err)
	}
}

func (x *Exclusive) String() string {
	return "(" + x.a.String() + " ^ " + x.b.String() + ")"
}

func joinPredicates(preds []Predicate, sep string) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}
