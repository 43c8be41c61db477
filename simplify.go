package argz

import (
	"reflect"
	"slices"
)

// Simplify returns a predicate accepting exactly the same values as p that is
// cheaper to evaluate. Validating stages simplify their predicates once, at
// construction.
//
//   - a TypeCheck over any (with subclasses) becomes Empty
//   - single-member combinators collapse to the member
//   - a Disjunction with an Empty member becomes Empty
//   - Conjunction members that are Empty are dropped
//   - TypeChecks with equal flags inside a Disjunction merge, as do ValueSets
//     with equal type matching, at the position of the first one
//   - a ValueSet of three or more integers in arithmetic progression becomes
//     a NumericRange
//   - a double negation cancels
//
// Merging changes the reasons reported on rejection, never the outcome.
func Simplify(p Predicate) Predicate {
	switch q := p.(type) {
	case *TypeCheck:
		if q.subclasses && containsType(q.types, anyType) {
			return Empty()
		}
		return q
	case *ValueSet:
		if r := progression(q); r != nil {
			return r
		}
		return q
	case *Disjunction:
		return simplifyDisjunction(q)
	case *Conjunction:
		return simplifyConjunction(q)
	case *Negation:
		inner := Simplify(q.inner)
		if twice, ok := inner.(*Negation); ok {
			return twice.inner
		}
		return Not(inner)
	case *Exclusive:
		return Xor(Simplify(q.a), Simplify(q.b))
	}
	return p
}

func simplifyDisjunction(d *Disjunction) Predicate {
	var members []Predicate
	for _, m := range d.members {
		s := Simplify(m)
		if _, ok := s.(EmptyPredicate); ok {
			return s
		}
		if inner, ok := s.(*Disjunction); ok {
			members = append(members, inner.members...)
			continue
		}
		members = append(members, s)
	}

	type typeFlags struct{ subclasses, boolSubclasses bool }
	typeAt := map[typeFlags]int{}
	valueAt := map[bool]int{}
	merged := make([]Predicate, 0, len(members))
	for _, m := range members {
		switch q := m.(type) {
		case *TypeCheck:
			key := typeFlags{q.subclasses, q.boolSubclasses}
			if i, ok := typeAt[key]; ok {
				prev := merged[i].(*TypeCheck)
				types := slices.Clone(prev.types)
				for _, t := range q.types {
					if !containsType(types, t) {
						types = append(types, t)
					}
				}
				merged[i] = &TypeCheck{types: types, subclasses: q.subclasses, boolSubclasses: q.boolSubclasses}
				continue
			}
			typeAt[key] = len(merged)
		case *ValueSet:
			if i, ok := valueAt[q.matchTypes]; ok {
				prev := merged[i].(*ValueSet)
				set, _ := NewValueSet(append(slices.Clone(prev.values), q.values...), q.matchTypes) //nolint:errcheck // non-empty
				merged[i] = set
				continue
			}
			valueAt[q.matchTypes] = len(merged)
		}
		merged = append(merged, m)
	}
	for i, m := range merged {
		merged[i] = Simplify(m)
		if _, ok := merged[i].(EmptyPredicate); ok {
			return merged[i]
		}
	}
	if len(merged) == 1 {
		return merged[0]
	}
	return &Disjunction{members: merged}
}

func simplifyConjunction(c *Conjunction) Predicate {
	var members []Predicate
	for _, m := range c.members {
		s := Simplify(m)
		switch q := s.(type) {
		case EmptyPredicate:
			continue
		case *Conjunction:
			members = append(members, q.members...)
			continue
		}
		members = append(members, s)
	}
	switch len(members) {
	case 0:
		return Empty()
	case 1:
		return members[0]
	}
	return &Conjunction{members: members}
}

// progression turns a ValueSet of integers in arithmetic progression into an
// equivalent NumericRange, or returns nil.
func progression(s *ValueSet) *NumericRange {
	if len(s.values) < 3 {
		return nil
	}
	var exact reflect.Type
	ints := make([]int64, len(s.values))
	for i, v := range s.values {
		n, ok := asInt(v)
		if !ok {
			return nil
		}
		if s.matchTypes {
			t := reflect.TypeOf(v)
			if exact == nil {
				exact = t
			} else if exact != t {
				return nil
			}
		}
		ints[i] = n
	}
	slices.Sort(ints)
	step := ints[1] - ints[0]
	if step <= 0 {
		return nil
	}
	for i := 2; i < len(ints); i++ {
		if ints[i]-ints[i-1] != step {
			return nil
		}
	}
	last := ints[len(ints)-1]
	if last == 1<<63-1 {
		return nil
	}
	return &NumericRange{
		exact:      exact,
		start:      ints[0],
		stop:       last + 1,
		step:       step,
		matchTypes: s.matchTypes,
	}
}
