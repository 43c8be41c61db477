// Package argz attaches validators and parsers to a function's positional
// parameters and composes them into an ordered pipeline with positional,
// multi-level error attribution.
//
// # Overview
//
// A call hands argz an ordered slice of raw argument values. Each stage of a
// pipeline either validates the values (predicates that accept or reject and
// explain why) or parses them (pure transforms from raw to processed values).
// The pipeline returns the processed values or an error naming the argument
// position, the check or transform that failed and, when several stages are
// stacked, the stage level.
//
// # Predicates
//
// Every validator implements Predicate:
//
//   - TypeCheck: dynamic type membership (IsType, NewTypeCheck)
//   - ValueSet: equality with one of a set of literals (IsOneOf, NewValueSet)
//   - NumericRange: integers in an arithmetic sequence (InRange, NewNumericRange)
//   - UserPredicate: a caller-supplied function (Satisfies, SatisfiesErr)
//   - ExprPredicate: the truthiness of an expression (Expr.Predicate)
//   - Number, Uint, Iterable, Callable, MatchRegex, FullMatchRegex
//
// Predicates combine with Or, And, Xor and Not. Simplify rewrites a
// predicate tree into a cheaper equivalent; validating stages do this once at
// construction.
//
// # Expressions
//
// The placeholder I builds expression trees without evaluating them:
//
//	positive := argz.I.Gt(0).Predicate()
//	double := argz.I.Mul(2).Add(1).Parser()
//	bounded := argz.I.Ge(0).And(argz.I.Lt(10))
//
// A rejected value is reported with the expression rendered at that value,
// for example "Expression (15 >= 0) & (15 < 10) evaluated to false".
//
// # Specs
//
// A Spec is a loosely typed validator description (Type, Any, Literal, OneOf,
// Keys, Range, Func, Expression, Pred, List) that Resolve turns into a
// canonical Predicate once, when the stage is built.
//
// # Pipelines
//
// Stages are appended in attachment order. Input passes run the last appended
// stage first:
//
//	p := argz.NewPipeline("coords")
//	_ = p.Parse(argz.ToString(), argz.ToString())
//	_ = p.Validate(argz.Type[int](), argz.Type[int]())
//	out, err := p.ProcessInput(ctx, []any{1, 2}) // validated as ints, then ["1" "2"]
//
// Arguments wrapped with Skip, SkipValidation or SkipParsing keep their
// position but opt out of the corresponding stages. Function binds a pipeline
// to a declared parameter table with defaults.
//
// # Errors
//
// Data errors are *ValidationError and *ParsingError, rendered as
//
//	Invalid argument at position 2: Type int expected but got string (at level 1)
//
// Misuse of the API (arity mismatches, malformed specs, nil stages, bad call
// bindings) yields *ContractError wrapping one of the Err sentinels.
package argz
