package argz

// Predicate is a pure single-argument test. Test returns (true, "") when the
// value is accepted and (false, reason) otherwise; the reason explains the
// rejection in human terms and is never empty for built-in predicates.
//
// Every Predicate in this package is immutable once constructed, so a single
// instance can be shared by any number of stages and pipelines:
//
//	positive := argz.I.Gt(0).Predicate()
//	ok, reason := positive.Test(-3)
//	// ok == false, reason == "Expression -3 > 0 evaluated to false"
//
// String renders the predicate for diagnostics and is what ValidationError
// carries in its Predicate field.
type Predicate interface {
	Test(value any) (bool, string)
	String() string
}

// Name is a type alias for pipeline, stage and parser names.
// Using this type encourages storing names as constants rather than
// using inline strings throughout your code.
//
// Example:
//
//	const (
//	    TransferName Name = "transfer"
//	    AmountName   Name = "amount"
//	)
type Name = string
