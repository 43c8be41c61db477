package argz

import (
	"errors"
	"fmt"
	"time"
)

// Contract violations. These are programmer errors: they are never leveled
// and never produced by bad data.
var (
	ErrArityMismatch  = errors.New("arity mismatch")
	ErrMalformedSpec  = errors.New("malformed specification")
	ErrNilStage       = errors.New("stage is nil")
	ErrUnknownParam   = errors.New("unknown parameter")
	ErrMissingParam   = errors.New("missing parameter")
	ErrDuplicateParam = errors.New("parameter bound twice")
)

// Expression evaluation errors. Operators return them wrapped with the
// operands involved.
var (
	ErrUnsupportedOperand = errors.New("unsupported operand")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrOverflow           = errors.New("integer overflow")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrKeyNotFound        = errors.New("key not found")
)

// ValidationError reports the first argument a validating stage rejected.
//
// Position is 0-based; messages render it 1-based. Level is the 1-based depth
// of the failing stage and is 0 when the pipeline holds a single stage.
type ValidationError struct {
	Value     any
	Timestamp time.Time
	Reason    string
	Predicate string
	Position  int
	Level     int
	Output    bool
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	subject := "Invalid argument"
	if e.Output {
		subject = "Invalid output value"
	}
	return describe(subject, e.Position, e.Reason, e.Level)
}

// ParsingError reports the first argument a parsing stage failed to transform.
type ParsingError struct {
	Value     any
	Timestamp time.Time
	Err       error
	Parser    string
	Position  int
	Level     int
	Output    bool
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	subject := "Error parsing argument"
	if e.Output {
		subject = "Error parsing output value"
	}
	reason := ""
	if e.Err != nil {
		reason = e.Err.Error()
	}
	if e.Parser != "" {
		if reason == "" {
			reason = e.Parser + " failed"
		} else {
			reason = e.Parser + ": " + reason
		}
	}
	return describe(subject, e.Position, reason, e.Level)
}

// Unwrap returns the error raised by the parser.
func (e *ParsingError) Unwrap() error {
	return e.Err
}

func describe(subject string, position int, reason string, level int) string {
	msg := fmt.Sprintf("%s at position %d", subject, position+1)
	if reason != "" {
		msg += ": " + reason
	}
	if level > 0 {
		msg += fmt.Sprintf(" (at level %d)", level)
	}
	return msg
}

// ContractError reports misuse of the API: arity mismatches, malformed specs,
// nil stages and bad call bindings.
type ContractError struct {
	Err error
	Op  string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ContractError) Unwrap() error {
	return e.Err
}

func contractf(op string, sentinel error, format string, args ...any) *ContractError {
	return &ContractError{
		Op:  op,
		Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsParsing reports whether err is or wraps a *ParsingError.
func IsParsing(err error) bool {
	var pe *ParsingError
	return errors.As(err, &pe)
}

// IsContract reports whether err is or wraps a *ContractError.
func IsContract(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// panicError converts a recovered panic into an error.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p.value)
}

func (p *panicError) Unwrap() error {
	if err, ok := p.value.(error); ok {
		return err
	}
	return nil
}
