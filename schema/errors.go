package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors reported inside *Error.
var (
	ErrUnknownValidator = errors.New("unknown validator")
	ErrUnknownParser    = errors.New("unknown parser")
	ErrUnknownType      = errors.New("unknown type")
	ErrUnknownPredicate = errors.New("unknown predicate")
	ErrInvalidEntry     = errors.New("invalid entry")
	ErrInvalidStage     = errors.New("invalid stage")
)

// Error locates a problem in a schema document.
type Error struct {
	Err  error
	Path string
	Line int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(line int, path string, sentinel error, format string, args ...any) *Error {
	return &Error{
		Line: line,
		Path: path,
		Err:  fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}
