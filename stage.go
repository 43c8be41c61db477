package argz

import "slices"

// StageKind distinguishes validating stages from parsing stages.
type StageKind string

// Stage kinds.
const (
	ValidateKind StageKind = "validate"
	ParseKind    StageKind = "parse"
)

// Stage processes a fixed number of positional values. Inputs and outputs are
// processed independently; a stage without output items passes outputs
// through unchanged.
//
// Stages report failures as *ValidationError or *ParsingError without a
// level. Calling a stage with the wrong number of values is a contract
// violation.
type Stage interface {
	ProcessInput(args []any) ([]any, error)
	ProcessOutput(outputs []any) ([]any, error)
	Arity() int
	Kind() StageKind
	Name() Name
}

// ValidateStage tests each positional value against the predicate at the same
// position. It never changes values.
type ValidateStage struct {
	name    Name
	inputs  []Predicate
	outputs []Predicate
}

// NewValidateStage builds a validating stage of arity len(preds). Predicates
// are simplified; nil entries accept everything.
func NewValidateStage(preds ...Predicate) *ValidateStage {
	return &ValidateStage{name: Name(ValidateKind), inputs: simplifyAll(preds)}
}

func simplifyAll(preds []Predicate) []Predicate {
	out := make([]Predicate, len(preds))
	for i, p := range preds {
		if p == nil {
			out[i] = Empty()
			continue
		}
		out[i] = Simplify(p)
	}
	return out
}

// WithOutput returns a copy that also validates output values.
func (s *ValidateStage) WithOutput(preds ...Predicate) *ValidateStage {
	cp := *s
	cp.outputs = simplifyAll(preds)
	return &cp
}

// WithName returns a copy reported under name.
func (s *ValidateStage) WithName(name Name) *ValidateStage {
	cp := *s
	cp.name = name
	return &cp
}

// Predicates returns the input predicates in positional order.
func (s *ValidateStage) Predicates() []Predicate {
	return slices.Clone(s.inputs)
}

// OutputPredicates returns the output predicates in positional order.
func (s *ValidateStage) OutputPredicates() []Predicate {
	return slices.Clone(s.outputs)
}

// Name implements Stage.
func (s *ValidateStage) Name() Name { return s.name }

// Kind implements Stage.
func (s *ValidateStage) Kind() StageKind { return ValidateKind }

// Arity implements Stage.
func (s *ValidateStage) Arity() int { return len(s.inputs) }

// ProcessInput implements Stage.
func (s *ValidateStage) ProcessInput(args []any) ([]any, error) {
	return validate(s.inputs, args, false)
}

// ProcessOutput implements Stage.
func (s *ValidateStage) ProcessOutput(outputs []any) ([]any, error) {
	if s.outputs == nil {
		return slices.Clone(outputs), nil
	}
	return validate(s.outputs, outputs, true)
}

func validate(preds []Predicate, args []any, output bool) ([]any, error) {
	if len(args) != len(preds) {
		return nil, arityError("validate", len(preds), len(args))
	}
	for i, a := range args {
		v, check, _ := unwrap(a)
		if !check {
			continue
		}
		if ok, reason := preds[i].Test(v); !ok {
			return nil, &ValidationError{
				Value:     v,
				Reason:    reason,
				Predicate: preds[i].String(),
				Position:  i,
				Output:    output,
			}
		}
	}
	return slices.Clone(args), nil
}

// ParseStage replaces each positional value with the result of the parser at
// the same position.
type ParseStage struct {
	name    Name
	inputs  []Parser
	outputs []Parser
}

// NewParseStage builds a parsing stage of arity len(parsers).
func NewParseStage(parsers ...Parser) *ParseStage {
	return &ParseStage{name: Name(ParseKind), inputs: slices.Clone(parsers)}
}

// WithOutput returns a copy that also parses output values.
func (s *ParseStage) WithOutput(parsers ...Parser) *ParseStage {
	cp := *s
	cp.outputs = slices.Clone(parsers)
	if cp.outputs == nil {
		cp.outputs = []Parser{}
	}
	return &cp
}

// WithName returns a copy reported under name.
func (s *ParseStage) WithName(name Name) *ParseStage {
	cp := *s
	cp.name = name
	return &cp
}

// Parsers returns the input parsers in positional order.
func (s *ParseStage) Parsers() []Parser {
	return slices.Clone(s.inputs)
}

// OutputParsers returns the output parsers in positional order.
func (s *ParseStage) OutputParsers() []Parser {
	return slices.Clone(s.outputs)
}

// Name implements Stage.
func (s *ParseStage) Name() Name { return s.name }

// Kind implements Stage.
func (s *ParseStage) Kind() StageKind { return ParseKind }

// Arity implements Stage.
func (s *ParseStage) Arity() int { return len(s.inputs) }

// ProcessInput implements Stage.
func (s *ParseStage) ProcessInput(args []any) ([]any, error) {
	return parse(s.inputs, args, false)
}

// ProcessOutput implements Stage.
func (s *ParseStage) ProcessOutput(outputs []any) ([]any, error) {
	if s.outputs == nil {
		return slices.Clone(outputs), nil
	}
	return parse(s.outputs, outputs, true)
}

// parse keeps Input wrappers around parsed values so that every later stage
// sees the same flags.
func parse(parsers []Parser, args []any, output bool) ([]any, error) {
	if len(args) != len(parsers) {
		return nil, arityError("parse", len(parsers), len(args))
	}
	out := make([]any, len(args))
	for i, a := range args {
		v, check, transform := unwrap(a)
		if !transform {
			out[i] = a
			continue
		}
		parsed, err := parsers[i].Parse(v)
		if err != nil {
			return nil, &ParsingError{
				Value:    v,
				Err:      err,
				Parser:   parsers[i].Name(),
				Position: i,
				Output:   output,
			}
		}
		switch a.(type) {
		case Input, *Input:
			out[i] = Input{Value: parsed, Validate: check, Parse: transform}
		default:
			out[i] = parsed
		}
	}
	return out, nil
}

func arityError(op string, want, got int) *ContractError {
	return contractf(op, ErrArityMismatch, "stage expects %d values but got %d", want, got)
}
