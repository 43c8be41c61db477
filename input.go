package argz

// Input wraps one positional argument with flags controlling whether
// validating and parsing stages see it. A wrapped argument keeps its position
// and its flags through every stage of a pipeline.
//
// Arguments that are not wrapped take part in every stage.
type Input struct {
	Value    any
	Validate bool
	Parse    bool
}

// Skip wraps v so that no stage validates or parses it. Function binding uses
// it for default values.
func Skip(v any) Input {
	return Input{Value: v}
}

// SkipValidation wraps v so that it is parsed but never validated.
func SkipValidation(v any) Input {
	return Input{Value: v, Parse: true}
}

// SkipParsing wraps v so that it is validated but never parsed.
func SkipParsing(v any) Input {
	return Input{Value: v, Validate: true}
}

func unwrap(v any) (value any, validate, parse bool) {
	switch in := v.(type) {
	case Input:
		return in.Value, in.Validate, in.Parse
	case *Input:
		if in != nil {
			return in.Value, in.Validate, in.Parse
		}
	}
	return v, true, true
}

// Unwrap returns a copy of args with every Input replaced by its value.
func Unwrap(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i], _, _ = unwrap(a)
	}
	return out
}
