package argz

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Param declares one parameter of a bound function.
type Param struct {
	Default    any
	Name       string
	HasDefault bool
}

// Required declares a parameter without a default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter with a default. Defaults are forwarded to the
// function without being validated or parsed.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Function binds a pipeline to a function with a declared parameter table.
// Calls bind positional and named arguments into parameter order, run the
// pipeline over them, invoke the function and run the pipeline over its
// results.
//
//	f, _ := argz.NewFunction("scale",
//	    []argz.Param{argz.Required("x"), argz.Optional("factor", 2)},
//	    func(ctx context.Context, args []any) ([]any, error) {
//	        return []any{args[0].(int) * args[1].(int)}, nil
//	    })
//	_ = f.Parse(argz.ToInt())
//	_ = f.Validate(argz.Type[int](), argz.Type[int]())
//	out, err := f.Call(ctx, []any{"21"}, nil) // [42]
type Function struct {
	fn       func(context.Context, []any) ([]any, error)
	pipeline *Pipeline
	index    map[string]int
	params   []Param
	name     Name
}

// NewFunction declares a bound function. Parameter names must be unique.
func NewFunction(name Name, params []Param, fn func(context.Context, []any) ([]any, error)) (*Function, error) {
	if fn == nil {
		return nil, contractf("function", ErrMalformedSpec, "nil function")
	}
	index := make(map[string]int, len(params))
	for i, p := range params {
		if _, dup := index[p.Name]; dup {
			return nil, contractf("function", ErrDuplicateParam, "parameter %q declared twice", p.Name)
		}
		index[p.Name] = i
	}
	return &Function{
		name:     name,
		params:   slices.Clone(params),
		index:    index,
		fn:       fn,
		pipeline: NewPipeline(name),
	}, nil
}

// Validate appends a validating stage. Missing trailing specs accept anything.
func (f *Function) Validate(specs ...Spec) error {
	if len(specs) > len(f.params) {
		return f.tooMany("validate", len(specs))
	}
	padded := slices.Clone(specs)
	for len(padded) < len(f.params) {
		padded = append(padded, Any())
	}
	return f.pipeline.Validate(padded...)
}

// Parse appends a parsing stage. Missing trailing parsers pass values through.
func (f *Function) Parse(parsers ...Parser) error {
	if len(parsers) > len(f.params) {
		return f.tooMany("parse", len(parsers))
	}
	padded := slices.Clone(parsers)
	for len(padded) < len(f.params) {
		padded = append(padded, Passthrough())
	}
	return f.pipeline.Parse(padded...)
}

// Append adds a prebuilt stage. Its arity must match the parameter count.
func (f *Function) Append(stage Stage) error {
	if !isNilStage(stage) && stage.Arity() != len(f.params) {
		return arityError("append", len(f.params), stage.Arity())
	}
	return f.pipeline.Append(stage)
}

func (f *Function) tooMany(op string, got int) error {
	return contractf(op, ErrArityMismatch, "%s declares %d parameters but got %d items", f.name, len(f.params), got)
}

// Call binds args and named to the parameter table and runs the function.
func (f *Function) Call(ctx context.Context, args []any, named map[string]any) ([]any, error) {
	bound, err := f.bind(args, named)
	if err != nil {
		return nil, err
	}
	in, err := f.pipeline.ProcessInput(ctx, bound)
	if err != nil {
		return nil, err
	}
	out, err := f.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	return f.pipeline.ProcessOutput(ctx, out)
}

func (f *Function) bind(args []any, named map[string]any) ([]any, error) {
	if len(args) > len(f.params) {
		return nil, contractf("call", ErrArityMismatch, "%s takes %d arguments but %d were given", f.name, len(f.params), len(args))
	}
	bound := make([]any, len(f.params))
	set := make([]bool, len(f.params))
	for i, a := range args {
		bound[i], set[i] = a, true
	}

	var unknown []string
	for name, v := range named {
		i, ok := f.index[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if set[i] {
			return nil, contractf("call", ErrDuplicateParam, "%s got multiple values for %q", f.name, name)
		}
		bound[i], set[i] = v, true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, contractf("call", ErrUnknownParam, "%s got unexpected arguments %s", f.name, strings.Join(unknown, ", "))
	}

	var missing []string
	for i, p := range f.params {
		if set[i] {
			continue
		}
		if p.HasDefault {
			bound[i] = Skip(p.Default)
			continue
		}
		missing = append(missing, fmt.Sprintf("%q", p.Name))
	}
	if len(missing) > 0 {
		return nil, contractf("call", ErrMissingParam, "%s missing required arguments %s", f.name, strings.Join(missing, ", "))
	}
	return bound, nil
}

// Name returns the function name.
func (f *Function) Name() Name { return f.name }

// Params returns the parameter table.
func (f *Function) Params() []Param { return slices.Clone(f.params) }

// Pipeline returns the underlying pipeline.
func (f *Function) Pipeline() *Pipeline { return f.pipeline }

// Close releases the pipeline's observability components.
func (f *Function) Close() error { return f.pipeline.Close() }
