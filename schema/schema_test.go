package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/argz"
)

const scaleDoc = `
name: scale
params:
  - x
  - name: factor
    default: 2
stages:
  - validate: [{type: int}, {compare: {">=": 1}}]
  - parse: [int, int]
`

func build(t *testing.T, doc string) *argz.Pipeline {
	t.Helper()
	d, err := Load([]byte(doc))
	require.NoError(t, err)
	p, err := d.Build(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func process(t *testing.T, doc string, args ...any) ([]any, error) {
	t.Helper()
	return build(t, doc).ProcessInput(context.Background(), args)
}

func TestLoad(t *testing.T) {
	d, err := Load([]byte(scaleDoc))
	require.NoError(t, err)

	assert.Equal(t, "scale", d.Name)
	require.Len(t, d.Params, 2)
	assert.Equal(t, ParamDef{Name: "x"}, d.Params[0])
	assert.Equal(t, ParamDef{Name: "factor", Default: 2, HasDefault: true}, d.Params[1])
	require.Len(t, d.Stages, 2)
	assert.Equal(t, argz.ValidateKind, d.Stages[0].Kind())
	assert.Equal(t, argz.ParseKind, d.Stages[1].Kind())

	t.Run("Default Name", func(t *testing.T) {
		d, err := Load([]byte("stages: []"))
		require.NoError(t, err)
		assert.Equal(t, "schema", d.Name)
	})

	t.Run("Explicit Null Default", func(t *testing.T) {
		d, err := Load([]byte("params: [{name: x, default: ~}]"))
		require.NoError(t, err)
		assert.True(t, d.Params[0].HasDefault)
		assert.Nil(t, d.Params[0].Default)
	})

	t.Run("Unknown Param Field", func(t *testing.T) {
		_, err := Load([]byte("params: [{name: x, kind: int}]"))
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := Load([]byte("stages: [\n"))
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scale.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scaleDoc), 0o600))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scale", d.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	t.Run("Last Stage Runs First", func(t *testing.T) {
		got, err := process(t, scaleDoc, "3", "2")
		require.NoError(t, err)
		assert.Equal(t, []any{3, 2}, got)
	})

	t.Run("Levels Are Reported", func(t *testing.T) {
		_, err := process(t, scaleDoc, "3", "0")
		var ve *argz.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, 1, ve.Position)
		assert.Equal(t, 2, ve.Level)

		_, err = process(t, scaleDoc, "x", "1")
		var pe *argz.ParsingError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 0, pe.Position)
		assert.Equal(t, 1, pe.Level)
	})

	t.Run("Stage Names", func(t *testing.T) {
		p := build(t, "stages: [{name: ints, validate: [{type: int}]}, {name: raw, parse: [~]}]")
		stages := p.Stages()
		require.Len(t, stages, 2)
		assert.Equal(t, "ints", stages[0].Name())
		assert.Equal(t, "raw", stages[1].Name())
	})

	t.Run("Output Entries", func(t *testing.T) {
		p := build(t, "stages: [{validate: [~], output: [{type: string}]}]")
		_, err := p.ProcessOutput(context.Background(), []any{1})
		var ve *argz.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Output)

		p = build(t, "stages: [{parse: [~], output: [string]}]")
		got, err := p.ProcessOutput(context.Background(), []any{7})
		require.NoError(t, err)
		assert.Equal(t, []any{"7"}, got)
	})
}

func TestValidators(t *testing.T) {
	cases := []struct {
		name   string
		entry  string
		accept []any
		reject []any
	}{
		{"Literal", `5`, []any{5}, []any{6, "5"}},
		{"Null Is Any", `~`, []any{nil, "x", 1}, nil},
		{"Any", `{any: ~}`, []any{struct{}{}}, nil},
		{"Type", `{type: string}`, []any{"a"}, []any{1}},
		{"Type List", `{type: [int, string]}`, []any{1, "a"}, []any{1.5}},
		{"Number", `{type: number}`, []any{1, 2.5}, []any{"1"}},
		{"Value", `{value: a}`, []any{"a"}, []any{"b"}},
		{"OneOf", `{oneof: [a, 1]}`, []any{"a", 1}, []any{"1"}},
		{"Keys", `{keys: {red: 1, blue: 2}}`, []any{"red", "blue"}, []any{1}},
		{"List Of Literals", `[1, 2, 3]`, []any{1, 3}, []any{4}},
		{"Mixed List", `[{type: string}, 1]`, []any{"x", 1}, []any{2}},
		{"Range", `{range: [0, 10]}`, []any{0, 9}, []any{10, -1}},
		{"Range Step", `{range: [0, 10, 5]}`, []any{0, 5}, []any{3}},
		{"Match", `{match: "[a-z]"}`, []any{"ab1"}, []any{"1a"}},
		{"Full Match", `{fullmatch: "[a-z]+"}`, []any{"ab"}, []any{"ab1"}},
		{"Compare", `{compare: {">=": 0, "<": 10}}`, []any{0, 9.5}, []any{10, -1}},
		{"AnyOf", `{anyof: [{type: string}, {range: [0, 3]}]}`, []any{"x", 2}, []any{3}},
		{"AllOf", `{allof: [{type: int}, {compare: {"!=": 0}}]}`, []any{1}, []any{0, 1.5}},
		{"Not", `{not: {type: string}}`, []any{1}, []any{"x"}},
		{"Xor", `{xor: [{type: int}, {compare: {">": 5}}]}`, []any{1, 6.5}, []any{7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := build(t, "stages: [{validate: ["+tc.entry+"]}]")
			for _, v := range tc.accept {
				_, err := p.ProcessInput(context.Background(), []any{v})
				assert.NoError(t, err, "expected %v to be accepted", v)
			}
			for _, v := range tc.reject {
				_, err := p.ProcessInput(context.Background(), []any{v})
				assert.True(t, argz.IsValidation(err), "expected %v to be rejected, got %v", v, err)
			}
		})
	}
}

func TestCompareReason(t *testing.T) {
	_, err := process(t, `stages: [{validate: [{compare: {">=": 0, "<": 10}}]}]`, 15)
	require.Error(t, err)
	assert.Equal(t, "Invalid argument at position 1: Expression (15 >= 0) & (15 < 10) evaluated to false", err.Error())
}

func TestParsers(t *testing.T) {
	cases := []struct {
		name  string
		entry string
		in    any
		want  any
	}{
		{"Int", `int`, "42", 42},
		{"Float", `float`, "1.5", 1.5},
		{"String", `string`, 7, "7"},
		{"Lower", `lower`, "AbC", "abc"},
		{"Trim", `trim`, " a ", "a"},
		{"Passthrough", `~`, "raw", "raw"},
		{"Named Passthrough", `passthrough`, "raw", "raw"},
		{"Expression", `{expr: {mul: 2, add: 1}}`, 3, 7},
		{"Unary Expression", `{expr: {neg: ~, add: 10}}`, 3, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := process(t, "stages: [{parse: ["+tc.entry+"]}]", tc.in)
			require.NoError(t, err)
			assert.Equal(t, []any{tc.want}, got)
		})
	}

	t.Run("Expression Result Passes Int Check", func(t *testing.T) {
		got, err := process(t, `
stages:
  - validate: [{type: int}]
  - parse: [{expr: {mul: 2}}]
`, 3)
		require.NoError(t, err)
		assert.Equal(t, []any{6}, got)
	})

	t.Run("Expression Name", func(t *testing.T) {
		p := build(t, `stages: [{parse: [{expr: {mul: 2, add: 1}}]}]`)
		stage := p.Stages()[0].(*argz.ParseStage)
		assert.Equal(t, "(x * 2) + 1", stage.Parsers()[0].Name())
	})
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name     string
		doc      string
		sentinel error
		path     string
	}{
		{"Unknown Validator", "stages: [{validate: [{shape: round}]}]", ErrUnknownValidator, "stages[0].validate[0].shape"},
		{"Unknown Type", "stages: [{validate: [{type: widget}]}]", ErrUnknownType, "stages[0].validate[0].type"},
		{"Unknown Parser", "stages: [{parse: [hex]}]", ErrUnknownParser, "stages[0].parse[0]"},
		{"Unknown Predicate", "stages: [{validate: [{func: even}]}]", ErrUnknownPredicate, "stages[0].validate[0].func"},
		{"Two Keys", "stages: [{validate: [{type: int, any: ~}]}]", ErrInvalidEntry, "stages[0].validate[0]"},
		{"Empty List", "stages: [{validate: [[]]}]", ErrInvalidEntry, "stages[0].validate[0]"},
		{"Bad Range", "stages: [{validate: [{range: [1]}]}]", ErrInvalidEntry, "stages[0].validate[0].range"},
		{"Bad Comparison", `stages: [{validate: [{compare: {"=~": 1}}]}]`, ErrInvalidEntry, "stages[0].validate[0].compare"},
		{"Xor Needs Two", "stages: [{validate: [{xor: [~]}]}]", ErrInvalidEntry, "stages[0].validate[0].xor"},
		{"Bad Expression", "stages: [{parse: [{expr: {root: 2}}]}]", ErrInvalidEntry, "stages[0].parse[0].expr"},
		{"Both Kinds", "stages: [{validate: [~], parse: [~]}]", ErrInvalidStage, "stages[0]"},
		{"Neither Kind", "stages: [{name: empty}]", ErrInvalidStage, "stages[0]"},
		{"Arity Differs", "stages: [{validate: [~]}, {parse: [~, ~]}]", ErrInvalidStage, "stages[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Load([]byte(tc.doc))
			require.NoError(t, err)
			_, err = d.Build(nil)
			require.ErrorIs(t, err, tc.sentinel)
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.path, se.Path)
			assert.Equal(t, 1, se.Line)
		})
	}

	t.Run("Bad Pattern", func(t *testing.T) {
		d, err := Load([]byte(`stages: [{validate: [{match: "("}]}]`))
		require.NoError(t, err)
		_, err = d.Build(nil)
		var se *Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "stages[0].validate[0].match", se.Path)
	})
}

func TestErrorMessage(t *testing.T) {
	err := errorf(3, "stages[0]", ErrInvalidStage, "stage needs exactly one of validate or parse")
	assert.Equal(t, "line 3: stages[0]: invalid stage: stage needs exactly one of validate or parse", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidStage))

	err = errorf(0, "params", ErrInvalidEntry, "bad")
	assert.Equal(t, "params: invalid entry: bad", err.Error())
}

func TestFunction(t *testing.T) {
	d, err := Load([]byte(scaleDoc))
	require.NoError(t, err)
	mul := func(_ context.Context, args []any) ([]any, error) {
		return []any{args[0].(int) * args[1].(int)}, nil
	}

	f, err := d.Function(nil, mul)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.Call(context.Background(), []any{"21"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{42}, got)

	got, err = f.Call(context.Background(), nil, map[string]any{"x": "5", "factor": "3"})
	require.NoError(t, err)
	assert.Equal(t, []any{15}, got)

	_, err = f.Call(context.Background(), []any{"5", "0"}, nil)
	assert.True(t, argz.IsValidation(err))

	t.Run("Padding", func(t *testing.T) {
		d, err := Load([]byte("params: [a, b]\nstages: [{parse: [int]}, {validate: [{type: string}]}]"))
		require.NoError(t, err)
		f, err := d.Function(nil, func(_ context.Context, args []any) ([]any, error) { return args, nil })
		require.NoError(t, err)
		defer f.Close()
		got, err := f.Call(context.Background(), []any{"1", 2.5}, nil)
		require.NoError(t, err)
		assert.Equal(t, []any{1, 2.5}, got)
	})

	t.Run("Too Many Entries", func(t *testing.T) {
		d, err := Load([]byte("params: [a]\nstages: [{parse: [int, int]}]"))
		require.NoError(t, err)
		_, err = d.Function(nil, mul)
		assert.ErrorIs(t, err, ErrInvalidStage)
	})
}
