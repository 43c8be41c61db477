package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scaleSchema = `
name: scale
stages:
  - validate: [{type: int}, {compare: {">=": 1}}]
  - parse: [int, int]
`

func writeSchema(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	schemaFile, traceSpans, checkOutput, explainJSON = "argz.yaml", false, false, false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheck(t *testing.T) {
	path := writeSchema(t, scaleSchema)

	t.Run("Processes Values", func(t *testing.T) {
		out, _, err := run(t, "check", "-f", path, "--", "3", `"2"`)
		require.NoError(t, err)
		assert.Equal(t, "0: 3 (int)\n1: 2 (int)\n", out)
	})

	t.Run("Reports The Failing Position", func(t *testing.T) {
		_, _, err := run(t, "check", "-f", path, "--", "3", "0")
		require.Error(t, err)
		assert.Equal(t, "Invalid argument at position 2: Expression 0 >= 1 evaluated to false (at level 2)", err.Error())
	})

	t.Run("Reports Parsing Errors", func(t *testing.T) {
		_, _, err := run(t, "check", "-f", path, "--", "three", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Error parsing argument at position 1: int")
	})

	t.Run("Arity Mismatch", func(t *testing.T) {
		_, _, err := run(t, "check", "-f", path, "--", "3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "arity mismatch")
	})

	t.Run("Trace", func(t *testing.T) {
		_, stderr, err := run(t, "check", "--trace", "-f", path, "--", "3", "2")
		require.NoError(t, err)
		assert.Contains(t, stderr, "trace: pipeline.stage")
		assert.Contains(t, stderr, "trace: pipeline.process")
	})

	t.Run("Output Values", func(t *testing.T) {
		out, _, err := run(t, "check", "--output", "-f", writeSchema(t, "stages: [{parse: [~], output: [string]}]"), "--", "7")
		require.NoError(t, err)
		assert.Equal(t, "0: 7 (string)\n", out)
	})

	t.Run("Missing Schema", func(t *testing.T) {
		_, _, err := run(t, "check", "-f", filepath.Join(t.TempDir(), "none.yaml"), "--", "1")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Invalid Schema", func(t *testing.T) {
		_, _, err := run(t, "check", "-f", writeSchema(t, "stages: [{parse: [hex]}]"), "--", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown parser")
	})
}

func TestDecodeValues(t *testing.T) {
	got, err := decodeValues([]string{"1", "1.5", "true", "word", `"42"`, "~", "a: b"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 1.5, true, "word", "42", nil, "a: b"}, got)

	_, err = decodeValues([]string{"[1"})
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	path := writeSchema(t, scaleSchema)

	t.Run("Text", func(t *testing.T) {
		out, _, err := run(t, "explain", "-f", path)
		require.NoError(t, err)
		want := "pipeline scale (2 stages)\n" +
			"  level 1  parse    [int, int]\n" +
			"  level 2  validate [type(int), expr(x >= 1)]\n"
		assert.Equal(t, want, out)
	})

	t.Run("Single Stage", func(t *testing.T) {
		out, _, err := run(t, "explain", "-f", writeSchema(t, "name: one\nstages: [{validate: [~], output: [{type: string}]}]"))
		require.NoError(t, err)
		assert.Contains(t, out, "  level -  validate [any]\n")
		assert.Contains(t, out, "output   [type(string)]")
	})

	t.Run("JSON", func(t *testing.T) {
		out, _, err := run(t, "explain", "--json", "-f", path)
		require.NoError(t, err)
		assert.Contains(t, out, `"type": "pipeline"`)
		assert.Contains(t, out, `"name": "scale"`)
		assert.Contains(t, out, `"level": 2`)
	})
}

func TestParsers(t *testing.T) {
	out, _, err := run(t, "parsers")
	require.NoError(t, err)
	assert.Contains(t, out, "int\n")
	assert.Contains(t, out, "passthrough\n")
}
