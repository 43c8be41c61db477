package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	checkOutput bool

	checkCmd = &cobra.Command{
		Use:   "check [-- values...]",
		Short: "Run values through the pipeline",
		Long: `Run values through the pipeline and print the processed values.

Each value is decoded as a YAML scalar, so 42 is an int, 1.5 a float,
true a bool and anything else a string. Quote a value to keep it a
string: '"42"'.

Exits with status 1 and prints the failing position when a stage rejects
a value.`,
		RunE: runCheck,
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkOutput, "output", false, "Treat the values as function outputs")
}

func runCheck(cmd *cobra.Command, args []string) error {
	values, err := decodeValues(args)
	if err != nil {
		return err
	}
	p, err := loadPipeline(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	process := p.ProcessInput
	if checkOutput {
		process = p.ProcessOutput
	}
	out, err := process(cmd.Context(), values)
	if err != nil {
		return err
	}
	for i, v := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "%d: %v (%T)\n", i, v, v)
	}
	return nil
}

func decodeValues(args []string) ([]any, error) {
	values := make([]any, len(args))
	for i, arg := range args {
		var v any
		if err := yaml.Unmarshal([]byte(arg), &v); err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		if _, ok := v.(map[string]any); ok {
			v = arg
		}
		values[i] = v
	}
	return values, nil
}
