package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/argz"
	"github.com/zoobzio/argz/schema"
	"github.com/zoobzio/tracez"
)

var (
	version = "0.1.0"

	schemaFile string
	traceSpans bool

	rootCmd = &cobra.Command{
		Use:   "argz",
		Short: "Validate and parse arguments against YAML pipelines",
		Long: `argz loads a pipeline of validating and parsing stages from a YAML
schema and runs values through it.

Stages are listed in attachment order: the last stage in the file is the
innermost one and sees the raw input first.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&schemaFile, "file", "f", "argz.yaml", "Path to the pipeline schema")
	rootCmd.PersistentFlags().BoolVar(&traceSpans, "trace", false, "Print completed spans to stderr")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(parsersCmd)
}

// loadPipeline builds the pipeline named by --file, with tracing attached
// when --trace is set.
func loadPipeline(errOut io.Writer) (*argz.Pipeline, error) {
	doc, err := schema.LoadFile(schemaFile)
	if err != nil {
		return nil, err
	}
	p, err := doc.Build(schema.NewRegistry())
	if err != nil {
		return nil, err
	}
	if traceSpans {
		p.Tracer().OnSpanComplete(func(span tracez.Span) {
			fmt.Fprintf(errOut, "trace: %s %v\n", span.Name, span.Tags)
		})
	}
	return p, nil
}

var parsersCmd = &cobra.Command{
	Use:   "parsers",
	Short: "List the parser names usable in schemas",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range schema.NewRegistry().Parsers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
