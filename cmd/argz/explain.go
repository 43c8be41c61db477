package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoobzio/argz"
)

var (
	explainJSON bool

	explainCmd = &cobra.Command{
		Use:   "explain",
		Short: "Describe the pipeline's stages",
		Long: `Describe the pipeline's stages, innermost first, with the level each
one reports in errors and the predicate or parser bound to every position.`,
		Args: cobra.NoArgs,
		RunE: runExplain,
	}
)

func init() {
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "Print the pipeline schema as JSON")
}

func runExplain(cmd *cobra.Command, _ []string) error {
	p, err := loadPipeline(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	s := p.Schema()
	out := cmd.OutOrStdout()
	if explainJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	writeExplanation(out, s)
	return nil
}

func writeExplanation(w io.Writer, s argz.Schema) {
	stages := s.Root.Children
	fmt.Fprintf(w, "pipeline %s (%d stages)\n", s.Root.Name, len(stages))
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		level := "-"
		if stage.Level > 0 {
			level = fmt.Sprint(stage.Level)
		}
		fmt.Fprintf(w, "  level %s  %-8s %s\n", level, stage.Type, names(stage.Children))
		if len(stage.Output) > 0 {
			fmt.Fprintf(w, "           %-8s %s\n", "output", names(stage.Output))
		}
	}
}

func names(nodes []argz.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.Name
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
