package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rfielding/edtl-check/edtl"
)

func newDiagramCmd() *cobra.Command {
	var model, requirement, format string
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Draw the checking automaton of a requirement",
		Long: `Diagram renders the checking automaton of each requirement of a model, or
only of --requirement, as Mermaid (default) or Graphviz DOT.

Examples:
  edtl-check diagram --model handdryer
  edtl-check diagram --requirement dryer-stops --format dot | dot -Tsvg > stops.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := lookupModel(model)
			if err != nil {
				return err
			}
			reqs, err := selectRequirements(set, requirement)
			if err != nil {
				return err
			}
			return writeDiagrams(cmd.OutOrStdout(), reqs, format)
		},
	}
	cmd.Flags().StringVar(&model, "model", "handdryer", "requirement model")
	cmd.Flags().StringVar(&requirement, "requirement", "", "only draw this requirement")
	cmd.Flags().StringVar(&format, "format", "mermaid", "diagram format: mermaid or dot")
	return cmd
}

func selectRequirements(set edtl.RequirementSet, name string) ([]*edtl.Requirement, error) {
	reqs := set.Requirements()
	if name == "" {
		return reqs, nil
	}
	for _, r := range reqs {
		if r.Name == name {
			return []*edtl.Requirement{r}, nil
		}
	}
	return nil, fmt.Errorf("model %q has no requirement %q", set.Name(), name)
}

func writeDiagrams(w io.Writer, reqs []*edtl.Requirement, format string) error {
	for i, r := range reqs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		switch format {
		case "mermaid":
			if _, err := fmt.Fprintf(w, "%%%% %s\n", r.Name); err != nil {
				return err
			}
			if err := edtl.WriteMermaidAutomaton(r, w); err != nil {
				return err
			}
		case "dot":
			if _, err := io.WriteString(w, edtl.GenerateGraphviz(r)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown diagram format %q (want mermaid or dot)", format)
		}
	}
	return nil
}
