package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rfielding/edtl-check/edtl"
)

func newVarsCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "List the variables of a model and where each requirement reads them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := lookupModel(model)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vocabulary: %s\n\n", joinVars(set.Vocabulary().Variables()))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "REQUIREMENT\tPREDICATE\tVARIABLES\tTERM")
			for _, r := range set.Requirements() {
				for _, p := range r.Predicates() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, p.Name, joinVars(edtl.Variables(p.Term)), p.Term)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&model, "model", "handdryer", "requirement model")
	return cmd
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in requirement models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range modelNames() {
				set := models[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d requirements\t%s\n", name, len(set.Requirements()), set.OriginalText())
			}
		},
	}
}

func joinVars(vars []edtl.Variable) string {
	if len(vars) == 0 {
		return "-"
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
