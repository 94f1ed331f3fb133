// Command edtl-check verifies recorded test cases against EDTL requirements.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rfielding/edtl-check/edtl"
	"github.com/rfielding/edtl-check/models/handdryer"
)

var version = "dev"

// errUnsafe is returned by check when at least one requirement was violated.
var errUnsafe = errors.New("verification failed")

// models are the requirement sets selectable with --model.
var models = map[string]edtl.RequirementSet{
	handdryer.Model{}.Name(): handdryer.Model{},
}

func lookupModel(name string) (edtl.RequirementSet, error) {
	set, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (available: %v)", name, modelNames())
	}
	return set, nil
}

func modelNames() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edtl-check",
		Short: "Bounded verification of EDTL requirements over recorded traces",
		Long: `edtl-check checks every test case of a trace file against the EDTL
requirements of a model and reports each violation with its trigger, final
and delay indices.

Examples:
  # Check the hand dryer traces
  edtl-check check --model handdryer --traces testdata/handdryer.yaml

  # Draw the checking automaton of one requirement
  edtl-check diagram --model handdryer --requirement dryer-stops --format dot`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newDiagramCmd())
	root.AddCommand(newVarsCmd())
	root.AddCommand(newModelsCmd())
	return root
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUnsafe):
		return 1
	default:
		return 2
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil && !errors.Is(err, errUnsafe) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
