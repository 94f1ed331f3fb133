package edtl

import (
	"fmt"
	"io"
	"strings"
)

// WriteMermaidAutomaton writes a Mermaid stateDiagram-v2 of the checking
// automaton of r, with each transition labelled by the predicate that drives
// it.
func WriteMermaidAutomaton(r *Requirement, w io.Writer) error {
	lines := []string{
		"stateDiagram-v2",
		"  [*] --> AwaitTrigger",
		fmt.Sprintf("  AwaitTrigger --> ScanToFinal: %s", mermaidLabel(r.Trigger)),
		fmt.Sprintf("  ScanToFinal --> ScanToReaction: %s", mermaidLabel(r.Final)),
		fmt.Sprintf("  ScanToFinal --> AwaitTrigger: release %s", mermaidLabel(r.Release)),
		fmt.Sprintf("  ScanToFinal --> Violated: not %s", mermaidLabel(r.Invariant)),
		fmt.Sprintf("  ScanToReaction --> ExitCheck: %s or next %s", mermaidLabel(r.Delay), mermaidLabel(r.Reaction)),
		fmt.Sprintf("  ScanToReaction --> AwaitTrigger: release %s", mermaidLabel(r.Release)),
		fmt.Sprintf("  ScanToReaction --> Violated: not %s", mermaidLabel(r.Invariant)),
		"  ExitCheck --> AwaitTrigger: satisfied",
		"  ExitCheck --> Violated: delay elapsed and invariant broken",
		"  AwaitTrigger --> [*]: trace end",
		"  Violated --> [*]",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// mermaidLabel strips characters Mermaid treats as syntax in edge labels.
func mermaidLabel(t Term) string {
	if t == nil {
		return "?"
	}
	r := strings.NewReplacer(":", " ", ";", " ", "\\", "fall ", "/", "rise ", "~", "held ", "_", "low ")
	return r.Replace(t.String())
}

// GenerateGraphviz renders the automaton of r as a Graphviz DOT digraph.
func GenerateGraphviz(r *Requirement) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %q {\n", r.Name))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n")
	sb.WriteString("\n")

	sb.WriteString("  start [shape=point];\n")
	sb.WriteString("  start -> \"AwaitTrigger\";\n")
	sb.WriteString("  \"Violated\" [shape=doublecircle];\n")
	sb.WriteString("\n")

	edges := []struct{ from, to, label string }{
		{"AwaitTrigger", "ScanToFinal", "trigger " + termString(r.Trigger)},
		{"ScanToFinal", "ScanToReaction", "final " + termString(r.Final)},
		{"ScanToFinal", "AwaitTrigger", "release " + termString(r.Release)},
		{"ScanToFinal", "Violated", "!" + termString(r.Invariant)},
		{"ScanToReaction", "ExitCheck", "delay " + termString(r.Delay) + " | reaction " + termString(r.Reaction)},
		{"ScanToReaction", "AwaitTrigger", "release " + termString(r.Release)},
		{"ScanToReaction", "Violated", "!" + termString(r.Invariant)},
		{"ExitCheck", "AwaitTrigger", "satisfied"},
		{"ExitCheck", "Violated", "delay & !" + termString(r.Invariant)},
	}
	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.from, e.to, e.label))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func termString(t Term) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
