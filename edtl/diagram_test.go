package edtl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rfielding/edtl-check/edtl"
	"github.com/rfielding/edtl-check/models/handdryer"
)

func TestWriteMermaidAutomaton(t *testing.T) {
	var buf bytes.Buffer
	if err := edtl.WriteMermaidAutomaton(handdryer.DryerNeedsHands(), &buf); err != nil {
		t.Fatalf("WriteMermaidAutomaton: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "stateDiagram-v2\n") {
		t.Errorf("Expected stateDiagram-v2 header, got:\n%s", out)
	}
	for _, want := range []string{
		"[*] --> AwaitTrigger",
		"AwaitTrigger --> ScanToFinal: rise D",
		"ScanToFinal --> ScanToReaction: passed(1)",
		"ScanToFinal --> Violated: not H",
		"ExitCheck --> Violated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected diagram to contain %q, got:\n%s", want, out)
		}
	}
}

func TestMermaidLabelsAreSanitized(t *testing.T) {
	var buf bytes.Buffer
	if err := edtl.WriteMermaidAutomaton(handdryer.DryerKeepsRunning(), &buf); err != nil {
		t.Fatalf("WriteMermaidAutomaton: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, `\`) || strings.Contains(out, "~") {
		t.Errorf("Expected edge operators to be spelled out, got:\n%s", out)
	}
	if !strings.Contains(out, "fall H") || !strings.Contains(out, "held D") {
		t.Errorf("Expected spelled-out trigger, got:\n%s", out)
	}
}

func TestGenerateGraphviz(t *testing.T) {
	dot := edtl.GenerateGraphviz(handdryer.DryerNeedsHands())

	if !strings.HasPrefix(dot, `digraph "dryer-needs-hands" {`) {
		t.Errorf("Expected digraph header, got:\n%s", dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("Expected closing brace")
	}
	for _, want := range []string{
		`"AwaitTrigger" -> "ScanToFinal" [label="trigger /D"];`,
		`"ScanToFinal" -> "Violated" [label="!H"];`,
		`"Violated" [shape=doublecircle];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("Expected DOT to contain %q, got:\n%s", want, dot)
		}
	}
}

func TestDiagramsTolerateMissingTerms(t *testing.T) {
	r := &edtl.Requirement{Name: "partial", Trigger: edtl.V("x")}

	dot := edtl.GenerateGraphviz(r)
	if !strings.Contains(dot, `label="release ?"`) {
		t.Errorf("Expected placeholder for missing release, got:\n%s", dot)
	}

	var buf bytes.Buffer
	if err := edtl.WriteMermaidAutomaton(r, &buf); err != nil {
		t.Fatalf("WriteMermaidAutomaton: %v", err)
	}
	if !strings.Contains(buf.String(), "release ?") {
		t.Errorf("Expected placeholder for missing release, got:\n%s", buf.String())
	}
}
