package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("EDTL_LOGGING_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errUnsafe))
	assert.Equal(t, 2, exitCode(errors.New("boom")))
}

func TestCheckUnsafeTraces(t *testing.T) {
	code, out, _ := runCLI(t, "check", "--traces", "testdata/handdryer.yaml", "--no-color")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "handdryer: 2 test cases, 3 requirements")
	assert.Contains(t, out, "PASS dryer-keeps-running")
	assert.Contains(t, out, "FAIL dryer-stops scan_to_reaction_or_delay: trig=4 fin=4 del=4")
	assert.Contains(t, out, "FAIL dryer-needs-hands exit_check: trig=4 fin=4 del=4")
	assert.Contains(t, out, "restart-without-hands: D=110011 H=110000")
	assert.Contains(t, out, "System is unsafe: 2 of 6 checks failed.")
}

func TestCheckSafeTraces(t *testing.T) {
	code, out, stderr := runCLI(t, "check", "--traces", "testdata/handdryer-safe.yaml", "--no-color")

	assert.Equal(t, 0, code, stderr)
	assert.NotContains(t, out, "FAIL")
	assert.Contains(t, out, "System is safe.")
}

func TestCheckParallelMarkdown(t *testing.T) {
	code, out, _ := runCLI(t, "check", "--traces", "testdata/handdryer.yaml",
		"--parallel", "--workers", "2", "--report", "markdown")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "# handdryer verification report")
	assert.Contains(t, out, "### restart-without-hands")
	assert.Contains(t, out, "**System is unsafe.**")
}

func TestCheckReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("report:\n  format: markdown\n"), 0o600))

	code, out, _ := runCLI(t, "check", "--config", cfgPath, "--traces", "testdata/handdryer-safe.yaml")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "**System is safe.**")

	// An explicit flag beats the file.
	code, out, _ = runCLI(t, "check", "--config", cfgPath, "--report", "text", "--no-color",
		"--traces", "testdata/handdryer-safe.yaml")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "System is safe.")
	assert.NotContains(t, out, "**")
}

func TestCheckWritesMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edtl.prom")
	code, _, _ := runCLI(t, "check", "--traces", "testdata/handdryer.yaml", "--no-color", "--metrics-file", path)
	require.Equal(t, 1, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `edtl_verifier_checks_total{result="fail"} 2`)
	assert.Contains(t, string(data), `edtl_verifier_checks_total{result="pass"} 4`)
}

func TestCheckErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("variables: [H, W]\ncases:\n  - name: x\n    signals:\n      H: [0]\n      W: [1]\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing traces flag", []string{"check"}, "traces"},
		{"unknown model", []string{"check", "--model", "toaster", "--traces", "testdata/handdryer.yaml"}, "unknown model"},
		{"missing file", []string{"check", "--traces", "testdata/nope.yaml"}, "open traces"},
		{"wrong vocabulary", []string{"check", "--traces", bad}, "model expects"},
		{"bad format", []string{"check", "--traces", "testdata/handdryer.yaml", "--report", "html"}, "invalid config"},
		{"bad workers", []string{"check", "--traces", "testdata/handdryer.yaml", "--workers", "0"}, "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestDiagramCommand(t *testing.T) {
	code, out, _ := runCLI(t, "diagram", "--requirement", "dryer-needs-hands")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "%% dryer-needs-hands\nstateDiagram-v2\n")

	code, out, _ = runCLI(t, "diagram", "--format", "dot")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `digraph "dryer-stops" {`)
	assert.Contains(t, out, `digraph "dryer-keeps-running" {`)
	assert.Contains(t, out, `digraph "dryer-needs-hands" {`)

	code, _, stderr := runCLI(t, "diagram", "--requirement", "missing")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `no requirement "missing"`)

	code, _, stderr = runCLI(t, "diagram", "--format", "svg")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown diagram format")
}

func TestVarsAndModelsCommands(t *testing.T) {
	code, out, _ := runCLI(t, "vars")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "vocabulary: H, D")
	assert.Contains(t, out, "REQUIREMENT")
	assert.Regexp(t, `dryer-stops\s+trigger\s+D, H\s+\(D & !H\)`, out)

	code, out, _ = runCLI(t, "models")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "handdryer\t3 requirements")
}
