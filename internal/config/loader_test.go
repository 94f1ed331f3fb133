package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
logging:
  level: debug
  format: json
check:
  parallel: true
  workers: 8
report:
  format: markdown
metrics:
  file: /tmp/edtl.prom
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Check.Parallel)
	assert.Equal(t, 8, cfg.Check.Workers)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.True(t, cfg.Report.Color, "unset keys keep their default")
	assert.Equal(t, "/tmp/edtl.prom", cfg.Metrics.File)
	assert.Equal(t, "edtl-check", cfg.Logging.Fields["service"])
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "check:\n  workers: 2\n")
	t.Setenv("EDTL_CHECK_WORKERS", "16")
	t.Setenv("EDTL_REPORT_FORMAT", "markdown")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Check.Workers)
	assert.Equal(t, "markdown", cfg.Report.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero workers", "check:\n  workers: 0\n"},
		{"unknown report format", "report:\n  format: html\n"},
		{"bad log level", "logging:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "check.workers", envKey("EDTL_CHECK_WORKERS"))
	assert.Equal(t, "metrics.file", envKey("EDTL_METRICS_FILE"))
	assert.Equal(t, "logging.level", envKey("EDTL_LOGGING_LEVEL"))
}
