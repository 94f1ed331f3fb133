package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/edtl-check/edtl"
	"github.com/rfielding/edtl-check/internal/config"
	"github.com/rfielding/edtl-check/internal/logging"
	"github.com/rfielding/edtl-check/internal/traceio"
)

type checkOptions struct {
	configPath  string
	model       string
	traces      string
	parallel    bool
	workers     int
	report      string
	noColor     bool
	metricsFile string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check every test case against the model's requirements",
		Long: `Check loads the test cases of a trace file and runs every requirement of
the selected model on every case. All violations are reported; the command
exits with status 1 when any requirement failed and 2 on errors.

Configuration is read from --config (YAML) and EDTL_* environment variables;
flags given on the command line take precedence.

Examples:
  edtl-check check --model handdryer --traces testdata/handdryer.yaml
  edtl-check check --traces traces.yaml --parallel --workers 8 --report markdown
  EDTL_LOGGING_LEVEL=debug edtl-check check --traces traces.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&opts.model, "model", "handdryer", "requirement model to check")
	f.StringVar(&opts.traces, "traces", "", "trace file with the test cases (required)")
	f.BoolVar(&opts.parallel, "parallel", false, "check test cases concurrently")
	f.IntVar(&opts.workers, "workers", 0, "maximum concurrent test cases with --parallel")
	f.StringVar(&opts.report, "report", "", "output format: text or markdown")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	_ = cmd.MarkFlagRequired("traces")
	return cmd
}

// config loads file and environment settings, then applies explicit flags.
func (o *checkOptions) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("parallel") {
		cfg.Check.Parallel = o.parallel
	}
	if f.Changed("workers") {
		cfg.Check.Workers = o.workers
	}
	if f.Changed("report") {
		cfg.Report.Format = o.report
	}
	if o.noColor {
		cfg.Report.Color = false
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.File = o.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, cfg *config.Config, opts *checkOptions) error {
	logger, err := logging.NewLogger(&cfg.Logging, nil)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	set, err := lookupModel(opts.model)
	if err != nil {
		return err
	}
	store, err := traceio.Load(opts.traces, set.Vocabulary())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	verifier := edtl.NewVerifier(logger, edtl.WithMetrics(edtl.NewMetrics(reg)))
	if err := verifier.Register(set.Requirements()...); err != nil {
		return err
	}

	logger.Info("checking traces",
		zap.String("model", set.Name()),
		zap.String("traces", opts.traces),
		zap.Int("cases", store.Len()),
		zap.Bool("parallel", cfg.Check.Parallel),
	)

	var summary *edtl.Summary
	if cfg.Check.Parallel {
		summary, err = verifier.RunParallel(cmd.Context(), store, cfg.Check.Workers)
	} else {
		summary, err = verifier.RunAll(cmd.Context(), store)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch cfg.Report.Format {
	case "markdown":
		err = edtl.WriteMarkdownReport(out, set, store, summary)
	default:
		err = newConsole(out, cfg.Report.Color).printSummary(set, store, summary)
	}
	if err != nil {
		return err
	}

	if cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if !summary.Safe() {
		return errUnsafe
	}
	return nil
}
