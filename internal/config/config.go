// Package config provides configuration loading for edtl-check.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rfielding/edtl-check/internal/logging"
)

// Config is the full CLI configuration.
type Config struct {
	Logging logging.Config `koanf:"logging"`
	Check   CheckConfig    `koanf:"check"`
	Report  ReportConfig   `koanf:"report"`
	Metrics MetricsConfig  `koanf:"metrics"`
}

// CheckConfig controls how test cases are scheduled.
type CheckConfig struct {
	Parallel bool `koanf:"parallel"`
	Workers  int  `koanf:"workers" validate:"min=1,max=256"`
}

// ReportConfig controls verdict output.
type ReportConfig struct {
	Format string `koanf:"format" validate:"oneof=text markdown"`
	Color  bool   `koanf:"color"`
}

// MetricsConfig controls the Prometheus textfile export. An empty File
// disables the export.
type MetricsConfig struct {
	File string `koanf:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: *logging.NewDefaultConfig(),
		Check: CheckConfig{
			Parallel: false,
			Workers:  4,
		},
		Report: ReportConfig{
			Format: "text",
			Color:  true,
		},
	}
}

var validate = validator.New()

// Validate checks struct constraints and the logging config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	return nil
}
