// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/platechanges/internal/domain/levels"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelFile is the YAML building model loaded at start. Empty starts
	// with an empty model.
	ModelFile string `koanf:"model_file"`

	// ExcludedLevelNames are the levels never offered for adjustment.
	ExcludedLevelNames []string `koanf:"excluded_level_names"`

	// DedupeSize bounds the number of remembered submission ids.
	DedupeSize int `koanf:"dedupe_size"`

	// MetricsIntervalMS is how often background gauges are refreshed.
	MetricsIntervalMS int `koanf:"metrics_interval_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		ExcludedLevelNames: append([]string(nil), levels.DefaultExcludedNames...),
		DedupeSize:         10_000,
		MetricsIntervalMS:  5_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MetricsIntervalMS <= 0:
		return fmt.Errorf("%w: metrics_interval_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
