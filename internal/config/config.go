// Package config loads and validates the run configuration: input/output
// archive paths, the filter definition, metadata overrides, and the
// ambient concurrency/verbosity knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/valpere/mvtfilter/internal/errs"
)

// Config is the fully resolved, validated configuration for one run.
type Config struct {
	Input       string `mapstructure:"input"`
	Output      string `mapstructure:"output"`
	FilterPath  string `mapstructure:"filter"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Attribution string `mapstructure:"attribution"`
	Concurrency int    `mapstructure:"concurrency"`
	Verbose     bool   `mapstructure:"verbose"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("concurrency", runtime.NumCPU())
	v.SetDefault("verbose", false)
}

// Load reads configuration from v (already bound to CLI flags and the
// MVTFILTER_ environment prefix by the caller) and validates it.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.New(errs.CodeConfig, "unmarshal configuration", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the preflight conditions every run must satisfy: the
// input archive must exist, the filter file (if given) must exist, output
// must have a .pmtiles extension, and concurrency must be positive. Only
// existence is checked (via os.Stat); readability of the inputs and
// writability of the output path are not tested here.
func Validate(cfg *Config) error {
	if cfg.Input == "" {
		return errs.New(errs.CodeConfig, "input archive path is required", nil)
	}
	if _, err := os.Stat(cfg.Input); err != nil {
		return errs.New(errs.CodeConfig, fmt.Sprintf("input archive %q is not accessible", cfg.Input), err)
	}

	if cfg.Output == "" {
		return errs.New(errs.CodeConfig, "output archive path is required", nil)
	}
	if !strings.EqualFold(filepath.Ext(cfg.Output), ".pmtiles") {
		return errs.New(errs.CodeConfig, fmt.Sprintf("output path %q must have a .pmtiles extension", cfg.Output), nil)
	}

	if cfg.FilterPath != "" {
		if _, err := os.Stat(cfg.FilterPath); err != nil {
			return errs.New(errs.CodeConfig, fmt.Sprintf("filter file %q is not accessible", cfg.FilterPath), err)
		}
	}

	if cfg.Concurrency < 1 {
		return errs.New(errs.CodeConfig, "concurrency must be at least 1", nil)
	}

	return nil
}
