// Package config loads ScalableCuckooFilter defaults from YAML: how to
// size and tune a filter, and how to log while doing so.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FilterConfig mirrors the tunables ScalableCuckooFilter's Builder
// exposes, loadable from a config file.
type FilterConfig struct {
	Name                     string  `yaml:"name"`
	InitialCapacity          uint64  `yaml:"initial_capacity"`
	FalsePositiveProbability float64 `yaml:"false_positive_probability"`
	EntriesPerBucket         uint8   `yaml:"entries_per_bucket"`
	GrowthFactor             uint64  `yaml:"growth_factor"`
	TighteningRatio          float64 `yaml:"tightening_ratio"`
	MaxKicks                 uint32  `yaml:"max_kicks"`
	EnableMetrics            bool    `yaml:"enable_metrics"`
	LogLevel                 string  `yaml:"log_level"`
}

// Default returns the configuration equivalent to Builder's own
// defaults, so a loaded file only needs to override what it changes.
func Default() FilterConfig {
	return FilterConfig{
		Name:                     "scuckoo",
		InitialCapacity:          1024,
		FalsePositiveProbability: 0.001,
		EntriesPerBucket:         4,
		GrowthFactor:             2,
		TighteningRatio:          0.5,
		MaxKicks:                 512,
		LogLevel:                 "info",
	}
}

// Load reads and parses a FilterConfig from a YAML file at path, layered
// over Default(). A missing file is not an error: Default() is returned
// as-is.
func Load(path string) (FilterConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return FilterConfig{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FilterConfig{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return FilterConfig{}, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded values fall within the ranges
// ScalableCuckooFilter's Builder itself enforces, so a bad config file
// surfaces a config-shaped error before ever reaching Builder.Build.
func (c FilterConfig) Validate() error {
	if c.InitialCapacity == 0 {
		return fmt.Errorf("initial_capacity must be > 0")
	}
	if c.FalsePositiveProbability <= 0 || c.FalsePositiveProbability >= 1 {
		return fmt.Errorf("false_positive_probability must be in (0, 1)")
	}
	if c.EntriesPerBucket == 0 {
		return fmt.Errorf("entries_per_bucket must be >= 1")
	}
	if c.GrowthFactor < 2 {
		return fmt.Errorf("growth_factor must be >= 2")
	}
	if c.TighteningRatio <= 0 || c.TighteningRatio >= 1 {
		return fmt.Errorf("tightening_ratio must be in (0, 1)")
	}
	return nil
}
