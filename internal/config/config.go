// Package config holds the tunable parameters of the harness. Everything
// here has a default that works without any file on disk; an optional YAML
// file overlays individual fields.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the harness-wide knobs. The checksum threshold is a
// performance/risk tradeoff, not a correctness requirement, which is why it
// lives here instead of being a package constant.
type Config struct {
	// DataDir is where generated corpora are materialized and reused.
	DataDir string `yaml:"data_dir"`

	// OutDir is where captured implementation outputs are written.
	// Unlike DataDir it is scratch space, recreated per run.
	OutDir string `yaml:"out_dir"`

	// ChecksumThresholdLines is the corpus size above which verification
	// compares digests instead of diffing byte-by-byte.
	ChecksumThresholdLines int `yaml:"checksum_threshold_lines"`

	// TimeoutBaseSeconds and TimeoutPerMillionSeconds bound each external
	// invocation: base + perMillion * (lines / 1e6).
	TimeoutBaseSeconds       int `yaml:"timeout_base_seconds"`
	TimeoutPerMillionSeconds int `yaml:"timeout_per_million_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:                  "testdata_corpora",
		OutDir:                   "sortbench_out",
		ChecksumThresholdLines:   5_000_000,
		TimeoutBaseSeconds:       30,
		TimeoutPerMillionSeconds: 60,
	}
}

// Load reads a YAML overlay from path on top of the defaults. An empty path
// returns the defaults unchanged; a path that cannot be read or parsed is a
// configuration error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ChecksumThresholdLines <= 0 {
		return fmt.Errorf("checksum_threshold_lines must be positive, got %d", c.ChecksumThresholdLines)
	}
	if c.TimeoutBaseSeconds <= 0 {
		return fmt.Errorf("timeout_base_seconds must be positive, got %d", c.TimeoutBaseSeconds)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// TimeoutFor returns the invocation timeout for a corpus of the given line
// count. Timed-out runs are recorded as failures, so the bound only needs to
// be generous, not exact.
func (c Config) TimeoutFor(lines int) time.Duration {
	base := time.Duration(c.TimeoutBaseSeconds) * time.Second
	scaled := time.Duration(c.TimeoutPerMillionSeconds) * time.Second * time.Duration(lines) / 1_000_000
	return base + scaled
}
