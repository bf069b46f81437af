// Package config handles adtape.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Policy decides what Forward does when recorded comparisons flip.
type Policy string

// Comparison-change policies.
const (
	PolicyCount Policy = "count" // only update the counter
	PolicyWarn  Policy = "warn"  // update the counter and log a warning
	PolicyError Policy = "error" // fail the order-0 forward sweep
)

// Config is the decoded adtape.toml.
type Config struct {
	Compare  Compare  `toml:"compare"`
	Parallel Parallel `toml:"parallel"`
	Store    Store    `toml:"store"`
}

// Compare configures the comparison-change sweep.
type Compare struct {
	Check  bool   `toml:"check"`
	Policy Policy `toml:"policy"`
}

// Parallel configures the worker team.
type Parallel struct {
	Workers  int `toml:"workers"`
	MinChunk int `toml:"min_chunk"`
}

// Store configures the tape store.
type Store struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Compare: Compare{Check: true, Policy: PolicyCount},
		Parallel: Parallel{
			Workers:  runtime.NumCPU(),
			MinChunk: 64,
		},
		Store: Store{Path: "adtape.db"},
	}
}

// Parse decodes TOML data on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse error: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// fill restores defaults for keys that were present but empty.
func (c *Config) fill() {
	if c.Compare.Policy == "" {
		c.Compare.Policy = PolicyCount
	}
	if c.Parallel.Workers == 0 {
		c.Parallel.Workers = runtime.NumCPU()
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Compare.Policy {
	case PolicyCount, PolicyWarn, PolicyError:
	default:
		return fmt.Errorf("config: compare.policy %q: want count, warn or error", c.Compare.Policy)
	}
	if c.Compare.Policy != PolicyCount && !c.Compare.Check {
		return fmt.Errorf("config: compare.policy %q requires compare.check", c.Compare.Policy)
	}
	if c.Parallel.Workers < 1 {
		return fmt.Errorf("config: parallel.workers must be positive, got %d", c.Parallel.Workers)
	}
	if c.Parallel.MinChunk < 0 {
		return fmt.Errorf("config: parallel.min_chunk must not be negative, got %d", c.Parallel.MinChunk)
	}
	return nil
}
