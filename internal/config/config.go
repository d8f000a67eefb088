// Package config loads the YAML run configuration describing cache
// geometry, DRAM base, embedding interval length, and checkpoint
// placement (spec.md §6 DOMAIN STACK addition).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tidalsim/tidalsim/internal/cacheparams"
)

// Cache mirrors cacheparams.New's primary geometry inputs.
type Cache struct {
	PhysAddrBits   int `yaml:"phys_addr_bits"`
	BlockSizeBytes int `yaml:"block_size_bytes"`
	NSets          int `yaml:"n_sets"`
	NWays          int `yaml:"n_ways"`
	DataBusBytes   int `yaml:"data_bus_bytes"`
}

// Checkpoints describes one checkpoint.BuildPlan invocation.
type Checkpoints struct {
	StartPC    uint64   `yaml:"start_pc"`
	InstPoints []uint64 `yaml:"inst_points"`
	NHarts     int      `yaml:"n_harts"`
}

// Config is the full run configuration (spec.md §6).
type Config struct {
	Cache          Cache       `yaml:"cache"`
	DRAMBase       uint64      `yaml:"dram_base"`
	IntervalLength int         `yaml:"interval_length"`
	Checkpoints    Checkpoints `yaml:"checkpoints"`
}

// Load reads and validates a Config from the YAML file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	cfg.NHartsDefault()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// NHartsDefault sets Checkpoints.NHarts to 1 before unmarshaling, so an
// omitted field still yields a usable default.
func (c *Config) NHartsDefault() {
	c.Checkpoints.NHarts = 1
}

// Validate checks field-level invariants that aren't already enforced
// by cacheparams.New (called separately by the caller once a Config is
// loaded, since CacheParams derives fields the config itself doesn't
// carry).
func (c *Config) Validate() error {
	if c.IntervalLength < 2 {
		return fmt.Errorf("interval_length must be >= 2, got %d", c.IntervalLength)
	}
	if len(c.Checkpoints.InstPoints) == 0 {
		return fmt.Errorf("checkpoints.inst_points must be non-empty")
	}
	if c.Checkpoints.NHarts < 1 {
		return fmt.Errorf("checkpoints.n_harts must be >= 1, got %d", c.Checkpoints.NHarts)
	}
	return nil
}

// CacheParams derives a cacheparams.Params from the loaded Cache
// section.
func (c *Config) CacheParams() (cacheparams.Params, error) {
	return cacheparams.New(c.Cache.PhysAddrBits, c.Cache.BlockSizeBytes, c.Cache.NSets, c.Cache.NWays, c.Cache.DataBusBytes)
}
