package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
cache:
  phys_addr_bits: 32
  block_size_bytes: 64
  n_sets: 64
  n_ways: 4
  data_bus_bytes: 8
dram_base: 0x80000000
interval_length: 10000
checkpoints:
  start_pc: 0x80000000
  inst_points: [100000, 1000000, 10000000]
  n_harts: 1
`

func writeSample(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSample(t, sampleYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Cache.PhysAddrBits != 32 || cfg.Cache.BlockSizeBytes != 64 || cfg.Cache.NSets != 64 || cfg.Cache.NWays != 4 || cfg.Cache.DataBusBytes != 8 {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
	if cfg.DRAMBase != 0x80000000 {
		t.Fatalf("dram_base = 0x%x", cfg.DRAMBase)
	}
	if cfg.IntervalLength != 10000 {
		t.Fatalf("interval_length = %d", cfg.IntervalLength)
	}
	if cfg.Checkpoints.StartPC != 0x80000000 {
		t.Fatalf("checkpoints.start_pc = 0x%x", cfg.Checkpoints.StartPC)
	}
	want := []uint64{100000, 1000000, 10000000}
	if len(cfg.Checkpoints.InstPoints) != len(want) {
		t.Fatalf("inst_points = %v", cfg.Checkpoints.InstPoints)
	}
	for i, v := range want {
		if cfg.Checkpoints.InstPoints[i] != v {
			t.Fatalf("inst_points[%d] = %d, want %d", i, cfg.Checkpoints.InstPoints[i], v)
		}
	}

	params, err := cfg.CacheParams()
	if err != nil {
		t.Fatalf("CacheParams: %v", err)
	}
	if params.TagBits <= 0 {
		t.Fatalf("derived TagBits = %d", params.TagBits)
	}
}

func TestLoadDefaultsNHarts(t *testing.T) {
	path := writeSample(t, `
cache: {phys_addr_bits: 32, block_size_bytes: 64, n_sets: 64, n_ways: 4, data_bus_bytes: 8}
interval_length: 10000
checkpoints:
  start_pc: 0x80000000
  inst_points: [1000]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Checkpoints.NHarts != 1 {
		t.Fatalf("n_harts default = %d, want 1", cfg.Checkpoints.NHarts)
	}
}

func TestLoadRejectsShortIntervalLength(t *testing.T) {
	path := writeSample(t, `
cache: {phys_addr_bits: 32, block_size_bytes: 64, n_sets: 64, n_ways: 4, data_bus_bytes: 8}
interval_length: 1
checkpoints:
  start_pc: 0x80000000
  inst_points: [1000]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for interval_length < 2")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
