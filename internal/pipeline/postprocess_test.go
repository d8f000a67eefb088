package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidalsim/tidalsim/internal/cacheparams"
	"github.com/tidalsim/tidalsim/internal/mtr"
	"github.com/tidalsim/tidalsim/internal/tracelog"
)

func buildTestMTR(t *testing.T, blockAddrs []uint64) *mtr.MTR {
	t.Helper()
	m := mtr.New(64)
	for i, addr := range blockAddrs {
		m.Update(tracelog.CommitInfo{Address: addr * 64, Op: tracelog.Load}, uint64(i))
	}
	return m
}

func TestRunCheckpointPostprocess(t *testing.T) {
	params, err := cacheparams.New(32, 64, 4, 1, 8)
	if err != nil {
		t.Fatalf("cacheparams.New: %v", err)
	}

	dir1 := t.TempDir()
	dir2 := t.TempDir()
	checkpoints := []Checkpoint{
		{Dir: dir1, MTR: buildTestMTR(t, []uint64{0, 1})},
		{Dir: dir2, MTR: buildTestMTR(t, []uint64{2, 3})},
	}

	results, err := RunCheckpointPostprocess(context.Background(), checkpoints, params, nil, "tag", "data")
	if err != nil {
		t.Fatalf("RunCheckpointPostprocess: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Dir != checkpoints[i].Dir {
			t.Fatalf("result %d dir = %q, want %q", i, r.Dir, checkpoints[i].Dir)
		}
		if r.Image == nil {
			t.Fatalf("result %d has nil image", i)
		}
		if _, err := os.Stat(filepath.Join(checkpoints[i].Dir, "tag0.bin")); err != nil {
			t.Fatalf("checkpoint %d: expected tag0.bin to exist: %v", i, err)
		}
		if _, err := os.Stat(filepath.Join(checkpoints[i].Dir, "data0.bin")); err != nil {
			t.Fatalf("checkpoint %d: expected data0.bin to exist: %v", i, err)
		}
	}
}
