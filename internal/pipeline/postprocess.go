// Package pipeline runs the per-checkpoint postprocessing fan-out:
// given each checkpoint's already-taken MTR snapshot, it reconstructs a
// cache image from it and serializes that image to disk — in parallel
// across checkpoints, bounded by available CPUs
// (spec.md §4.4, §4.5, §9).
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tidalsim/tidalsim/internal/cacheimg"
	"github.com/tidalsim/tidalsim/internal/cacheio"
	"github.com/tidalsim/tidalsim/internal/cacheparams"
	"github.com/tidalsim/tidalsim/internal/dram"
	"github.com/tidalsim/tidalsim/internal/mtr"
)

// Checkpoint is one instruction point's MTR snapshot plus the
// directory its serialized cache-state files should land in.
type Checkpoint struct {
	Dir string
	MTR *mtr.MTR
}

// Result is the outcome of postprocessing one Checkpoint.
type Result struct {
	Dir   string
	Image *cacheio.CacheImage
}

// RunCheckpointPostprocess reconstructs and serializes a CacheImage for
// every checkpoint, in parallel, bounded by runtime.NumCPU(). image may be
// nil to populate retained blocks with zeroed data instead of reading
// DRAM. The first error encountered cancels the remaining work and is
// returned; ctx lets the caller cancel early too.
func RunCheckpointPostprocess(ctx context.Context, checkpoints []Checkpoint, params cacheparams.Params, image *dram.Image, tagPrefix, dataPrefix string) ([]Result, error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]Result, len(checkpoints))
	for i, ckpt := range checkpoints {
		i, ckpt := i, ckpt
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			img, err := cacheimg.Build(ckpt.MTR, params, image)
			if err != nil {
				return fmt.Errorf("pipeline: checkpoint %s: %w", ckpt.Dir, err)
			}
			if err := img.DumpTagArrays(ckpt.Dir, tagPrefix); err != nil {
				return fmt.Errorf("pipeline: checkpoint %s: %w", ckpt.Dir, err)
			}
			if err := img.DumpDataArrays(ckpt.Dir, dataPrefix); err != nil {
				return fmt.Errorf("pipeline: checkpoint %s: %w", ckpt.Dir, err)
			}

			results[i] = Result{Dir: ckpt.Dir, Image: img}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
