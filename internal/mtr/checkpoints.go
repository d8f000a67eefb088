package mtr

import "github.com/tidalsim/tidalsim/internal/tracelog"

// CkptFromLog returns a deep-independent MTR snapshot obtained by
// cloning initial and applying up to instsToConsume further entries
// pulled from the trace (spec.md §4.4, mtr_ckpts_from_spike_log). Only
// entries carrying commit info update the table. If the stream ends
// early, the snapshot reflects whatever was consumed.
func CkptFromLog(p *tracelog.Parser, initial *MTR, instsToConsume int) (*MTR, error) {
	snapshot := initial.Clone()
	for i := 0; i < instsToConsume; i++ {
		entry, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if entry.Commit != nil {
			snapshot.Update(*entry.Commit, entry.InstCount)
		}
	}
	return snapshot, nil
}

// CkptsFromInstPoints starts from an empty MTR and walks the trace in
// the step sequence derived from instPoints, emitting an independent
// snapshot after each step (spec.md §4.4,
// mtr_ckpts_from_inst_points). Snapshots never alias one another.
func CkptsFromInstPoints(p *tracelog.Parser, blockSizeBytes int, instPoints []uint64, opts ...Option) ([]*MTR, error) {
	steps := InstPointsToSteps(instPoints)
	ckpts := make([]*MTR, 0, len(instPoints))
	cur := New(blockSizeBytes, opts...)
	for _, step := range steps {
		next, err := CkptFromLog(p, cur, int(step))
		if err != nil {
			return nil, err
		}
		ckpts = append(ckpts, next)
		cur = next
	}
	return ckpts, nil
}

// InstPointsToSteps converts an ascending list of absolute instruction
// points into the step sequence between them, treating inst_points[-1]
// as 0 (spec.md §3, inst_steps).
func InstPointsToSteps(points []uint64) []uint64 {
	steps := make([]uint64, len(points))
	var prev uint64
	for i, p := range points {
		steps[i] = p - prev
		prev = p
	}
	return steps
}
