package checkpoint

import (
	"fmt"

	"github.com/tidalsim/tidalsim/internal/mtr"
)

// Point describes one checkpoint directory: the base_dir/"0x<pc>.<n>"
// path and the absolute instruction count it corresponds to (spec.md
// §4.6).
type Point struct {
	Dir       string
	InstPoint uint64
}

// Plan is the full command sequence for one (start_pc, inst_points)
// checkpoint run, plus the directories its dumps land in, in order
// (spec.md §4.6).
type Plan struct {
	StartPC    uint64
	InstPoints []uint64
	NHarts     int
	Cmds       CmdBlock
	Points     []Point
}

// BuildPlan constructs the multi-checkpoint command plan for
// (startPC, instPoints, nHarts, baseDir): wait for pc = startPC, then
// for each instruction point advance and dump arch state into
// baseDir/"0x<pc>.<inst_point>", then quit (spec.md §4.6).
func BuildPlan(startPC uint64, instPoints []uint64, nHarts int, baseDir string) Plan {
	steps := mtr.InstPointsToSteps(instPoints)

	waitForPC := CmdBlock{Lines: []string{fmt.Sprintf("until pc 0 0x%x", startPC)}}

	points := make([]Point, len(instPoints))
	blocks := make([]CmdBlock, 0, len(instPoints)+2)
	blocks = append(blocks, waitForPC)
	for i, step := range steps {
		dir := fmt.Sprintf("%s/0x%x.%d", baseDir, startPC, instPoints[i])
		points[i] = Point{Dir: dir, InstPoint: instPoints[i]}

		advance := CmdBlock{Lines: []string{fmt.Sprintf("rs %d", step)}, ExpectedLines: 1}
		dump := ArchStateDump(nHarts, dir)
		blocks = append(blocks, Combine(advance, dump))
	}
	blocks = append(blocks, CmdBlock{Lines: []string{"quit"}})

	return Plan{
		StartPC:    startPC,
		InstPoints: instPoints,
		NHarts:     nHarts,
		Cmds:       Combine(blocks...),
		Points:     points,
	}
}

// StartSpec is one (start_pc, inst_points) pair for a batch run of
// BuildPlans.
type StartSpec struct {
	StartPC    uint64
	InstPoints []uint64
}

// BuildPlans builds one independent Plan per StartSpec, all rooted
// under baseDir, for generating checkpoints from more than one
// starting PC in a single pass over the binary (e.g. one per
// SimPoint-selected representative interval). This is a batch
// convenience over BuildPlan, not part of the original single-start
// checkpoint flow.
func BuildPlans(specs []StartSpec, nHarts int, baseDir string) []Plan {
	plans := make([]Plan, len(specs))
	for i, s := range specs {
		plans[i] = BuildPlan(s.StartPC, s.InstPoints, nHarts, baseDir)
	}
	return plans
}
