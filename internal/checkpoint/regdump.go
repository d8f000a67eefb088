package checkpoint

import "fmt"

// specialRegs is the fixed ordered list of special-CSR reads issued
// after the pc/priv reads and before the general-purpose register
// dumps, ported from
// original_source/tidalsim/util/spike_ckpt.py:reg_dump.
var specialRegs = []string{
	"fcsr", "vstart", "vxsat", "vxrm", "vcsr", "vtype",
	"stvec", "sscratch", "sepc", "scause", "stval", "satp",
	"mstatus", "medeleg", "mideleg", "mie", "mtvec", "mscratch",
	"mepc", "mcause", "mtval", "mip", "mcycle", "minstret",
}

const numXPR = 32
const numFPR = 32

// RegDump returns the per-hart register dump command block: pc, priv,
// the fixed special-CSR list, mtime, mtimecmp, 32 floating-point registers, 32 integer
// registers, and one vector register. Its expected_lines is exactly
// (fixed-count) + 32 + 32 + 33 (spec.md §4.6).
func RegDump(hart int) CmdBlock {
	lines := make([]string, 0, 2+len(specialRegs)+numFPR+numXPR+1)
	lines = append(lines, fmt.Sprintf("pc %d", hart), fmt.Sprintf("priv %d", hart))
	for _, r := range specialRegs {
		lines = append(lines, fmt.Sprintf("reg %d %s", hart, r))
	}
	lines = append(lines, fmt.Sprintf("mtime"), fmt.Sprintf("mtimecmp %d", hart))
	for fr := 0; fr < numFPR; fr++ {
		lines = append(lines, fmt.Sprintf("freg %d %d", hart, fr))
	}
	for xr := 0; xr < numXPR; xr++ {
		lines = append(lines, fmt.Sprintf("reg %d %d", hart, xr))
	}
	lines = append(lines, fmt.Sprintf("vreg %d", hart))

	fixedCount := 2 + len(specialRegs) + 2 // pc, priv, special CSRs, mtime, mtimecmp
	return CmdBlock{
		Lines:         lines,
		ExpectedLines: fixedCount + numFPR + numXPR + 33,
	}
}

// ArchStateDump returns the full architectural-state dump for nHarts
// harts: one memory-dump command producing no stdout output, followed
// by a RegDump per hart. If dir is non-empty, the memory dump is
// written there; otherwise the simulator picks an implicit path in its
// working directory (spec.md §4.6).
func ArchStateDump(nHarts int, dir string) CmdBlock {
	memDump := CmdBlock{Lines: []string{"dump"}}
	if dir != "" {
		memDump.Lines = []string{"dump " + dir}
	}

	blocks := make([]CmdBlock, 0, nHarts+1)
	blocks = append(blocks, memDump)
	for h := 0; h < nHarts; h++ {
		blocks = append(blocks, RegDump(h))
	}
	return Combine(blocks...)
}
