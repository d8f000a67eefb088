package bbextract

// controlInsts is the fixed set of RV64I/RV64C control-flow mnemonics
// (branches, jumps, and system calls) plus the pseudo-ops the
// functional simulator's disassembler emits in their place. Ported from
// the reference tidalsim/bb/spike.py and tidalsim/util/spike_log.py
// instruction lists.
var controlInsts = buildSet(
	// RV64I branches
	"beq", "bge", "bgeu", "blt", "bltu", "bne",
	// RV64C branches
	"c.beqz", "c.bnez",
	// Pseudo branches
	"beqz", "bnez", "blez", "bgez", "bltz", "bgtz", "bgt", "ble", "bgtu", "bleu",
	// Jumps
	"j", "jal", "jr", "jalr", "ret", "call", "tail",
	"c.j", "c.jal", "c.jr", "c.jalr",
	// System calls / privileged returns
	"ecall", "ebreak", "mret", "sret", "uret",
)

func buildSet(mnemonics ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(mnemonics))
	for _, m := range mnemonics {
		set[m] = struct{}{}
	}
	return set
}

// IsControlInst reports whether mnemonic ends a basic block.
func IsControlInst(mnemonic string) bool {
	_, ok := controlInsts[mnemonic]
	return ok
}
