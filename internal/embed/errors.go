package embed

import "fmt"

// UnmappedPCError signals that a trace entry's PC fell outside every
// interval of the BasicBlockMap used to embed it. This means the map
// was built from a different trace than the one being embedded
// (spec.md §4.3).
type UnmappedPCError struct {
	PC uint64
}

func (e *UnmappedPCError) Error() string {
	return fmt.Sprintf("embed: pc=0x%x is not covered by the basic-block map", e.PC)
}

func unmappedPC(pc uint64) error {
	return &UnmappedPCError{PC: pc}
}
