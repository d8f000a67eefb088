package bbextract

import (
	"testing"

	"github.com/tidalsim/tidalsim/internal/tracelog"
)

func feedAll(t *testing.T, x *Extractor, entries []tracelog.TraceEntry) {
	t.Helper()
	for _, e := range entries {
		if err := x.Feed(e); err != nil {
			t.Fatalf("Feed(%+v): %v", e, err)
		}
	}
}

// TestScenarioA is the literal scenario from spec.md §8.
func TestScenarioA(t *testing.T) {
	entries := []tracelog.TraceEntry{
		{PC: 0x4, Mnemonic: "li", InstCount: 0},
		{PC: 0x8, Mnemonic: "li", InstCount: 1},
		{PC: 0xc, Mnemonic: "jal", InstCount: 2},
		{PC: 0x20, Mnemonic: "add", InstCount: 3},
		{PC: 0x24, Mnemonic: "add", InstCount: 4},
		{PC: 0x28, Mnemonic: "beq", InstCount: 5},
		{PC: 0x8, Mnemonic: "li", InstCount: 6},
		{PC: 0xc, Mnemonic: "jal", InstCount: 7},
		{PC: 0x20, Mnemonic: "add", InstCount: 8},
		{PC: 0x24, Mnemonic: "add", InstCount: 9},
		{PC: 0x28, Mnemonic: "beq", InstCount: 10},
	}

	x := NewExtractor()
	feedAll(t, x, entries)
	bb := x.Finish()

	want := []marker{
		{pos: 0x4, id: 0},
		{pos: 0x8, id: 1},
		{pos: 0xd, id: noBlock},
		{pos: 0x20, id: 2},
		{pos: 0x29, id: noBlock},
	}
	if len(bb.markers) != len(want) {
		t.Fatalf("markers = %+v, want %+v", bb.markers, want)
	}
	for i := range want {
		if bb.markers[i] != want[i] {
			t.Fatalf("markers[%d] = %+v, want %+v (full: %+v)", i, bb.markers[i], want[i], bb.markers)
		}
	}
	if bb.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", bb.Len())
	}
}

// TestPropertyP1 checks that every observed PC in the scenario trace
// maps to a known basic block (spec.md P1).
func TestPropertyP1(t *testing.T) {
	entries := []tracelog.TraceEntry{
		{PC: 0x4, Mnemonic: "li"},
		{PC: 0x8, Mnemonic: "li"},
		{PC: 0xc, Mnemonic: "jal"},
		{PC: 0x20, Mnemonic: "add"},
		{PC: 0x24, Mnemonic: "add"},
		{PC: 0x28, Mnemonic: "beq"},
	}
	x := NewExtractor()
	feedAll(t, x, entries)
	bb := x.Finish()
	for _, e := range entries {
		if _, ok := bb.Lookup(e.PC); !ok {
			t.Errorf("Lookup(0x%x) missing, want a block id", e.PC)
		}
	}
	if _, ok := bb.Lookup(0xd); ok {
		t.Errorf("Lookup(0xd) should be unmapped dead code")
	}
}

func TestOneInstructionBlock(t *testing.T) {
	// A control instruction immediately followed by another control
	// instruction at pc+4 yields a one-instruction basic block.
	entries := []tracelog.TraceEntry{
		{PC: 0x100, Mnemonic: "beq"},
		{PC: 0x104, Mnemonic: "ret"},
	}
	x := NewExtractor()
	feedAll(t, x, entries)
	bb := x.Finish()
	if id, ok := bb.Lookup(0x100); !ok || id != 0 {
		t.Fatalf("Lookup(0x100) = (%d,%v), want (0,true)", id, ok)
	}
	if id, ok := bb.Lookup(0x104); !ok || id != 1 {
		t.Fatalf("Lookup(0x104) = (%d,%v), want (1,true)", id, ok)
	}
}

func TestUnexpectedControlTransfer(t *testing.T) {
	entries := []tracelog.TraceEntry{
		{PC: 0x4, Mnemonic: "add"},
		{PC: 0x100, Mnemonic: "add"}, // jumped without a control inst
	}
	x := NewExtractor()
	if err := x.Feed(entries[0]); err != nil {
		t.Fatalf("unexpected error on first feed: %v", err)
	}
	err := x.Feed(entries[1])
	if err == nil {
		t.Fatal("expected UnexpectedControlTransferError, got nil")
	}
	if _, ok := err.(*UnexpectedControlTransferError); !ok {
		t.Fatalf("err = %T, want *UnexpectedControlTransferError", err)
	}
}

func TestCompressedTwoByteFallthroughTolerated(t *testing.T) {
	entries := []tracelog.TraceEntry{
		{PC: 0x4, Mnemonic: "c.addi"},
		{PC: 0x6, Mnemonic: "c.addi"},
		{PC: 0xa, Mnemonic: "add"}, // +4 from 0x6, still within tolerance
		{PC: 0xe, Mnemonic: "c.beqz"},
	}
	x := NewExtractor()
	feedAll(t, x, entries)
	bb := x.Finish()
	if id, ok := bb.Lookup(0x4); !ok || id != 0 {
		t.Fatalf("Lookup(0x4) = (%d,%v)", id, ok)
	}
}
