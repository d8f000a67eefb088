package dram

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadBlockOffsetsByBase(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	img := New(bytes.NewReader(data), 0x80000000)

	got, err := img.ReadBlock(0x80000002, 4)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	want := []byte{3, 4, 5, 6}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadBlock = %v, want %v", got, want)
	}
}

func TestReadBlockZeroPadsTruncatedTail(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	img := New(bytes.NewReader(data), 0)

	got, err := img.ReadBlock(2, 4)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	want := []byte{3, 4, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadBlock = %v, want %v", got, want)
	}
}

func TestReadBlockRejectsAddressBelowBase(t *testing.T) {
	img := New(bytes.NewReader(nil), 0x80000000)
	if _, err := img.ReadBlock(0x1000, 4); err == nil {
		t.Fatal("expected error for address below dram_base")
	} else if !strings.Contains(err.Error(), "dram_base") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloseIsSafeWithoutCloseFn(t *testing.T) {
	img := New(bytes.NewReader(nil), 0)
	if err := img.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestBaseReturnsConfiguredValue(t *testing.T) {
	img := New(bytes.NewReader(nil), 0x80000000)
	if img.Base() != 0x80000000 {
		t.Fatalf("Base = 0x%x", img.Base())
	}
}
