// Package cacheparams derives the fixed geometry constants a cache
// configuration needs for reconstruction and serialization (spec.md
// §3, CacheParams).
package cacheparams

import (
	"fmt"
	"math/bits"
)

// CohStatus is the MESI-like coherency state of a CacheBlock, matching
// ClientMetadata in rocket-chip (see original_source/tidalsim/cache_model/cache.py).
type CohStatus int

const (
	Nothing CohStatus = iota
	Branch
	Trunk
	Dirty
)

func (c CohStatus) String() string {
	switch c {
	case Nothing:
		return "Nothing"
	case Branch:
		return "Branch"
	case Trunk:
		return "Trunk"
	case Dirty:
		return "Dirty"
	default:
		return fmt.Sprintf("CohStatus(%d)", int(c))
	}
}

// Params is the geometry of one cache: physical address width, block
// size, set count, way count, and the data bus width the RTL model uses
// to slice a block into rows (spec.md §3, CacheParams).
type Params struct {
	PhysAddrBits   int
	BlockSizeBytes int
	NSets          int
	NWays          int
	DataBusBytes   int

	OffsetBits    int
	SetBits       int
	TagBits       int
	CoherencyBits int
	RowsPerSet    int
	TagMask       uint64
}

// New derives Params from the four primary geometry values plus the
// data bus width, computing the derived fields once (spec.md §3).
// BlockSizeBytes and NSets must be powers of two, and DataBusBytes must
// divide BlockSizeBytes.
func New(physAddrBits, blockSizeBytes, nSets, nWays, dataBusBytes int) (Params, error) {
	if !isPowerOfTwo(blockSizeBytes) {
		return Params{}, fmt.Errorf("cacheparams: block_size_bytes %d is not a power of two", blockSizeBytes)
	}
	if !isPowerOfTwo(nSets) {
		return Params{}, fmt.Errorf("cacheparams: n_sets %d is not a power of two", nSets)
	}
	if dataBusBytes <= 0 || blockSizeBytes%dataBusBytes != 0 {
		return Params{}, fmt.Errorf("cacheparams: data_bus_bytes %d does not divide block_size_bytes %d", dataBusBytes, blockSizeBytes)
	}

	offsetBits := clog2(blockSizeBytes)
	setBits := clog2(nSets)
	tagBits := physAddrBits - setBits - offsetBits
	if tagBits <= 0 {
		return Params{}, fmt.Errorf("cacheparams: phys_addr_bits %d too small for set_bits=%d offset_bits=%d", physAddrBits, setBits, offsetBits)
	}

	return Params{
		PhysAddrBits:   physAddrBits,
		BlockSizeBytes: blockSizeBytes,
		NSets:          nSets,
		NWays:          nWays,
		DataBusBytes:   dataBusBytes,
		OffsetBits:     offsetBits,
		SetBits:        setBits,
		TagBits:        tagBits,
		CoherencyBits:  2,
		RowsPerSet:     blockSizeBytes / dataBusBytes,
		TagMask:        (uint64(1) << tagBits) - 1,
	}, nil
}

// SetIndex extracts the set index from a cache block address.
func (p Params) SetIndex(blockAddr uint64) int {
	return int(blockAddr & ((uint64(1) << p.SetBits) - 1))
}

// Tag extracts the tag field from a cache block address.
func (p Params) Tag(blockAddr uint64) uint64 {
	return (blockAddr >> p.SetBits) & p.TagMask
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// clog2 is the ceiling of log2(x), matching
// original_source/tidalsim/util/random.py's clog2.
func clog2(x int) int {
	if x <= 0 {
		panic("cacheparams: clog2 domain error")
	}
	return bits.Len(uint(x - 1))
}
