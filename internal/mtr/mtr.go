// Package mtr implements the Memory Timestamp Record (spec.md §3, §4.4):
// a per-cache-block record of the last read/write timestamp, used to
// approximate LRU cache residency at an arbitrary point in a trace.
package mtr

import (
	"encoding/binary"
	"log/slog"
	"math/bits"

	"github.com/google/btree"
	"github.com/tidalsim/tidalsim/internal/dram"
	"github.com/tidalsim/tidalsim/internal/tracelog"
)

// Entry is one block's last-access timestamps. At least one of
// LastRead/LastWrite is set for every entry present in an MTR's table
// (spec.md §3 invariant).
type Entry struct {
	BlockAddr  uint64
	LastRead   *uint64
	LastWrite  *uint64
}

// LastTouched returns max(last_read_ts, last_write_ts), treating an
// absent timestamp as 0 (spec.md §4.4).
func (e Entry) LastTouched() uint64 {
	var r, w uint64
	if e.LastRead != nil {
		r = *e.LastRead
	}
	if e.LastWrite != nil {
		w = *e.LastWrite
	}
	if r > w {
		return r
	}
	return w
}

func entryLess(a, b Entry) bool {
	return a.BlockAddr < b.BlockAddr
}

// btreeDegree matches the teacher pack's typical B-tree fan-out for
// small-to-medium in-memory ordered sets.
const btreeDegree = 32

// MTR tracks last-access times per cache block. Its table is backed by
// a google/btree ordered by block address, which both gives the
// deterministic "smaller block_addr first" tie-break spec.md §9 leaves
// open and makes Clone an O(1) amortized copy-on-write operation
// instead of a deep copy of a hash map.
type MTR struct {
	blockSizeBytes int
	offsetBits     int
	table          *btree.BTreeG[Entry]
	validateImage  *dram.Image
	logger         *slog.Logger
}

// Option configures optional MTR behavior.
type Option func(*MTR)

// WithCommitValidation enables a sanity check against an optional DRAM
// image: whenever a Store commit's data disagrees with what is already
// resident at that address, the mismatch is logged via logger.Warn and
// the update still proceeds (spec.md §7's "warnings... logged and do
// not abort" policy; a commit-data sanity check supplemented from
// original_source, see DESIGN.md).
func WithCommitValidation(image *dram.Image, logger *slog.Logger) Option {
	if logger == nil {
		logger = slog.Default()
	}
	return func(m *MTR) {
		m.validateImage = image
		m.logger = logger
	}
}

// New returns an empty MTR for the given block size (must be a power of
// two).
func New(blockSizeBytes int, opts ...Option) *MTR {
	m := &MTR{
		blockSizeBytes: blockSizeBytes,
		offsetBits:     clog2(blockSizeBytes),
		table:          btree.NewG(btreeDegree, entryLess),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BlockAddr returns the cache block address containing byteAddr.
func (m *MTR) BlockAddr(byteAddr uint64) uint64 {
	return byteAddr >> m.offsetBits
}

// BlockSizeBytes returns the block size this MTR was constructed with.
func (m *MTR) BlockSizeBytes() int {
	return m.blockSizeBytes
}

// Update records a memory commit at the given instruction timestamp
// (spec.md §4.4).
func (m *MTR) Update(commit tracelog.CommitInfo, timestamp uint64) {
	addr := m.BlockAddr(commit.Address)
	entry, found := m.table.Get(Entry{BlockAddr: addr})
	if !found {
		entry = Entry{BlockAddr: addr}
	}
	ts := timestamp
	switch commit.Op {
	case tracelog.Load:
		entry.LastRead = &ts
	case tracelog.Store:
		m.validateStore(commit)
		entry.LastWrite = &ts
	}
	m.table.ReplaceOrInsert(entry)
}

// validateStore warns, without aborting, when commit's data disagrees
// with the value already resident in the optional DRAM image attached
// via WithCommitValidation. A no-op when no image was attached.
func (m *MTR) validateStore(commit tracelog.CommitInfo) {
	if m.validateImage == nil {
		return
	}
	existing, err := m.validateImage.ReadBlock(commit.Address, 8)
	if err != nil {
		m.logger.Warn("mtr: commit validation read failed", "address", commit.Address, "error", err)
		return
	}
	resident := binary.LittleEndian.Uint64(existing)
	if resident != commit.Data {
		m.logger.Warn("mtr: store commit data disagrees with resident DRAM value",
			"address", commit.Address, "committed", commit.Data, "resident", resident)
	}
}

// Clone returns an independent copy of m. Later updates to the clone or
// to m must not be observable in the other (spec.md §5).
func (m *MTR) Clone() *MTR {
	return &MTR{
		blockSizeBytes: m.blockSizeBytes,
		offsetBits:     m.offsetBits,
		table:          m.table.Clone(),
		validateImage:  m.validateImage,
		logger:         m.logger,
	}
}

// Len returns the number of distinct blocks tracked.
func (m *MTR) Len() int {
	return m.table.Len()
}

// Entries returns every tracked block, ascending by block address. The
// ascending order is the tie-break spec.md §9 leaves open for equal
// last-touched timestamps in the LRU reconstruction.
func (m *MTR) Entries() []Entry {
	entries := make([]Entry, 0, m.table.Len())
	m.table.Ascend(func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// Get looks up the entry for a given block address.
func (m *MTR) Get(blockAddr uint64) (Entry, bool) {
	return m.table.Get(Entry{BlockAddr: blockAddr})
}

func clog2(x int) int {
	if x <= 0 {
		panic("mtr: clog2 domain error")
	}
	return bits.Len(uint(x - 1))
}
