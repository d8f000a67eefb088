package bbextract

import "sort"

const noBlock = -1

// marker is one entry in the sorted boundary list backing a
// BasicBlockMap: at position pos a new region begins, identified by id
// (or noBlock if the region is dead code with no assigned basic block).
type marker struct {
	pos uint64
	id  int
}

// BasicBlockMap is an immutable partial function from PC to basic-block
// id, backed by a sorted marker slice with O(log n) bisection lookup
// (spec.md §9: replaces an interval tree with merge/split).
type BasicBlockMap struct {
	markers   []marker
	numBlocks int
}

// Lookup returns the basic-block id containing pc, or ok=false if pc
// falls outside every known interval (spec.md I3).
func (m *BasicBlockMap) Lookup(pc uint64) (id int, ok bool) {
	idx := sort.Search(len(m.markers), func(i int) bool { return m.markers[i].pos > pc }) - 1
	if idx < 0 {
		return 0, false
	}
	mk := m.markers[idx]
	if mk.id == noBlock {
		return 0, false
	}
	return mk.id, true
}

// Len reports the number of distinct basic blocks, i.e. the dimension
// of an embedding vector built against this map.
func (m *BasicBlockMap) Len() int {
	return m.numBlocks
}
