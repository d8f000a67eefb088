//go:build !unix

package dram

import "os"

// Open reads the DRAM image via plain buffered file access on
// platforms where mmap isn't wired up (spec.md §9's "non-seekable
// streams" case is subsumed here too, since *os.File.ReadAt works
// whether or not the underlying file happens to be mmap-able).
func Open(path string, base uint64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Image{ra: f, base: base, closeFn: f.Close}, nil
}
