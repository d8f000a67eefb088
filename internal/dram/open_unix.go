//go:build unix

package dram

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open memory-maps the DRAM image file read-only. Mapping avoids
// copying a potentially large (hundreds of MB) image into the Go heap
// just to serve a handful of block-sized reads during cache
// reconstruction.
func Open(path string, base uint64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("dram: image %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Fall back to plain file reads (e.g. on a filesystem that
		// doesn't support mmap); *os.File already implements io.ReaderAt.
		return &Image{ra: f, base: base, closeFn: f.Close}, nil
	}

	mapped := data
	return &Image{
		ra:   bytes.NewReader(mapped),
		base: base,
		closeFn: func() error {
			munmapErr := unix.Munmap(mapped)
			closeErr := f.Close()
			if munmapErr != nil {
				return munmapErr
			}
			return closeErr
		},
	}, nil
}
