// Package dram treats the optional DRAM image as a seekable byte
// source for cache-data population (spec.md §4.4, §6, §9).
package dram

import (
	"fmt"
	"io"
)

// Image is a flat little-endian binary DRAM image whose byte offset 0
// maps to Base. Reads are served via an io.ReaderAt, which on
// platforms that support it is backed by a memory-mapped file (see
// open_unix.go) rather than buffered I/O — the same "treat the DRAM
// image as a seekable byte source" contract spec.md §9 asks for,
// without copying the whole image into the Go heap.
type Image struct {
	ra      io.ReaderAt
	base    uint64
	closeFn func() error
}

// New wraps an arbitrary io.ReaderAt as a DRAM image. Useful for
// non-seekable inputs the caller has already buffered, per spec.md §9's
// note that non-seekable streams need an intermediate buffer.
func New(ra io.ReaderAt, base uint64) *Image {
	return &Image{ra: ra, base: base}
}

// Close releases any resources (e.g. an mmap) backing the image. Safe
// to call on an Image with no close behavior.
func (img *Image) Close() error {
	if img.closeFn == nil {
		return nil
	}
	return img.closeFn()
}

// ReadBlock reads size bytes starting at the given absolute byte
// address. If the image is shorter than byteAddr+size (e.g. a
// truncated image near the end of DRAM), the missing tail reads as
// zero, matching the "0 if no DRAM image" fallback spec.md §4.4
// describes for entirely absent images.
func (img *Image) ReadBlock(byteAddr uint64, size int) ([]byte, error) {
	if byteAddr < img.base {
		return nil, fmt.Errorf("dram: address 0x%x is below dram_base 0x%x", byteAddr, img.base)
	}
	off := int64(byteAddr - img.base)
	buf := make([]byte, size)
	n, err := img.ra.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, err
	}
	for i := n; i < size; i++ {
		buf[i] = 0
	}
	return buf, nil
}

// Base returns the configured DRAM base address.
func (img *Image) Base() uint64 {
	return img.base
}
