// Package cacheio builds, serializes, and parses CacheImage values in
// the exact bit layout an external RTL simulation harness expects
// (spec.md §3 CacheImage, §4.5 Cache-State Serializer).
package cacheio

import "github.com/tidalsim/tidalsim/internal/cacheparams"

// CacheBlock is one (way, set) entry. Data holds BlockSizeBytes raw
// bytes in little-endian order (byte 0 is the least-significant byte of
// the block).
type CacheBlock struct {
	Data      []byte
	Tag       uint64
	Coherency cacheparams.CohStatus
}

// CacheImage is the full array[NWays][NSets] of CacheBlock, indexed
// array[way][set] (spec.md §3).
type CacheImage struct {
	Params cacheparams.Params
	Array  [][]CacheBlock
}

// New returns a CacheImage with every entry initialized to
// {data: 0, tag: 0, coherency: Nothing}.
func New(params cacheparams.Params) *CacheImage {
	arr := make([][]CacheBlock, params.NWays)
	for w := range arr {
		arr[w] = make([]CacheBlock, params.NSets)
		for s := range arr[w] {
			arr[w][s] = CacheBlock{Data: make([]byte, params.BlockSizeBytes)}
		}
	}
	return &CacheImage{Params: params, Array: arr}
}

// NewStructuredCacheImage fills every entry with a predictable
// tag/data pattern for RTL harness bring-up, independent of any MTR
// data. Tags are unique per (way, set); the data bytes are taken mod
// 256 and repeat across entries. Ported from original_source's
// tidalsim/cache_model/cache.py:fill_with_structured_data (spec.md
// DESIGN NOTES, supplemented feature).
func NewStructuredCacheImage(params cacheparams.Params) *CacheImage {
	img := New(params)
	for way := 0; way < params.NWays; way++ {
		for set := 0; set < params.NSets; set++ {
			tagBottomBits := uint64(way*params.NSets + set)
			tag := (uint64(1) << (params.TagBits - 1)) | tagBottomBits
			data := make([]byte, params.BlockSizeBytes)
			for i := range data {
				data[i] = byte((way*params.BlockSizeBytes + set*params.BlockSizeBytes + i + 1) & 0xff)
			}
			img.Array[way][set] = CacheBlock{Data: data, Tag: tag, Coherency: cacheparams.Dirty}
		}
	}
	return img
}
