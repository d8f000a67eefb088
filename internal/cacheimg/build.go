// Package cacheimg reconstructs an LRU-approximate CacheImage from an
// MTR snapshot and optional DRAM image (spec.md §4.4). It sits between
// internal/mtr (timestamps only) and internal/cacheio (serialization
// only) so neither package needs to know about the other.
package cacheimg

import (
	"fmt"
	"sort"

	"github.com/tidalsim/tidalsim/internal/cacheio"
	"github.com/tidalsim/tidalsim/internal/cacheparams"
	"github.com/tidalsim/tidalsim/internal/dram"
	"github.com/tidalsim/tidalsim/internal/mtr"
)

// Build reconstructs a CacheImage from m under params. image may be
// nil, in which case retained blocks get zeroed data (spec.md §4.4).
func Build(m *mtr.MTR, params cacheparams.Params, image *dram.Image) (*cacheio.CacheImage, error) {
	if m.BlockSizeBytes() != params.BlockSizeBytes {
		return nil, fmt.Errorf("cacheimg: mtr block size %d does not match cache params block size %d",
			m.BlockSizeBytes(), params.BlockSizeBytes)
	}

	img := cacheio.New(params)

	bySet := make(map[int][]mtr.Entry)
	for _, e := range m.Entries() {
		set := params.SetIndex(e.BlockAddr)
		bySet[set] = append(bySet[set], e)
	}

	for set, entries := range bySet {
		sort.Slice(entries, func(i, j int) bool {
			li, lj := entries[i].LastTouched(), entries[j].LastTouched()
			if li != lj {
				return li > lj
			}
			return entries[i].BlockAddr < entries[j].BlockAddr
		})
		keep := entries
		if len(keep) > params.NWays {
			keep = keep[:params.NWays]
		}
		for way, e := range keep {
			data, err := blockData(image, e.BlockAddr, params)
			if err != nil {
				return nil, err
			}
			img.Array[way][set] = cacheio.CacheBlock{
				Tag:       params.Tag(e.BlockAddr),
				Coherency: cacheparams.Dirty,
				Data:      data,
			}
		}
	}

	return img, nil
}

func blockData(image *dram.Image, blockAddr uint64, params cacheparams.Params) ([]byte, error) {
	data := make([]byte, params.BlockSizeBytes)
	if image == nil {
		return data, nil
	}
	byteAddr := blockAddr << uint(params.OffsetBits)
	read, err := image.ReadBlock(byteAddr, params.BlockSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("cacheimg: reading DRAM at 0x%x: %w", byteAddr, err)
	}
	copy(data, read)
	return data, nil
}
