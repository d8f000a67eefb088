package cacheio

import (
	"fmt"
	"strings"
)

// PrettyTagArray renders one line per (way, set) as "way N set M: tag=0x...
// coh=<name>", ways ordered high-to-low, for human inspection alongside the
// RTL-facing .bin files (spec.md §4.5).
func (img *CacheImage) PrettyTagArray() string {
	var b strings.Builder
	tagHexWidth := (img.Params.TagBits + 3) / 4
	for way := img.Params.NWays - 1; way >= 0; way-- {
		for set := 0; set < img.Params.NSets; set++ {
			block := img.Array[way][set]
			fmt.Fprintf(&b, "way %d set %d: tag=0x%0*x coh=%s\n", way, set, tagHexWidth, block.Tag, block.Coherency)
		}
	}
	return b.String()
}

// PrettyDataArray renders one line per (way, set) with the full block
// data as a hex string, most-significant byte first, ways ordered
// high-to-low (spec.md §4.5).
func (img *CacheImage) PrettyDataArray() string {
	var b strings.Builder
	for way := img.Params.NWays - 1; way >= 0; way-- {
		for set := 0; set < img.Params.NSets; set++ {
			data := img.Array[way][set].Data
			fmt.Fprintf(&b, "way %d set %d: data=0x%s\n", way, set, hexReversed(data))
		}
	}
	return b.String()
}

func hexReversed(data []byte) string {
	var b strings.Builder
	for i := len(data) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%02x", data[i])
	}
	return b.String()
}
