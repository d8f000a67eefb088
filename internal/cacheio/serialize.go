package cacheio

import "fmt"

// TagArrayLines returns one LSB-lane-independent binary text line per
// set for the given way: bits = (coherency << tag_bits) | tag, written
// MSB-left within the field width (spec.md §4.5, §6).
func (img *CacheImage) TagArrayLines(way int) []string {
	width := img.Params.TagBits + img.Params.CoherencyBits
	lines := make([]string, img.Params.NSets)
	for set := 0; set < img.Params.NSets; set++ {
		block := img.Array[way][set]
		val := (uint64(block.Coherency) << img.Params.TagBits) | (block.Tag & img.Params.TagMask)
		lines[set] = fmt.Sprintf("%0*b", width, val)
	}
	return lines
}

// DataArrayLaneLines returns the flat (set, row-within-set) sequence of
// one-byte binary lines for the given (way, lane) pair. lane 0 is the
// least-significant byte of each D-byte row, matching a byte-sliced
// SRAM (spec.md §4.5).
func (img *CacheImage) DataArrayLaneLines(way, lane int) []string {
	p := img.Params
	lines := make([]string, 0, p.NSets*p.RowsPerSet)
	for set := 0; set < p.NSets; set++ {
		data := img.Array[way][set].Data
		for row := 0; row < p.RowsPerSet; row++ {
			rowStart := row * p.DataBusBytes
			b := data[rowStart+lane]
			lines = append(lines, fmt.Sprintf("%08b", b))
		}
	}
	return lines
}

// LaneIndex is the sequential file index for a (way, lane) pair:
// way*D + lane (spec.md §4.5).
func LaneIndex(way, lane, dataBusBytes int) int {
	return way*dataBusBytes + lane
}
