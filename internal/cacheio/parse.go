package cacheio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidalsim/tidalsim/internal/cacheparams"
)

// ParseTagArrays reads back the NWays files written by DumpTagArrays
// and reconstructs the tag/coherency half of a CacheImage. The data
// half is left zeroed; call ParseDataArrays on the same image to fill
// it in. This is the inverse of TagArrayLines/DumpTagArrays and
// exists to support round-tripping (spec.md §4.5 property P5).
func ParseTagArrays(params cacheparams.Params, dir, prefix string) (*CacheImage, error) {
	img := New(params)
	width := params.TagBits + params.CoherencyBits
	for way := 0; way < params.NWays; way++ {
		path := fmt.Sprintf("%s/%s%d.bin", dir, prefix, way)
		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		if len(lines) != params.NSets {
			return nil, fmt.Errorf("cacheio: %s: expected %d lines, got %d", path, params.NSets, len(lines))
		}
		for set, line := range lines {
			val, err := parseBinField(line, width)
			if err != nil {
				return nil, fmt.Errorf("cacheio: %s line %d: %w", path, set, err)
			}
			img.Array[way][set].Tag = val & params.TagMask
			img.Array[way][set].Coherency = cacheparams.CohStatus(val >> params.TagBits)
		}
	}
	return img, nil
}

// ParseDataArrays reads back the NWays*DataBusBytes lane files written
// by DumpDataArrays and fills in the data half of img in place.
func ParseDataArrays(img *CacheImage, dir, prefix string) error {
	p := img.Params
	for way := 0; way < p.NWays; way++ {
		for lane := 0; lane < p.DataBusBytes; lane++ {
			idx := LaneIndex(way, lane, p.DataBusBytes)
			path := fmt.Sprintf("%s/%s%d.bin", dir, prefix, idx)
			lines, err := readLines(path)
			if err != nil {
				return err
			}
			want := p.NSets * p.RowsPerSet
			if len(lines) != want {
				return fmt.Errorf("cacheio: %s: expected %d lines, got %d", path, want, len(lines))
			}
			for set := 0; set < p.NSets; set++ {
				for row := 0; row < p.RowsPerSet; row++ {
					b, err := parseBinField(lines[set*p.RowsPerSet+row], 8)
					if err != nil {
						return fmt.Errorf("cacheio: %s line %d: %w", path, set*p.RowsPerSet+row, err)
					}
					img.Array[way][set].Data[row*p.DataBusBytes+lane] = byte(b)
				}
			}
		}
	}
	return nil
}

func parseBinField(line string, width int) (uint64, error) {
	line = strings.TrimSpace(line)
	if len(line) != width {
		return 0, fmt.Errorf("expected %d-bit field, got %q (%d chars)", width, line, len(line))
	}
	return strconv.ParseUint(line, 2, 64)
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := strings.TrimRight(string(raw), "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}
