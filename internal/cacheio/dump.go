package cacheio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DumpTagArrays writes one "<prefix><way>.bin" file per way plus a
// "<prefix>.pretty" human-readable summary into dir (spec.md §4.5, §6).
func (img *CacheImage) DumpTagArrays(dir, prefix string) error {
	for way := 0; way < img.Params.NWays; way++ {
		lines := img.TagArrayLines(way)
		path := filepath.Join(dir, fmt.Sprintf("%s%d.bin", prefix, way))
		if err := writeLines(path, lines); err != nil {
			return err
		}
	}
	return os.WriteFile(filepath.Join(dir, prefix+".pretty"), []byte(img.PrettyTagArray()), 0o644)
}

// DumpDataArrays writes one "<prefix><k>.bin" file per (way, lane) pair
// (k = way*D + lane) plus a "<prefix>.pretty" summary into dir.
func (img *CacheImage) DumpDataArrays(dir, prefix string) error {
	for way := 0; way < img.Params.NWays; way++ {
		for lane := 0; lane < img.Params.DataBusBytes; lane++ {
			lines := img.DataArrayLaneLines(way, lane)
			idx := LaneIndex(way, lane, img.Params.DataBusBytes)
			path := filepath.Join(dir, fmt.Sprintf("%s%d.bin", prefix, idx))
			if err := writeLines(path, lines); err != nil {
				return err
			}
		}
	}
	return os.WriteFile(filepath.Join(dir, prefix+".pretty"), []byte(img.PrettyDataArray()), 0o644)
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}
