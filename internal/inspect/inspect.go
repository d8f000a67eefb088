// Package inspect renders a CacheImage as a color-coded terminal table
// for `cmd/tidalsim inspect`. It is a convenience view only — never
// part of the on-disk checkpoint contract (spec.md §6, §9).
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/tidalsim/tidalsim/internal/cacheio"
	"github.com/tidalsim/tidalsim/internal/cacheparams"
)

// coherencyColor returns a fixed palette color per coherency state,
// chosen for readability on both light and dark terminal backgrounds.
func coherencyColor(c cacheparams.CohStatus) colorful.Color {
	switch c {
	case cacheparams.Nothing:
		return colorful.Color{R: 0.55, G: 0.55, B: 0.55}
	case cacheparams.Branch:
		return colorful.Color{R: 0.30, G: 0.55, B: 0.95}
	case cacheparams.Trunk:
		return colorful.Color{R: 0.85, G: 0.70, B: 0.15}
	case cacheparams.Dirty:
		return colorful.Color{R: 0.90, G: 0.25, B: 0.25}
	default:
		return colorful.Color{R: 1, G: 1, B: 1}
	}
}

func colorize(s string, c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
}

// tagHexWidth returns the number of hex digits needed to display a
// tag field without truncation.
func tagHexWidth(tagBits int) int {
	return (tagBits + 3) / 4
}

// PrintTagTable renders one row per set, one column per way (ways
// ordered high-to-low, matching cacheio's pretty-file convention), with
// the tag in hex and the cell colored by coherency state.
func PrintTagTable(w io.Writer, img *cacheio.CacheImage) {
	p := img.Params
	hexWidth := tagHexWidth(p.TagBits)
	cellWidth := hexWidth + 2 // "0x" prefix

	fmt.Fprint(w, pad("set", 5))
	for way := p.NWays - 1; way >= 0; way-- {
		fmt.Fprint(w, pad(fmt.Sprintf("way %d", way), cellWidth+2))
	}
	fmt.Fprintln(w)

	for set := 0; set < p.NSets; set++ {
		fmt.Fprint(w, pad(fmt.Sprintf("%d", set), 5))
		for way := p.NWays - 1; way >= 0; way-- {
			block := img.Array[way][set]
			text := fmt.Sprintf("0x%0*x", hexWidth, block.Tag)
			cell := colorize(text, coherencyColor(block.Coherency))
			fmt.Fprint(w, padVisible(cell, cellWidth+2))
		}
		fmt.Fprintln(w)
	}
}

// pad right-pads a plain string to width cells, rune-width aware.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// padVisible right-pads an already-colorized string to width cells,
// measuring width against the escape-stripped text rather than the
// colorized one so the escape codes don't throw off alignment.
func padVisible(colorized string, width int) string {
	w := runewidth.StringWidth(ansi.Strip(colorized))
	if w >= width {
		return colorized
	}
	return colorized + strings.Repeat(" ", width-w)
}

// Summary reports aggregate occupancy for quick inspection.
type Summary struct {
	TotalBlocks    int
	OccupiedBlocks int
}

// Summarize counts non-Nothing entries across the whole image.
func Summarize(img *cacheio.CacheImage) Summary {
	p := img.Params
	s := Summary{TotalBlocks: p.NWays * p.NSets}
	for way := 0; way < p.NWays; way++ {
		for set := 0; set < p.NSets; set++ {
			if img.Array[way][set].Coherency != cacheparams.Nothing {
				s.OccupiedBlocks++
			}
		}
	}
	return s
}

// PrintSummary writes a one-line human-readable occupancy summary.
func PrintSummary(w io.Writer, img *cacheio.CacheImage) {
	s := Summarize(img)
	fmt.Fprintf(w, "%d/%d blocks occupied (%.1f%%)\n", s.OccupiedBlocks, s.TotalBlocks,
		100*float64(s.OccupiedBlocks)/float64(s.TotalBlocks))
}
