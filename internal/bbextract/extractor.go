// Package bbextract builds a BasicBlockMap from a single pass over a
// TraceEntry stream (spec.md §4.2).
package bbextract

import (
	"sort"

	"github.com/tidalsim/tidalsim/internal/tracelog"
)

type rawInterval struct {
	lo, hi uint64
}

// Extractor performs the single-pass basic-block detection described in
// spec.md §4.2. Feed each TraceEntry in order, then call Finish once.
type Extractor struct {
	started bool
	start   uint64

	havePrev bool
	prev     tracelog.TraceEntry

	raw []rawInterval
}

// NewExtractor returns an Extractor ready to consume a fresh trace.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Feed processes one TraceEntry. It returns UnexpectedControlTransferError
// if a PC break greater than 4 bytes is not explained by the previous
// instruction being a control instruction.
func (x *Extractor) Feed(e tracelog.TraceEntry) error {
	if !x.started {
		x.start = e.PC
		x.started = true
	}
	if IsControlInst(e.Mnemonic) {
		x.raw = append(x.raw, rawInterval{lo: x.start, hi: e.PC + 1})
		x.started = false
	}
	if x.havePrev {
		diff := pcDelta(e.PC, x.prev.PC)
		if diff > 4 && !IsControlInst(x.prev.Mnemonic) {
			return unexpectedControlTransfer(x.prev.PC, x.prev.Mnemonic, e.PC)
		}
	}
	x.prev = e
	x.havePrev = true
	return nil
}

// Finish closes out any still-open basic block and returns the
// resulting BasicBlockMap.
func (x *Extractor) Finish() *BasicBlockMap {
	if x.started && x.havePrev {
		x.raw = append(x.raw, rawInterval{lo: x.start, hi: x.prev.PC + 1})
	}
	return buildMap(x.raw)
}

func pcDelta(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Extract runs an Extractor over an entire tracelog.Parser stream.
func Extract(p *tracelog.Parser) (*BasicBlockMap, error) {
	x := NewExtractor()
	for {
		e, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := x.Feed(e); err != nil {
			return nil, err
		}
	}
	return x.Finish(), nil
}

type sweepEvent struct {
	pos uint64
	val uint64
}

// buildMap implements the interval-set post-processing sweep from
// spec.md §4.2: events are sorted by (position ascending, validity-span
// descending) and swept left to right, splitting any raw interval that
// execution is later observed entering in the middle.
func buildMap(raw []rawInterval) *BasicBlockMap {
	events := make([]sweepEvent, 0, len(raw)*2)
	for _, iv := range raw {
		events = append(events, sweepEvent{pos: iv.lo, val: iv.hi})
		events = append(events, sweepEvent{pos: iv.hi, val: 0})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].val > events[j].val
	})

	var (
		markers     []marker
		runningRight uint64
		haveLeft    bool
		left        uint64
		nextID      int
	)
	for _, ev := range events {
		if ev.val > runningRight {
			runningRight = ev.val
		}
		if haveLeft && ev.pos <= left {
			continue
		}
		if ev.pos < runningRight {
			markers = append(markers, marker{pos: ev.pos, id: nextID})
			nextID++
		} else {
			markers = append(markers, marker{pos: ev.pos, id: noBlock})
		}
		left = ev.pos
		haveLeft = true
	}
	return &BasicBlockMap{markers: markers, numBlocks: nextID}
}
