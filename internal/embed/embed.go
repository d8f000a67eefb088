// Package embed chunks a trace into fixed-length intervals and
// projects each chunk onto a basic-block frequency vector, normalized
// to a unit-length SimPoint-style embedding (spec.md §4.3).
package embed

import (
	"fmt"
	"math"

	"github.com/tidalsim/tidalsim/internal/bbextract"
	"github.com/tidalsim/tidalsim/internal/tracelog"
)

// Row is one interval's embedding plus the bookkeeping needed to
// relate it back to absolute instruction indices (spec.md §3 Row).
type Row struct {
	Instret   uint64
	InstStart uint64
	InstCount uint64
	Embedding []float64
}

// Embed chunks the entries read from p into groups of length
// intervalLength (the final chunk may be shorter) and emits one Row
// per chunk. intervalLength must be at least 2.
func Embed(p *tracelog.Parser, bb *bbextract.BasicBlockMap, intervalLength int) ([]Row, error) {
	if intervalLength < 2 {
		return nil, fmt.Errorf("embed: interval_length must be >= 2, got %d", intervalLength)
	}

	dim := bb.Len()
	var rows []Row
	var instCount uint64

	v := make([]float64, dim)
	var chunkLen int

	flush := func() {
		if chunkLen == 0 {
			return
		}
		instret := uint64(chunkLen)
		embedding := make([]float64, dim)
		for i, x := range v {
			embedding[i] = x / float64(instret)
		}
		l2Normalize(embedding)

		start := instCount
		instCount += instret
		rows = append(rows, Row{
			Instret:   instret,
			InstStart: start,
			InstCount: instCount,
			Embedding: embedding,
		})

		for i := range v {
			v[i] = 0
		}
		chunkLen = 0
	}

	for {
		entry, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		id, ok := bb.Lookup(entry.PC)
		if !ok {
			return nil, unmappedPC(entry.PC)
		}
		v[id]++
		chunkLen++

		if chunkLen == intervalLength {
			flush()
		}
	}
	flush()

	return rows, nil
}

func l2Normalize(v []float64) {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}
