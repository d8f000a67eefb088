package tracelog

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/cancelreader"
	"github.com/schollz/progressbar/v3"
)

// Parser turns a stream of functional-simulator instruction log lines
// into a lazy sequence of TraceEntry values. It holds no more than one
// line (or, in full-commit mode, one instruction line plus its
// companion commit line) in memory at a time.
type Parser struct {
	cr            cancelreader.CancelReader
	sc            *bufio.Scanner
	fullCommitLog bool
	dramBase      uint64
	instCount     uint64
	lineNum       int
	bar           *progressbar.ProgressBar
	closed        bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithDRAMBase overrides the default DRAM base address used to filter
// trace entries (spec.md §4.1, §6).
func WithDRAMBase(base uint64) Option {
	return func(p *Parser) { p.dramBase = base }
}

// WithProgressBar attaches a progress bar that is advanced by one unit
// per raw line scanned from the underlying reader.
func WithProgressBar(bar *progressbar.ProgressBar) Option {
	return func(p *Parser) { p.bar = bar }
}

// NewParser wraps r in a cancelable scanner. Cancellation only takes
// effect once a context is attached via NewParserContext; plain
// NewParser callers must call Close to release the underlying reader.
func NewParser(r io.Reader, fullCommitLog bool, opts ...Option) (*Parser, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		cr:            cr,
		sc:            bufio.NewScanner(cr),
		fullCommitLog: fullCommitLog,
		dramBase:      DefaultDRAMBase,
	}
	p.sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewParserContext is like NewParser but unblocks a stalled Next call as
// soon as ctx is canceled (spec.md §5: "if the host cancels an
// operation").
func NewParserContext(ctx context.Context, r io.Reader, fullCommitLog bool, opts ...Option) (*Parser, error) {
	p, err := NewParser(r, fullCommitLog, opts...)
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		p.cr.Cancel()
	}()
	return p, nil
}

// Close releases the underlying reader. Safe to call multiple times.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.cr.Close()
}

// Next returns the next filtered TraceEntry. ok is false and err is nil
// at end of stream. A malformed line fails the stream permanently: once
// Next returns a non-nil error, callers must not call Next again.
func (p *Parser) Next() (TraceEntry, bool, error) {
	for {
		line, ok, err := p.scanLine()
		if err != nil {
			return TraceEntry{}, false, err
		}
		if !ok {
			return TraceEntry{}, false, nil
		}

		tokens := strings.Fields(line)
		if len(tokens) >= 3 && tokens[0] == "core" && strings.HasPrefix(tokens[2], ">>>>") {
			// Decorative label line, skip entirely.
			continue
		}
		if len(tokens) < 6 {
			return TraceEntry{}, false, MalformedLog(p.lineNum, line, "expected at least 6 whitespace-separated tokens")
		}
		if tokens[0] != "core" {
			return TraceEntry{}, false, MalformedLog(p.lineNum, line, `expected line to begin with "core"`)
		}

		pc, err := parseHexToken(tokens[3])
		if err != nil {
			return TraceEntry{}, false, MalformedLog(p.lineNum, line, "could not parse PC token: "+err.Error())
		}
		mnemonic := tokens[5]

		if pc < p.dramBase {
			if p.fullCommitLog {
				if _, ok, err := p.scanLine(); err != nil {
					return TraceEntry{}, false, err
				} else if !ok {
					return TraceEntry{}, false, MalformedLog(p.lineNum, line, "expected companion commit line for filtered instruction, got EOF")
				}
			}
			continue
		}

		var commit *CommitInfo
		if p.fullCommitLog {
			commitLine, ok, err := p.scanLine()
			if err != nil {
				return TraceEntry{}, false, err
			}
			if !ok {
				return TraceEntry{}, false, MalformedLog(p.lineNum, line, "expected companion commit line, got EOF")
			}
			commit, err = parseCommitLine(commitLine)
			if err != nil {
				return TraceEntry{}, false, MalformedLog(p.lineNum, commitLine, err.Error())
			}
		}

		entry := TraceEntry{
			PC:        pc,
			Mnemonic:  mnemonic,
			InstCount: p.instCount,
			Commit:    commit,
		}
		p.instCount++
		return entry, true, nil
	}
}

func (p *Parser) scanLine() (string, bool, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	p.lineNum++
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
	return p.sc.Text(), true, nil
}

// parseCommitLine decodes a companion commit line per spec.md §4.1. A
// line whose shape does not match either the 8-token store pattern or
// the 9-token load pattern carries no commit info and is not an error.
func parseCommitLine(line string) (*CommitInfo, error) {
	tokens := strings.Fields(line)
	switch {
	case len(tokens) == 8 && tokens[5] == "mem":
		addr, err := parseHexToken(tokens[6])
		if err != nil {
			return nil, err
		}
		data, err := parseHexToken(tokens[7])
		if err != nil {
			return nil, err
		}
		return &CommitInfo{Address: addr, Data: data, Op: Store}, nil
	case len(tokens) == 9 && tokens[7] == "mem":
		data, err := parseHexToken(tokens[6])
		if err != nil {
			return nil, err
		}
		addr, err := parseHexToken(tokens[8])
		if err != nil {
			return nil, err
		}
		return &CommitInfo{Address: addr, Data: data, Op: Load}, nil
	default:
		return nil, nil
	}
}

func parseHexToken(tok string) (uint64, error) {
	tok = strings.Trim(tok, "()")
	tok = strings.TrimPrefix(tok, "0x")
	tok = strings.TrimPrefix(tok, "0X")
	return strconv.ParseUint(tok, 16, 64)
}
