package gfa

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/graph"
	"github.com/matzehuels/seqtower/pkg/observability"
	"github.com/matzehuels/seqtower/pkg/store"
)

// ProgressInterval is the number of lines between progress reports.
const ProgressInterval = 1000

// genomeTag prefixes the tag listing the genomes of a record.
const genomeTag = "ORI:Z:"

// Options configures [Parse].
type Options struct {
	Logger *log.Logger // defaults to log.Default()

	// Source names the input in logs and hooks (usually the file path).
	Source string

	// Progress, if set, receives the number of lines processed and Total.
	// It is called from the parsing goroutine and must not block for long.
	Progress func(done, total int)

	// Total is the line count reported to Progress (see [CountLines]).
	// Zero means unknown.
	Total int

	// SkipSequences skips every sequence write because the store already
	// holds them.
	SkipSequences bool
}

// ParseError reports a malformed line. Err carries code MALFORMED_INPUT.
type ParseError struct {
	Line   int    // 1-based line number
	Record string // the offending line, truncated for display
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type parser struct {
	ctx  context.Context
	g    *graph.Graph
	st   store.Store
	opts Options
	line int
}

// Parse reads the exchange format from r and builds a graph over st.
//
// Parse fails atomically from the caller's view: on any error it returns a
// nil graph. Sequences already written to st are not removed; the caller
// decides whether to roll the store back.
//
// Cancellation of ctx is checked between lines. A canceled parse returns an
// error with code CANCELED that also matches context.Canceled.
func Parse(ctx context.Context, r io.Reader, st store.Store, opts Options) (*graph.Graph, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	p := &parser{ctx: ctx, g: graph.New(st), st: st, opts: opts}

	start := time.Now()
	observability.Parse().OnParseStart(ctx, opts.Source, opts.Total)
	err := p.run(r)
	observability.Parse().OnParseComplete(ctx, opts.Source, p.g.NodeCount(), p.g.EdgeCount(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("parsed graph",
		"source", opts.Source,
		"lines", p.line,
		"nodes", p.g.NodeCount(),
		"edges", p.g.EdgeCount(),
		"genomes", p.g.GenomeCount(),
		"duration", time.Since(start))
	return p.g, nil
}

func (p *parser) run(r io.Reader) error {
	if p.opts.SkipSequences {
		if err := p.g.LoadGenomes(); err != nil {
			return err
		}
	}

	br := bufio.NewReaderSize(r, 1<<16)
	for {
		if err := p.ctx.Err(); err != nil {
			return errs.Wrap(errs.ErrCodeCanceled, err, "parse canceled after %d lines", p.line)
		}

		text, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return errs.Wrap(errs.ErrCodeInternal, readErr, "read line %d", p.line+1)
		}
		if text == "" && readErr != nil {
			break
		}

		p.line++
		if err := p.record(strings.TrimRight(text, "\r\n")); err != nil {
			return err
		}
		if p.line%ProgressInterval == 0 {
			p.progress()
		}
		if readErr != nil {
			break
		}
	}
	p.progress()
	return p.finish()
}

func (p *parser) progress() {
	total := p.opts.Total
	if total < p.line {
		total = p.line
	}
	observability.Parse().OnParseProgress(p.ctx, p.opts.Source, p.line, total)
	if p.opts.Progress != nil {
		p.opts.Progress(p.line, total)
	}
}

func (p *parser) record(text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "H":
		return p.header(fields)
	case "S":
		return p.segment(fields)
	case "L":
		return p.link(fields)
	default:
		return p.malformed(text, "unknown record type %q", fields[0])
	}
}

func (p *parser) header(fields []string) error {
	p.opts.Logger.Debug("header", "line", p.line, "text", strings.Join(fields[1:], " "))
	for _, name := range genomeNames(fields[1:]) {
		if _, err := p.g.RegisterGenome(name); err != nil {
			return p.wrap(fields, err)
		}
	}
	return nil
}

func (p *parser) segment(fields []string) error {
	if len(fields) < 3 {
		return p.malformed(strings.Join(fields, "\t"), "segment record needs an id and a sequence")
	}
	id, err := p.id(fields, fields[1])
	if err != nil {
		return err
	}
	seq := fields[2]
	if seq == "*" {
		seq = ""
	}

	seg := graph.Segment{ID: id}
	if existing, err := p.g.Node(id); err == nil {
		if !existing.Placeholder {
			return p.malformed(strings.Join(fields, "\t"), "segment %d defined twice", id)
		}
		seg = *existing
		seg.Placeholder = false
	}
	if err := p.g.AddNode(seg); err != nil {
		return p.wrap(fields, err)
	}

	for _, name := range genomeNames(fields[3:]) {
		idx, err := p.g.RegisterGenome(name)
		if err != nil {
			return p.wrap(fields, err)
		}
		if err := p.g.AddGenome(id, idx); err != nil {
			return p.wrap(fields, err)
		}
	}

	if p.opts.SkipSequences {
		return nil
	}
	return p.st.SetSequence(id, seq)
}

func (p *parser) link(fields []string) error {
	if len(fields) < 4 {
		return p.malformed(strings.Join(fields, "\t"), "link record needs a source and a destination")
	}
	from, err := p.id(fields, fields[1])
	if err != nil {
		return err
	}
	to, err := p.id(fields, fields[3])
	if err != nil {
		return err
	}

	for _, id := range []int{from, to} {
		if p.g.Has(id) {
			continue
		}
		if err := p.g.AddNode(graph.Segment{ID: id, Placeholder: true}); err != nil {
			return p.wrap(fields, err)
		}
	}
	if _, err := p.g.AddLink(from, to); err != nil {
		return p.wrap(fields, err)
	}

	for _, name := range genomeNames(fields[4:]) {
		idx, err := p.g.RegisterGenome(name)
		if err != nil {
			return p.wrap(fields, err)
		}
		if err := p.g.AddLinkGenome(from, to, idx); err != nil {
			return p.wrap(fields, err)
		}
	}
	return nil
}

// finish completes the graph once every line was read.
func (p *parser) finish() error {
	p.g.InferLinkGenomes()

	var placeholders int
	for _, id := range p.g.NodeIDs() {
		n, _ := p.g.Node(id)
		if !n.Placeholder {
			continue
		}
		placeholders++
		if p.opts.SkipSequences {
			continue
		}
		if err := p.st.SetSequence(id, ""); err != nil {
			return err
		}
	}
	if placeholders > 0 {
		p.opts.Logger.Warn("links reference undefined segments", "source", p.opts.Source, "count", placeholders)
	}
	return p.g.BuildGenomeIndex()
}

func (p *parser) id(fields []string, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.malformed(strings.Join(fields, "\t"), "id %q is not an integer", s)
	}
	if id <= 0 {
		return 0, p.malformed(strings.Join(fields, "\t"), "id %d must be positive", id)
	}
	return id, nil
}

func (p *parser) malformed(text, format string, args ...any) error {
	return &ParseError{
		Line:   p.line,
		Record: truncate(text),
		Err:    errs.New(errs.ErrCodeMalformedInput, format, args...),
	}
}

// wrap attaches the line to an error raised by the graph or the store.
// Validation failures become malformed input; everything else keeps its code.
func (p *parser) wrap(fields []string, err error) error {
	if errs.Is(err, errs.ErrCodeInvalidInput) {
		err = errs.Wrap(errs.ErrCodeMalformedInput, err, "invalid record")
	}
	return &ParseError{Line: p.line, Record: truncate(strings.Join(fields, "\t")), Err: err}
}

// genomeNames extracts the names listed in ORI:Z: tags.
func genomeNames(tags []string) []string {
	var names []string
	for _, t := range tags {
		list, ok := strings.CutPrefix(t, genomeTag)
		if !ok {
			continue
		}
		for _, name := range strings.Split(list, ";") {
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func truncate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// CountLines counts the lines of r for progress reporting.
// A final line without a trailing newline is counted.
func CountLines(r io.Reader) (int, error) {
	buf := make([]byte, 1<<16)
	count := 0
	last := byte('\n')
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				count++
			}
		}
		if n > 0 {
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, errs.Wrap(errs.ErrCodeInternal, err, "count lines")
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
