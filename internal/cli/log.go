// Package cli implements the seqtower command-line interface.
//
// Commands load a GFA graph file into a session (parsing it once and caching
// its sequences in a store next to the file), then extract, render or serve
// neighbourhoods of that graph. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - parse: ingest a graph file and print its statistics
//   - subgraph: extract the neighbourhood of a segment as JSON, DOT or SVG
//   - render: draw a saved view as DOT or SVG
//   - locate: find the segment holding a genome coordinate
//   - serve: expose a graph over HTTP
//   - cache: show or remove the sequence store of a graph file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise the
// level comes from log_level in the config file. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Extracted 42 segments (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
