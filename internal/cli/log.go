// Package cli implements the flowpen command-line interface.
//
// Commands restore a graph manifest into an engine store, act on it, and
// write the committed result back out. The CLI is built using cobra; output
// is styled with lipgloss and the interactive editor runs on bubbletea.
//
// # Commands
//
//   - replay: apply a JSON action script to a manifest
//   - inspect: summarize elements, wires and selection as a table
//   - export: write DOT, SVG or the binary snapshot of a graph
//   - library: list templates of a JSON or HCL library
//   - edit: interactive editor driving selection, live motion and undo
//   - serve: JSON HTTP API over engine stores
//   - save: run the persistence job into the configured storage
//   - cache: manage the library/autosave cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that writes to
// w and filters below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Replayed 12 actions (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context carrying l.
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
