// Package cli implements the curricula command-line interface.
//
// # Commands
//
//   - analyze: compute per-course metrics and flag redundant requisites
//   - schedule: print the term-ordered plan with per-term units
//   - render: draw the plan grid or a node-link diagram to SVG, PDF or PNG
//   - explore: browse a plan in the terminal
//   - serve: run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The CLI owns
// one logger and hands it to the pipeline runner.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 2 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
