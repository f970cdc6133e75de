// Package cli implements the cloverquilt command-line interface.
//
// The commands load a drawing, apply fills and presentation changes through
// the fill engine, and export the result. Preferences (palette, uploaded
// patterns, stroke, canvas and zoom) persist between runs in the store
// selected by --store or the config file.
//
// # Commands
//
//   - info: Summarize a drawing's regions and viewBox
//   - fill: Apply fills from flags, a TOML plan or a saved design, then export
//   - export: Rasterize a drawing to PNG or write it back as SVG
//   - paint: Fill regions interactively in the terminal
//   - serve: Expose the engine over HTTP
//   - palette, patterns, prefs: Manage persisted preferences
//   - cache: Manage the export cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long-running exports can report progress.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// wall-clock timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time appended to keyvals,
// e.g. "Exported quilt.png elapsed=1.234s regions=42".
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}

type loggerKey struct{}

// withLogger attaches l to ctx. Commands set it in PersistentPreRunE.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
