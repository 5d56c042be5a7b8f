// Package logging sets up the structured logger used by the `agent`
// subcommand (the executor side): a terminal handler fanned out to an
// optional append-only log file via samber/slog-multi. The `present` side
// does not build a logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// New builds a component-scoped logger. When logFile is non-empty, log
// lines are duplicated to that file in addition to stderr; when component
// is set, every record carries a "component" attribute so a demo
// machine's combined log can be filtered per subsystem.
//
// New always wires stderr in; callers that need file-only output during an
// interactive session pass the terminal sink explicitly via NewWithWriter.
func New(component, logFile string) (*slog.Logger, error) {
	return NewWithWriter(component, logFile, os.Stderr)
}

// NewWithWriter is New with the terminal sink made explicit, so a caller
// can pass io.Discard while a TUI's alt screen is active.
func NewWithWriter(component, logFile string, terminal io.Writer) (*slog.Logger, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(terminal, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	fanout := slogmulti.Fanout(handlers...)
	logger := slog.New(fanout)
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger, nil
}
