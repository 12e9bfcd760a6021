// Package logging builds the slog loggers used across honey.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout replies and JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewConsole is New with colored output when stderr is a terminal.
func NewConsole(level slog.Level) *slog.Logger {
	fd := int(os.Stderr.Fd())
	if !term.IsTerminal(fd) {
		return New(level)
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:       level,
		TimeFormat:  time.Kitchen,
		ReplaceAttr: replaceAttr,
	}))
}

// NewJSON writes JSON records to w, for servers whose logs are collected.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
