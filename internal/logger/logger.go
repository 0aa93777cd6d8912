// Package logger builds the structured logger shared by all components.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// New returns a structured logger writing to stdout.
// level: "debug", "info", "warn", "error" (default "info").
// format: "json", "text", or "auto" (text on a terminal, json otherwise).
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, resolveFormat(format, term.IsTerminal(int(os.Stdout.Fd()))))
}

// NewWithWriter is New with an explicit destination. An "auto" format is
// treated as json since w is not known to be a terminal.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.ToLower(format) == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveFormat(format string, tty bool) string {
	switch strings.ToLower(format) {
	case "json", "text":
		return strings.ToLower(format)
	}
	if tty {
		return "text"
	}
	return "json"
}
