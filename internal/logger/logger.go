package logger

import (
	"io"
	"log/slog"
)

// NewWithWriter creates a new slog.Logger instance with a specific writer.
// If debug is true, the log level is set to Debug. Otherwise, it's set to Info.
// Unknown formats fall back to JSON.
func NewWithWriter(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard returns a logger that drops everything. Handy for tests and CLI one-shots.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// KeySuffix returns the last 4 characters of a key, or the full key if it's shorter.
// It is the only form in which keys may appear in logs.
func KeySuffix(key string) string {
	if len(key) > 4 {
		return key[len(key)-4:]
	}
	return key
}
