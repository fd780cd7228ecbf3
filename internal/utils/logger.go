package utils

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. Unknown level strings fall back
// to info rather than erroring; level parsing accepts the slog forms
// ("debug", "info", "warn", "error", case-insensitive).
func NewLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler).With(slog.String("service", "revenue-health"))
}
