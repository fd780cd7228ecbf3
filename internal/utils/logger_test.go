package utils

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevelParsing(t *testing.T) {
	tests := []struct {
		level       string
		wantDebugOn bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"info", false},
		{"warn", false},
		{"nonsense", false}, // unknown levels fall back to info
		{"", false},
	}
	for _, tt := range tests {
		logger := NewLogger(tt.level, false)
		if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebugOn {
			t.Errorf("level %q: debug enabled = %t, want %t", tt.level, got, tt.wantDebugOn)
		}
		if !logger.Enabled(context.Background(), slog.LevelError) {
			t.Errorf("level %q: error should always be enabled", tt.level)
		}
	}
}

func TestNewLoggerJSONHandler(t *testing.T) {
	if logger := NewLogger("info", true); logger == nil {
		t.Fatal("nil logger")
	}
}
