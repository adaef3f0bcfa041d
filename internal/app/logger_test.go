package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestLogLevelSelection(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for input, want := range cases {
		if got := logLevel(&Config{LogLevel: input}); got != want {
			t.Fatalf("logLevel(%q) = %v, want %v", input, got, want)
		}
	}
	if got := logLevel(nil); got != slog.LevelInfo {
		t.Fatalf("nil config must default to info, got %v", got)
	}
}

func TestLoggerHonorsConfiguredLevel(t *testing.T) {
	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "error"})
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info records must be filtered at error level")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error records must pass at error level")
	}
}
