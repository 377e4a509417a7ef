package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	log := Default()
	if log == nil || log.Logger == nil {
		t.Fatal("Default() returned nil logger")
	}
	// Must not panic.
	log.Info("test entry", "key", "value")
}

func TestWith(t *testing.T) {
	log := Default()
	child := log.With("component", "fleet")
	if child == nil || child.Logger == nil {
		t.Fatal("With() returned nil logger")
	}
	if child == log {
		t.Error("With() should return a new logger")
	}
}
