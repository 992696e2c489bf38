package handler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleHandler_ModulePrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("module", "timer", "component", "coordinator")

	logger.Info("Timer started", "session_id", "abc")

	out := buf.String()
	assert.Contains(t, out, "[timer/coordinator] Timer started")
	assert.Contains(t, out, "  session_id=abc")
	assert.NotContains(t, out, "module=")
}

func TestConsoleHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConsoleHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil)).WithGroup("runner")

	logger.Info("tick", "remaining_ms", 1000)

	assert.Contains(t, buf.String(), "  runner.remaining_ms=1000")
}
