package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
		Attrs:  []slog.Attr{slog.String("service", "eventhub")},
	})

	logger.Debug("hidden")
	logger.Info("shown", "type", "save")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "save", record["type"])
	assert.Equal(t, "eventhub", record["service"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Format: FormatText, Output: &buf})

	logger.Debug("registered", "type", "save")
	assert.Contains(t, buf.String(), "msg=registered")
	assert.Contains(t, buf.String(), "type=save")
}

func TestNew_AutoFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Format: FormatAuto, Output: &buf}).Info("x")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "non-terminal output gets JSON: %s", buf.String())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Options{Format: FormatText, Output: &buf}), "scenario")

	logger.Info("run")
	assert.Contains(t, buf.String(), "component=scenario")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
