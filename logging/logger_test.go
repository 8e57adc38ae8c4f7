package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestStructuredLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("executor").
		WithRun("bot", "run-1")

	l.Info("step.completed", "step", 3, "action", "search")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "step.completed", lines[0]["msg"])
	assert.Equal(t, "executor", lines[0]["component"])
	assert.Equal(t, "run-1", lines[0]["run_id"])
	assert.Equal(t, float64(3), lines[0]["step"])
	assert.Equal(t, "search", lines[0]["action"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.LogToolCall("search", time.Millisecond, true, nil)
	l.Warn("shown")
	l.LogReasoningCall("heuristic", 1, time.Millisecond, false, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.Equal(t, "Reasoning call failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestStructuredLogger_WithContextIsolation(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})
	child := base.WithContext("tenant", "a")

	base.Info("base")
	child.Info("child")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "tenant")
	assert.Equal(t, "a", lines[1]["tenant"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestRecorderImplemented(t *testing.T) {
	var _ Recorder = (*StructuredLogger)(nil)
	var _ Logger = NoOpLogger{}
}

func TestStructuredLogger_ErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})

	l.ErrorWithStack(errors.New("disk full"), "save failed", "run_id", "r1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "disk full", lines[0]["error"])
	assert.Equal(t, "*errors.errorString", lines[0]["error_type"])
	assert.Contains(t, lines[0]["stack_trace"], "goroutine")
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	l.Info("hello", "k", "v")
	l.Debug("dropped")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "v", lines[0]["k"])
}

func TestStructuredLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "console", Output: &buf, NoColor: true})

	l.Error("save failed", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "ERR save failed")
	assert.Contains(t, out, "error=disk full")
	assert.NotContains(t, out, "\x1b[")
}
