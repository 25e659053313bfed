package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOptions{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "u1")
	ctx = WithTraceID(ctx, "trace-9")
	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "u1", record["user_id"])
	assert.Equal(t, "trace-9", record["trace_id"])
	assert.Equal(t, "test", record["component"])
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOptions{Level: "warn", Format: "text"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestRepoLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	prev := GlobalLogger
	GlobalLogger = NewLogger(&buf, LogOptions{Level: "info", Format: "json"})
	defer func() { GlobalLogger = prev }()

	NewRepoLogger("posts").LogError(context.Background(), errors.New("boom"), "update")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "posts", record["collection"])
	assert.Equal(t, "update", record["operation"])
	assert.Equal(t, "boom", record["error"])
}
