package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"feedagg/internal/observability/runid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "default log level (warning)", level: ""},
		{name: "debug log level", level: "debug"},
		{name: "invalid log level defaults to warning", level: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger("info")
	assert.NotNil(t, logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"nonsense", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	ctx := runid.WithContext(context.Background(), "run-123")
	logger := WithRunID(ctx, baseLogger)
	logger.Info("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestWithRunID_Empty(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	logger := WithRunID(context.Background(), baseLogger)
	logger.Info("test message")

	assert.NotContains(t, buf.String(), "run_id")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	logger := WithFields(baseLogger, map[string]interface{}{
		"feed_url": "https://example.test/feed.xml",
		"items":    3,
	})
	logger.Info("download complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "https://example.test/feed.xml", entry["feed_url"])
	assert.Equal(t, float64(3), entry["items"])
}

func TestFromContext_Default(t *testing.T) {
	logger := FromContext(context.Background())
	assert.Equal(t, slog.Default(), logger)
}

func TestWithLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	ctx := WithLogger(context.Background(), logger)
	retrieved := FromContext(ctx)
	retrieved.Info("round trip")

	assert.Contains(t, buf.String(), "round trip")
}

func TestLogger_MultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	logger.Info("first")
	logger.Warn("second")
	logger.Error("third")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
}
