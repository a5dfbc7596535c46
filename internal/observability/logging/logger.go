// Package logging provides structured logging utilities using the standard
// library's log/slog package. It offers helper functions for creating
// loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"feedagg/internal/observability/runid"
)

// NewLogger creates a new structured logger with JSON output. The log
// level is controlled by the level argument; callers typically pass the
// value loaded from the LOG_LEVEL environment variable (default WARNING,
// per the pipeline's fail-open configuration policy).
func NewLogger(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) <= slog.LevelWarn,
	})
	return slog.New(handler)
}

// NewTextLogger creates a new structured logger with human-readable text
// output, useful for local development.
func NewTextLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) <= slog.LevelWarn,
	})
	return slog.New(handler)
}

// ParseLevel maps the pipeline's LOG_LEVEL string values to slog levels.
// Anything unrecognized falls back to warn, matching the original
// config default.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// WithRunID returns a new logger that includes the run ID from the
// context, enabling log correlation across a single pipeline invocation.
func WithRunID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	id := runid.FromContext(ctx)
	if id == "" {
		return logger
	}
	return logger.With("run_id", id)
}

// WithFields returns a new logger with additional structured fields.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

// FromContext retrieves the logger from the context, or the default
// logger if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
