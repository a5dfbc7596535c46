// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Run ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "feedagg/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger("info")
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRun(ctx context.Context) {
//	    logger := logging.WithRunID(ctx, slog.Default())
//	    logger.Info("processing run")
//	}
package logging
