// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// This package centralizes observability concerns to enable:
//   - Request tracing across service boundaries
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring
//   - Performance profiling and debugging
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracing integration
//   - runid: per-run correlation ID generation and context propagation
//
// Example usage:
//
//	import (
//	    "feedagg/internal/observability/logging"
//	    "feedagg/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger("warning")
//	    logger.Info("pipeline run started")
//
//	    metrics.ItemsNormalized.WithLabelValues("example-source").Add(10)
//	}
package observability
