// Package metrics provides Prometheus metrics registry and recording
// utilities for the feed aggregation pipeline.
//
// This package centralizes metrics for every bounded stage of a run:
// feed download, item normalization, image verification/caching, and the
// run-level report. All metrics are registered with the Prometheus
// default registry and exposed via a /metrics endpoint for the duration
// of the run (see cmd/aggregator's metrics server).
//
// Example usage:
//
//	import "feedagg/internal/observability/metrics"
//
//	start := time.Now()
//	// ... download a feed ...
//	metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
//	metrics.FeedFetchTotal.WithLabelValues("success").Inc()
package metrics
