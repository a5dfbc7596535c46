// Package tracing provides OpenTelemetry tracing integration for the feed
// aggregation pipeline.
//
// Example usage:
//
//	import "feedagg/internal/observability/tracing"
//
//	func run(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "aggregator.run")
//	    defer span.End()
//	    // ... run the pipeline ...
//	}
package tracing
