// Package metrics provides centralized Prometheus metrics for the
// feed aggregation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed download stage (L5) metrics.
var (
	// FeedFetchTotal counts feed fetch attempts by outcome: success,
	// http_retry (plain-http retry attempted), or failure.
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_feed_fetch_total",
			Help: "Total feed fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// FeedFetchDuration measures how long a single feed download took.
	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedagg_feed_fetch_duration_seconds",
			Help:    "Duration of a feed download attempt",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	// FeedItemsRaw counts parsed entries seen per feed before normalization.
	FeedItemsRaw = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_feed_items_raw_total",
			Help: "Raw feed entries observed, before normalization",
		},
		[]string{"feed_url"},
	)
)

// Item normalization stage (L6) metrics.
var (
	// ItemsNormalized counts items that survived normalization, by source feed.
	ItemsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_items_normalized_total",
			Help: "Items that survived normalization",
		},
		[]string{"feed_url"},
	)

	// ItemsDroppedTotal counts items dropped during normalization, labeled
	// by the gate that dropped them (timestamp, link, domain, profanity,
	// unshorten, title).
	ItemsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_items_dropped_total",
			Help: "Items dropped during normalization, by gate",
		},
		[]string{"gate"},
	)
)

// Aggregation stage (L7) metrics.
var (
	// ItemsDeduped counts items removed as duplicates during aggregation.
	ItemsDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedagg_items_deduped_total",
			Help: "Items removed as duplicates during aggregation",
		},
	)

	// ItemsStale counts items removed by the freshness window filter.
	ItemsStale = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedagg_items_stale_total",
			Help: "Items removed by the freshness window filter",
		},
	)

	// ImageCacheResult counts image cache lookups by outcome (see
	// RecordImageCacheOutcome): local_hit, remote_hit, generated, or one
	// of the failure outcomes.
	ImageCacheResult = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_image_cache_total",
			Help: "Image cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// SandboxCrashesTotal counts resize-and-pad child process failures.
	SandboxCrashesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedagg_sandbox_crashes_total",
			Help: "Thumbnail sandbox child process failures",
		},
	)

	// ImageVerifyTotal counts image HEAD verification outcomes: "ok" or
	// "cleared" (a HEAD error or a non-200 status).
	ImageVerifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_image_verify_total",
			Help: "Image HEAD verification outcomes during aggregation",
		},
		[]string{"outcome"},
	)

	// OGDiscoveryTotal counts OpenGraph/meta fallback image discovery
	// attempts by outcome: "page", "meta", "og", "dc", "none", or
	// "suppressed".
	OGDiscoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedagg_og_discovery_total",
			Help: "OpenGraph/meta fallback image discovery outcomes",
		},
		[]string{"outcome"},
	)
)

// Run-level metrics.
var (
	// RunDuration measures the wall-clock duration of a full pipeline run.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedagg_run_duration_seconds",
			Help:    "Duration of a full pipeline run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// RunOutputItems records the number of items in the final output.
	RunOutputItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedagg_run_output_items",
			Help: "Items present in the most recently emitted output",
		},
	)

	// ReportCheckFailures counts report-verification failures.
	ReportCheckFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedagg_report_check_failures_total",
			Help: "Report invariant violations detected by the report checker",
		},
	)
)
