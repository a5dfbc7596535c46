package metrics

import "time"

// RecordFeedFetchSuccess records a feed download that succeeded, either on
// the first https attempt or the plain-http retry.
func RecordFeedFetchSuccess(duration time.Duration, retried bool) {
	outcome := "success"
	if retried {
		outcome = "http_retry"
	}
	FeedFetchTotal.WithLabelValues(outcome).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordFeedFetchFailure records a feed download that failed on every
// attempt and was dropped from the run.
func RecordFeedFetchFailure(duration time.Duration) {
	FeedFetchTotal.WithLabelValues("failure").Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordItemDropped increments the drop counter for the gate that rejected
// an item during normalization.
func RecordItemDropped(gate string) {
	ItemsDroppedTotal.WithLabelValues(gate).Inc()
}

// RecordImageCacheOutcome increments the image cache counter for the given
// outcome: "local_hit", "remote_hit", "generated", "probe_error",
// "fetch_failed", "sandbox_error", "decode_failed", "read_failed", or
// "upload_failed".
func RecordImageCacheOutcome(outcome string) {
	ImageCacheResult.WithLabelValues(outcome).Inc()
}

// RecordItemsNormalized records how many items survived normalization for
// one feed (size_after_insert, before dedup/freshness filtering).
func RecordItemsNormalized(feedURL string, count int) {
	ItemsNormalized.WithLabelValues(feedURL).Add(float64(count))
}

// RecordDedup increments the cross-feed duplicate-URL counter.
func RecordDedup() {
	ItemsDeduped.Inc()
}

// RecordStale increments the freshness-window rejection counter.
func RecordStale() {
	ItemsStale.Inc()
}

// RecordSandboxCrash increments the thumbnail sandbox crash counter.
func RecordSandboxCrash() {
	SandboxCrashesTotal.Inc()
}

// RecordRunOutput sets the gauge tracking the item count of the most
// recently emitted feed.
func RecordRunOutput(count int) {
	RunOutputItems.Set(float64(count))
}

// RecordRunDuration observes the wall-clock duration of a full run.
func RecordRunDuration(d time.Duration) {
	RunDuration.Observe(d.Seconds())
}

// RecordReportCheckFailure increments the report-invariant violation
// counter.
func RecordReportCheckFailure() {
	ReportCheckFailures.Inc()
}

// RecordImageVerify increments the image HEAD verification counter for
// the given outcome: "ok" or "cleared".
func RecordImageVerify(outcome string) {
	ImageVerifyTotal.WithLabelValues(outcome).Inc()
}

// RecordOGDiscovery increments the OpenGraph/meta fallback discovery
// counter for the given outcome: the winning strategy name ("page",
// "meta", "og", "dc"), "none", or "suppressed".
func RecordOGDiscovery(outcome string) {
	OGDiscoveryTotal.WithLabelValues(outcome).Inc()
}
