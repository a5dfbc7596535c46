// Package report writes the per-run sidecar report and checks it against
// the pipeline's size invariant before publication.
package report

import (
	"fmt"

	"feedagg/internal/domain"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/output"
)

// Write atomically serializes report to path.
func Write(path string, report domain.RunReport) error {
	return output.WriteJSON(path, report)
}

// Check verifies report obeys the size invariant (0 < size_after_insert
// <= size_after_get for every feed) and records a metric on violation.
// A report with no feed entries at all is also rejected: a run that
// downloaded nothing should never be published.
func Check(report domain.RunReport) error {
	if len(report.FeedStats) == 0 {
		metrics.RecordReportCheckFailure()
		return fmt.Errorf("report check: no feeds reported")
	}
	if !report.Valid() {
		metrics.RecordReportCheckFailure()
		for feedURL, entry := range report.FeedStats {
			if entry.SizeAfterGet <= 0 || entry.SizeAfterInsert <= 0 || entry.SizeAfterInsert > entry.SizeAfterGet {
				return fmt.Errorf("report check: feed %s violates size invariant (size_after_get=%d, size_after_insert=%d)",
					feedURL, entry.SizeAfterGet, entry.SizeAfterInsert)
			}
		}
		return fmt.Errorf("report check: invariant violated")
	}
	return nil
}
