// Command aggregator runs one full batch pass of the feed aggregation
// pipeline: load the publisher registry, download and normalize every
// feed in parallel, aggregate the surviving items into a single scored
// output, and publish the feed, its report, and (unless disabled) the
// object store upload.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"feedagg/internal/aggregate"
	"feedagg/internal/config"
	"feedagg/internal/domain"
	"feedagg/internal/feeddownload"
	"feedagg/internal/httpfetch"
	"feedagg/internal/imagecache"
	"feedagg/internal/normalize"
	"feedagg/internal/objectstore"
	"feedagg/internal/observability/logging"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/observability/runid"
	"feedagg/internal/observability/tracing"
	"feedagg/internal/ogdiscovery"
	"feedagg/internal/output"
	pkgconfig "feedagg/internal/pkg/config"
	"feedagg/internal/registry"
	"feedagg/internal/report"
	"feedagg/internal/thumbnail"
	"feedagg/internal/unshorten"
)

const outputDir = "feed"

func main() {
	bootLogger := logging.NewLogger(os.Getenv("LOG_LEVEL"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = runid.WithContext(ctx, runid.New())

	cfg := config.Load(bootLogger, pkgconfig.NewConfigMetrics("aggregator"))
	logger := logging.WithRunID(ctx, logging.NewLogger(cfg.LogLevel))
	logger.Info("configuration loaded",
		slog.Int("concurrency", cfg.Concurrency),
		slog.Bool("no_upload", cfg.NoUpload),
		slog.String("sources_file", cfg.SourcesFile))

	metricsServer := startMetricsServer(ctx, logger)
	defer shutdownMetricsServer(metricsServer, logger)

	ctx, span := tracing.GetTracer().Start(ctx, "aggregator.run")
	defer span.End()

	start := time.Now()
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", slog.Any("error", err))
		metrics.RecordRunDuration(time.Since(start))
		os.Exit(1)
	}
	metrics.RecordRunDuration(time.Since(start))
	logger.Info("run complete", slog.Duration("duration", time.Since(start)))
}

func run(ctx context.Context, cfg *config.PipelineConfig, logger *slog.Logger) error {
	publishers, err := loadPublishers(cfg.SourcesFile + ".json")
	if err != nil {
		return err
	}

	fetcher := httpfetch.New(10*time.Second, 5, 10)
	resolver := unshorten.New()
	normalizer := normalize.New(resolver, logger)
	downloader := feeddownload.New(fetcher, cfg.Concurrency, logger)

	store, err := objectstore.New(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL,
		cfg.PubS3Bucket, cfg.PrivS3Bucket, cfg.NoUpload)
	if err != nil {
		return err
	}

	sandbox := thumbnail.NewSandbox(thumbnailWorkerPath())
	cache, err := imagecache.New(filepath.Join(outputDir, "cache"), fetcher, sandbox, store, logger)
	if err != nil {
		return err
	}

	ogFinder := ogdiscovery.New(fetcher, logger)
	aggregator := aggregate.New(fetcher, cache, ogFinder, cfg.PCDNURLBase, cfg.Concurrency, logger)

	rawByFeed, runReport := downloader.Download(ctx, enabledOnly(publishers))

	publisherByURL := make(map[string]domain.PublisherRecord, len(publishers))
	for _, p := range publishers {
		publisherByURL[p.FeedURL] = p
	}

	var allItems []domain.NormalizedItem
	for feedURL, rawFeedItems := range rawByFeed {
		pub := publisherByURL[feedURL]

		raws := make([]domain.RawItem, 0, len(rawFeedItems))
		for _, gfItem := range rawFeedItems {
			raws = append(raws, normalize.FromGofeedItem(gfItem))
		}

		kept := normalizer.NormalizeFeed(ctx, raws, pub, cfg.Concurrency)
		metrics.RecordItemsNormalized(feedURL, len(kept))

		entry := runReport.FeedStats[feedURL]
		entry.SizeAfterInsert = len(kept)
		runReport.FeedStats[feedURL] = entry

		allItems = append(allItems, kept...)
	}

	publishersByID := make(map[string]domain.PublisherRecord, len(publishers))
	for _, p := range publishers {
		publishersByID[p.PublisherID] = p
	}

	final := aggregator.Aggregate(ctx, allItems, publishersByID, time.Now())
	metrics.RecordRunOutput(len(final))

	if err := report.Check(runReport); err != nil {
		logger.Warn("report invariant violated, publishing anyway", slog.Any("error", err))
	}

	feedPath := filepath.Join(outputDir, "today.json")
	if err := output.WriteFeed(feedPath, final); err != nil {
		return err
	}
	if err := output.WriteShards(outputDir, final); err != nil {
		return err
	}
	reportPath := filepath.Join(outputDir, "report.json")
	if err := report.Write(reportPath, runReport); err != nil {
		return err
	}

	return publish(ctx, store, cfg, feedPath, reportPath)
}

// publish uploads the feed and report to the public bucket. When
// DualUploadCompat is set, the feed is additionally published under its
// legacy key alongside the current one, matching the original
// pipeline's migration-era double-write.
func publish(ctx context.Context, store *objectstore.Store, cfg *config.PipelineConfig, feedPath, reportPath string) error {
	feedBody, err := os.ReadFile(feedPath)
	if err != nil {
		return err
	}
	reportBody, err := os.ReadFile(reportPath)
	if err != nil {
		return err
	}

	if err := store.Upload(ctx, store.PublicBucket(), "today.json", feedBody, "application/json"); err != nil {
		return err
	}
	if err := store.Upload(ctx, store.PublicBucket(), "report.json", reportBody, "application/json"); err != nil {
		return err
	}
	if cfg.DualUploadCompat {
		if err := store.Upload(ctx, store.PublicBucket(), "brave-today/today.json", feedBody, "application/json"); err != nil {
			return err
		}
	}
	return nil
}

func loadPublishers(path string) ([]domain.PublisherRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return registry.LoadFeedJSON(f)
}

func enabledOnly(publishers []domain.PublisherRecord) []domain.PublisherRecord {
	out := make([]domain.PublisherRecord, 0, len(publishers))
	for _, p := range publishers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func thumbnailWorkerPath() string {
	if self, err := thumbnail.SelfPath(); err == nil {
		return filepath.Join(filepath.Dir(self), "thumbnailworker")
	}
	return "thumbnailworker"
}

