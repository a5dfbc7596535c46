// Package feeddownload fetches and parses every publisher's RSS/Atom
// feed with bounded parallelism, populating the run report with the
// item counts each feed contributed.
package feeddownload

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"feedagg/internal/domain"
	"feedagg/internal/httpfetch"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/resilience/circuitbreaker"
	"feedagg/internal/resilience/retry"
)

// MaxFeedBytes bounds how large a single feed document is allowed to
// be before the fetch is aborted.
const MaxFeedBytes = 10 * 1024 * 1024

// Downloader fetches and parses every publisher's feed URL, bounded by
// a configurable worker count.
type Downloader struct {
	fetcher     *httpfetch.Fetcher
	concurrency int
	breaker     *circuitbreaker.CircuitBreaker
	logger      *slog.Logger
}

// New builds a Downloader. concurrency bounds how many feeds are
// fetched and parsed at once.
func New(fetcher *httpfetch.Fetcher, concurrency int, logger *slog.Logger) *Downloader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Downloader{
		fetcher:     fetcher,
		concurrency: concurrency,
		breaker:     circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		logger:      logger,
	}
}

// Result holds the parsed items of every downloaded feed, keyed by the
// publisher's feed URL.
type Result struct {
	Items map[string][]*gofeed.Item
}

// Download fetches every publisher's feed concurrently, bounded by the
// configured concurrency. Feeds that fail every attempt, or parse to
// zero items, are silently dropped (no entry in the returned map and no
// report row). The report's size_after_get field is populated here;
// size_after_insert is filled in later by the normalizer/aggregator.
func (d *Downloader) Download(ctx context.Context, publishers []domain.PublisherRecord) (map[string][]*gofeed.Item, domain.RunReport) {
	sem := make(chan struct{}, d.concurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	items := make(map[string][]*gofeed.Item)
	report := domain.RunReport{FeedStats: make(map[string]domain.FeedReportEntry)}

	for _, pub := range publishers {
		pub := pub
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			start := time.Now()
			parsed, retried, err := d.fetchOne(egCtx, pub.FeedURL)
			if err != nil {
				metrics.RecordFeedFetchFailure(time.Since(start))
				d.logger.Warn("feed download failed, dropping", slog.String("feed_url", pub.FeedURL), slog.Any("error", err))
				return nil
			}
			if len(parsed.Items) == 0 {
				metrics.RecordFeedFetchFailure(time.Since(start))
				d.logger.Warn("feed parsed to zero items, dropping", slog.String("feed_url", pub.FeedURL))
				return nil
			}

			metrics.RecordFeedFetchSuccess(time.Since(start), retried)

			feedItems := parsed.Items
			if pub.MaxEntries > 0 && len(feedItems) > pub.MaxEntries {
				feedItems = feedItems[:pub.MaxEntries]
			}
			metrics.FeedItemsRaw.WithLabelValues(pub.FeedURL).Add(float64(len(feedItems)))

			mu.Lock()
			items[pub.FeedURL] = feedItems
			report.FeedStats[pub.FeedURL] = domain.FeedReportEntry{SizeAfterGet: len(feedItems)}
			mu.Unlock()
			return nil
		})
	}

	// Errors here only come from context cancellation; every per-feed
	// failure is handled inline so the run continues for the rest.
	_ = eg.Wait()

	return items, report
}

// fetchOne performs the https-then-http-retry-once contract for a
// single feed URL and parses the result with gofeed.
func (d *Downloader) fetchOne(ctx context.Context, feedURL string) (*gofeed.Feed, bool, error) {
	parser := gofeed.NewParser()

	httpsURL := toScheme(feedURL, "https")
	body, err := d.fetchWithBreaker(ctx, httpsURL)
	if err == nil {
		feed, parseErr := parser.ParseString(string(body))
		if parseErr == nil {
			return feed, false, nil
		}
		err = parseErr
	}

	httpURL := toScheme(feedURL, "http")
	if httpURL == httpsURL {
		return nil, false, err
	}

	body, retryErr := d.fetchWithBreaker(ctx, httpURL)
	if retryErr != nil {
		return nil, true, retryErr
	}
	feed, parseErr := parser.ParseString(string(body))
	if parseErr != nil {
		return nil, true, parseErr
	}
	return feed, true, nil
}

func (d *Downloader) fetchWithBreaker(ctx context.Context, url string) ([]byte, error) {
	result, err := d.breaker.Execute(func() (interface{}, error) {
		var body []byte
		retryErr := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
			b, fetchErr := d.fetcher.Get(ctx, url, MaxFeedBytes, false)
			if fetchErr != nil {
				return fetchErr
			}
			body = b
			return nil
		})
		return body, retryErr
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func toScheme(rawURL, scheme string) string {
	if strings.HasPrefix(rawURL, "https://") {
		if scheme == "https" {
			return rawURL
		}
		return "http://" + strings.TrimPrefix(rawURL, "https://")
	}
	if strings.HasPrefix(rawURL, "http://") {
		if scheme == "http" {
			return rawURL
		}
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return scheme + "://" + rawURL
}
