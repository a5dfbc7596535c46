// Package aggregate implements the cross-feed aggregation stage (L7):
// sort, dedup, freshness filtering, image verification and caching,
// HTML scrubbing, and variety-aware recency scoring, in that fixed
// order.
package aggregate

import (
	"context"
	"html"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"feedagg/internal/domain"
	"feedagg/internal/htmlscrub"
	"feedagg/internal/httpfetch"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/resilience/circuitbreaker"
)

// FreshnessWindow is the [now-60d, now] range non-product items' publish
// times must fall within to survive aggregation.
const FreshnessWindow = 60 * 24 * time.Hour

// outputTimeFormat is the final serialized publish_time layout.
const outputTimeFormat = "2006-01-02 15:04:05"

// remoteCachePathPrefix mirrors imagecache's object-store key prefix,
// used to build the public CDN URL for a cached thumbnail.
const remoteCachePathPrefix = "brave-today/cache/"

// imageHeadTimeout bounds the image HEAD verification call, matching
// the component design's 5-second HEAD/meta budget (distinct from the
// fetcher's 10-second GET timeout used for feed and image-body fetches).
const imageHeadTimeout = 5 * time.Second

// imageCache is the subset of *imagecache.Cache the aggregator needs:
// resolve a source image URL to a cached thumbnail filename, or "" if
// it could not be produced this run.
type imageCache interface {
	CacheImage(ctx context.Context, srcURL string) string
}

// imageDiscoverer is the subset of *ogdiscovery.Finder the aggregator
// needs.
type imageDiscoverer interface {
	Discover(ctx context.Context, pageURL string) (string, bool)
}

// Aggregator runs the L7 pipeline stage over a run's full set of
// normalized items.
type Aggregator struct {
	fetcher     *httpfetch.Fetcher
	breaker     *circuitbreaker.CircuitBreaker
	cache       imageCache
	ogFinder    imageDiscoverer
	pcdnURLBase string
	concurrency int
	logger      *slog.Logger
}

// New builds an Aggregator. pcdnURLBase is prefixed onto cached
// thumbnail filenames to build the public img/padded_img URLs.
func New(fetcher *httpfetch.Fetcher, cache imageCache, finder imageDiscoverer, pcdnURLBase string, concurrency int, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		fetcher:     fetcher,
		breaker:     circuitbreaker.New(circuitbreaker.ImageFetchConfig()),
		cache:       cache,
		ogFinder:    finder,
		pcdnURLBase: strings.TrimSuffix(pcdnURLBase, "/"),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Aggregate runs the full L7 pipeline and returns the final, ordered
// output set. publishers is keyed by publisher_id, used to look up the
// og_images fallback flag per item.
func (a *Aggregator) Aggregate(ctx context.Context, items []domain.NormalizedItem, publishers map[string]domain.PublisherRecord, now time.Time) []domain.NormalizedItem {
	sortByPublishTime(items)
	items = a.dedupAndFreshness(items, now)
	a.verifyAndCacheImages(ctx, items, publishers)
	scrubItems(items)
	scoreItems(items, now)
	return items
}

// sortByPublishTime sorts items strictly descending by publish time.
func sortByPublishTime(items []domain.NormalizedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishTimeUnix() > items[j].PublishTimeUnix()
	})
}

// dedupAndFreshness drops future-dated and stale non-product items,
// then removes duplicate URLs (first occurrence, in descending-time
// order, wins). It also canonicalizes each surviving item's URL
// (percent-encoding its path) and reformats publish_time.
func (a *Aggregator) dedupAndFreshness(items []domain.NormalizedItem, now time.Time) []domain.NormalizedItem {
	windowStart := now.Add(-FreshnessWindow)
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.NormalizedItem, 0, len(items))

	for _, item := range items {
		if item.ContentType != "product" {
			publishTime := time.Unix(item.PublishTimeUnix(), 0).UTC()
			if publishTime.After(now) || publishTime.Before(windowStart) {
				metrics.RecordStale()
				continue
			}
		}

		canonical := canonicalizeURL(item.URL)
		if _, dup := seen[canonical]; dup {
			metrics.RecordDedup()
			continue
		}
		seen[canonical] = struct{}{}

		item.URL = canonical
		item.PublishTime = time.Unix(item.PublishTimeUnix(), 0).UTC().Format(outputTimeFormat)
		item.Title = html.UnescapeString(item.Title)
		out = append(out, item)
	}
	return out
}

// canonicalizeURL percent-encodes rawURL's path component, producing
// the dedup key and the URL the output item publishes. Unparseable URLs
// are returned unchanged.
func canonicalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.RawPath = ""
	return parsed.String()
}

// verifyAndCacheImages HEAD-verifies every surviving item's image,
// falls back to OpenGraph/meta discovery when appropriate, and caches
// the result through L4, bounded by the configured concurrency.
func (a *Aggregator) verifyAndCacheImages(ctx context.Context, items []domain.NormalizedItem, publishers map[string]domain.PublisherRecord) {
	sem := make(chan struct{}, a.concurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range items {
		i := i
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			// Each goroutine owns a distinct index, so concurrent
			// writes to items never touch the same element.
			pub := publishers[items[i].PublisherID]
			a.resolveImage(egCtx, &items[i], pub)
			return nil
		})
	}
	_ = eg.Wait()
}

// resolveImage implements L7 step 3 for a single item: HEAD-verify,
// og/meta fallback, then cache-and-publish through L4.
func (a *Aggregator) resolveImage(ctx context.Context, item *domain.NormalizedItem, pub domain.PublisherRecord) {
	wasEmpty := item.Img == ""
	cleared := false

	if item.Img != "" {
		verifyURL := item.Img
		if !strings.Contains(verifyURL, "://") {
			verifyURL = "http://" + verifyURL
		}

		headCtx, cancel := context.WithTimeout(ctx, imageHeadTimeout)
		result, err := a.breaker.Execute(func() (interface{}, error) {
			return a.fetcher.Head(headCtx, verifyURL)
		})
		cancel()

		status, _ := result.(int)
		if err != nil || status != http.StatusOK {
			item.Img = ""
			cleared = true
			metrics.RecordImageVerify("cleared")
		} else {
			metrics.RecordImageVerify("ok")
		}
	}

	if (cleared && pub.OGImages) || wasEmpty {
		if discovered, ok := a.ogFinder.Discover(ctx, item.URL); ok {
			item.Img = discovered
		}
	}

	if item.Img == "" {
		item.PaddedImg = ""
		return
	}

	cacheFn := a.cache.CacheImage(ctx, item.Img)
	if cacheFn == "" {
		item.Img = ""
		item.PaddedImg = ""
		return
	}

	item.Img = a.pcdnURLBase + "/" + remoteCachePathPrefix + cacheFn
	item.PaddedImg = item.Img + ".pad"
}

// scrubItems sanitizes every string field with the HTML allowlist
// scrubber.
func scrubItems(items []domain.NormalizedItem) {
	for i := range items {
		it := &items[i]
		it.PublisherID = htmlscrub.Scrub(it.PublisherID)
		it.PublisherName = htmlscrub.Scrub(it.PublisherName)
		it.CreativeInstanceID = htmlscrub.Scrub(it.CreativeInstanceID)
		it.Category = htmlscrub.Scrub(it.Category)
		it.ContentType = htmlscrub.Scrub(it.ContentType)
		it.Title = htmlscrub.Scrub(it.Title)
		it.Description = htmlscrub.Scrub(it.Description)
		it.URL = htmlscrub.Scrub(it.URL)
		it.URLHash = htmlscrub.Scrub(it.URLHash)
		it.PublishTime = htmlscrub.Scrub(it.PublishTime)
		it.Img = htmlscrub.Scrub(it.Img)
		it.PaddedImg = htmlscrub.Scrub(it.PaddedImg)
		it.OffersCategory = htmlscrub.Scrub(it.OffersCategory)
	}
}

// scoreItems assigns each item a recency*variety score, traversing the
// already-sorted list in order and tracking a per-publisher variety
// multiplier that doubles for every item kept from that publisher.
func scoreItems(items []domain.NormalizedItem, now time.Time) {
	lastVariety := make(map[string]float64)
	for i := range items {
		item := &items[i]
		secondsAgo := now.Sub(time.Unix(item.PublishTimeUnix(), 0).UTC()).Seconds()
		recency := math.Log(secondsAgo)

		variety, ok := lastVariety[item.PublisherID]
		if !ok {
			variety = 1.0
		}
		variety *= 2.0

		item.Score = recency * variety
		lastVariety[item.PublisherID] = variety
	}
}
