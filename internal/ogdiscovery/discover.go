// Package ogdiscovery implements the aggregator's fallback image
// discovery: when an item arrives with no usable image, or its image
// was cleared by HEAD verification, this package fetches the item's
// article page and tries a fixed chain of heuristics — first `<img>`
// in the page, a `<meta name="image">`/Twitter meta tag, an OpenGraph
// `og:image` tag, then a Dublin Core `DC.image` tag — to find a
// replacement, exactly the order the aggregator's component design
// specifies: page, meta, og, dc.
package ogdiscovery

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"feedagg/internal/httpfetch"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/resilience/circuitbreaker"
	"feedagg/internal/resilience/retry"
)

// maxPageBytes caps the size of the candidate page. The page is not
// truncated at the cap: a page larger than this fails the fetch, and
// discovery finds nothing for it.
const maxPageBytes = 256 * 1024

// timeout is the fixed 5-second budget for the whole discovery attempt.
const timeout = 5 * time.Second

// Finder fetches a page and runs the page/meta/og/dc discovery chain
// against it.
type Finder struct {
	fetcher *httpfetch.Fetcher
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// New builds a Finder.
func New(fetcher *httpfetch.Fetcher, logger *slog.Logger) *Finder {
	return &Finder{
		fetcher: fetcher,
		breaker: circuitbreaker.New(circuitbreaker.MetaFetchConfig()),
		logger:  logger,
	}
}

// Discover fetches pageURL and returns the first image URL found by the
// page -> meta -> og -> dc chain. It returns ("", false) on any error or
// when nothing is found; HTTP errors with a suppressed status are
// swallowed without logging, everything else is logged at warn level.
func (f *Finder) Discover(ctx context.Context, pageURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetcher.Get(ctx, pageURL, maxPageBytes, true)
	})
	if err != nil {
		var httpErr *retry.HTTPError
		if errors.As(err, &httpErr) && retry.SuppressedStatus(httpErr.StatusCode) {
			metrics.RecordOGDiscovery("suppressed")
			return "", false
		}
		f.logger.Warn("og discovery: fetch failed", slog.String("url", pageURL), slog.Any("error", err))
		metrics.RecordOGDiscovery("none")
		return "", false
	}
	body := result.([]byte)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.logger.Warn("og discovery: unparseable page", slog.String("url", pageURL), slog.Any("error", err))
		metrics.RecordOGDiscovery("none")
		return "", false
	}

	if src := pageImage(doc); src != "" {
		metrics.RecordOGDiscovery("page")
		return src, true
	}

	metaTags := metaContentByName(doc)

	if src := metaTags["image"]; src != "" {
		metrics.RecordOGDiscovery("meta")
		return src, true
	}
	if src := metaTags["twitter:image"]; src != "" {
		metrics.RecordOGDiscovery("meta")
		return src, true
	}

	if src := ogImage(body); src != "" {
		metrics.RecordOGDiscovery("og")
		return src, true
	}

	if src := metaTags["dc.image"]; src != "" {
		metrics.RecordOGDiscovery("dc")
		return src, true
	}

	metrics.RecordOGDiscovery("none")
	return "", false
}

// pageImage returns the src of the first <img> in the document.
func pageImage(doc *goquery.Document) string {
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// metaContentByName indexes every <meta name="..."> tag's content by its
// lowercased name, so "DC.image", "dc.Image", etc. all resolve the same
// way.
func metaContentByName(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			return
		}
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		out[strings.ToLower(name)] = content
	})
	return out
}

// ogImage parses body for an OpenGraph og:image tag.
func ogImage(body []byte) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err != nil {
		return ""
	}
	if len(og.Images) == 0 {
		return ""
	}
	return og.Images[0].URL
}
