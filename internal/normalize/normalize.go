// Package normalize turns a raw feed entry plus its owning publisher
// record into a NormalizedItem, applying the fixed chain of checks that
// decide whether the item survives at all.
package normalize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"

	"feedagg/internal/domain"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/unshorten"
)

// Normalizer applies the per-item check chain to raw feed entries.
type Normalizer struct {
	resolver *unshorten.Resolver
	logger   *slog.Logger
}

// New builds a Normalizer.
func New(resolver *unshorten.Resolver, logger *slog.Logger) *Normalizer {
	return &Normalizer{resolver: resolver, logger: logger}
}

// Normalize runs the full check chain for one raw item against its
// owning publisher. It returns (item, true) on success or (zero, false)
// if any check drops the item; every drop is silent at the data level
// but recorded against the responsible gate in metrics.
func (n *Normalizer) Normalize(ctx context.Context, raw domain.RawItem, pub domain.PublisherRecord) (domain.NormalizedItem, bool) {
	// 1. Timestamp.
	tsValue := raw.Updated
	if tsValue == "" {
		tsValue = raw.Published
	}
	ts, ok := ParseTimestamp(tsValue)
	if !ok {
		metrics.RecordItemDropped("timestamp")
		return domain.NormalizedItem{}, false
	}

	// 2. Link.
	link := raw.Link
	if link == "" {
		link = raw.URL
	}
	if link == "" {
		metrics.RecordItemDropped("link")
		return domain.NormalizedItem{}, false
	}

	// 3. Domain gate.
	if !hostAllowed(link, pub.DestinationDomains) {
		metrics.RecordItemDropped("domain")
		return domain.NormalizedItem{}, false
	}

	// 4. Profanity gate.
	if ContainsProfanity(raw.Title) {
		metrics.RecordItemDropped("profanity")
		return domain.NormalizedItem{}, false
	}

	// 5. Unshorten.
	resolved, err := n.resolver.Resolve(ctx, link)
	if err != nil {
		metrics.RecordItemDropped("unshorten")
		return domain.NormalizedItem{}, false
	}

	// 6. Image discovery.
	img := discoverImage(raw)

	// 7. Title.
	title := StripHTML(raw.Title)
	if title == "" {
		metrics.RecordItemDropped("title")
		return domain.NormalizedItem{}, false
	}

	// 8. Description.
	description := TruncateRunes(StripHTML(raw.Description), 500)

	item := domain.NormalizedItem{
		PublisherID:        pub.PublisherID,
		PublisherName:      pub.PublisherName,
		CreativeInstanceID: pub.CreativeInstanceID,
		Category:           pub.Category,
		ContentType:        pub.ContentType,
		Title:              title,
		Description:        description,
		URL:                resolved,
		URLHash:            hashURL(resolved),
		PublishTime:        ts.Format("2006-01-02T15:04:05Z"),
		Img:                img,
	}
	item.SetPublishTimeUnix(ts.Unix())

	// 9. Content-type specifics.
	switch pub.ContentType {
	case "audio":
		item.Enclosures = raw.Enclosures
	case "product":
		item.OffersCategory = raw.Category
	}

	// 10. Publisher filter_images.
	if pub.FilterImages {
		item.Img = ""
	}

	return item, true
}

func hostAllowed(rawURL string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domainName := range allowed {
		if strings.EqualFold(host, domainName) {
			return true
		}
	}
	return false
}

func hashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
