// Package registry loads and serializes the publisher registry: the
// operator-maintained CSV source of truth and the JSON artifacts derived
// from it that the pipeline actually reads at run time.
package registry

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"feedagg/internal/domain"
	"feedagg/internal/output"
)

// defaultMaxEntries is applied to every publisher: max_entries is not a
// CSV column, so every feed is capped identically.
const defaultMaxEntries = 20

// csvColumns documents the fixed column order LoadCSV expects, after the
// header row.
var csvColumns = []string{
	"publisher_domain", "feed_url", "publisher_name", "category",
	"default_enabled", "score", "og_images", "content_type",
	"creative_instance_id", "destination_domains",
}

// CanonicalFeedURL forces a feed URL to https, matching the pipeline's
// convention that every registered feed is addressed securely regardless
// of how the operator entered it in the CSV.
func CanonicalFeedURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// PublisherID derives a stable publisher identifier from its canonical
// feed URL.
func PublisherID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}

// LoadCSV parses the operator-maintained registry CSV, skipping its
// header row, and returns both a publisher_id-keyed map for run-time
// lookups and a stable, name-sorted slice for deterministic JSON
// serialization.
func LoadCSV(r io.Reader) (map[string]domain.PublisherRecord, []domain.PublisherRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read registry csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("read registry csv: no rows")
	}

	byID := make(map[string]domain.PublisherRecord)
	var sorted []domain.PublisherRecord

	for i, row := range rows[1:] {
		pub, err := parseRow(row)
		if err != nil {
			return nil, nil, fmt.Errorf("registry csv row %d: %w", i+2, err)
		}
		byID[pub.PublisherID] = pub
		sorted = append(sorted, pub)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PublisherName < sorted[j].PublisherName
	})

	return byID, sorted, nil
}

func parseRow(row []string) (domain.PublisherRecord, error) {
	publisherDomain := strings.TrimSpace(row[0])
	feedURL := CanonicalFeedURL(strings.TrimSpace(row[1]))
	publisherName := strings.TrimSpace(row[2])
	category := strings.TrimSpace(row[3])
	enabled := strings.EqualFold(strings.TrimSpace(row[4]), "Enabled")
	ogImages := strings.EqualFold(strings.TrimSpace(row[6]), "On")

	contentType := strings.TrimSpace(row[7])
	if contentType == "" {
		contentType = "article"
	}

	creativeInstanceID := strings.TrimSpace(row[8])

	var destinationDomains []string
	for _, d := range strings.Split(row[9], ";") {
		d = strings.TrimSpace(d)
		if d != "" {
			destinationDomains = append(destinationDomains, d)
		}
	}
	if len(destinationDomains) == 0 {
		if parsed, err := url.Parse(feedURL); err == nil && parsed.Hostname() != "" {
			destinationDomains = []string{parsed.Hostname()}
		}
	}

	return domain.PublisherRecord{
		PublisherID:        PublisherID(feedURL),
		PublisherName:      publisherName,
		PublisherDomain:    publisherDomain,
		Category:           category,
		FeedURL:            feedURL,
		ContentType:        contentType,
		MaxEntries:         defaultMaxEntries,
		OGImages:           ogImages,
		Enabled:            enabled,
		CreativeInstanceID: creativeInstanceID,
		DestinationDomains: destinationDomains,
	}, nil
}

// LoadFeedJSON reads a previously-written registry JSON artifact.
func LoadFeedJSON(r io.Reader) ([]domain.PublisherRecord, error) {
	var out []domain.PublisherRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode registry json: %w", err)
	}
	return out, nil
}

// WriteFeedJSON atomically writes the enabled-only publisher list the
// aggregator reads at run time.
func WriteFeedJSON(path string, publishers []domain.PublisherRecord) error {
	enabled := make([]domain.PublisherRecord, 0, len(publishers))
	for _, p := range publishers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return output.WriteJSON(path, enabled)
}

// sourcesEntry is the shape of the sources directory artifact
// (cmd/registryloader writes it to sources_directory.json): a stable,
// lightweight directory of every publisher (enabled or not) and its
// destination domains, consumed by operator tooling rather than the
// aggregation run itself.
type sourcesEntry struct {
	PublisherID        string   `json:"publisher_id"`
	PublisherName      string   `json:"publisher_name"`
	Category           string   `json:"category"`
	Enabled            bool     `json:"enabled"`
	DestinationDomains []string `json:"destination_domains"`
}

// WriteSourcesJSON atomically writes the full publisher directory,
// including disabled entries, for operator-facing tooling.
func WriteSourcesJSON(path string, publishers []domain.PublisherRecord) error {
	entries := make([]sourcesEntry, 0, len(publishers))
	for _, p := range publishers {
		entries = append(entries, sourcesEntry{
			PublisherID:        p.PublisherID,
			PublisherName:      p.PublisherName,
			Category:           p.Category,
			Enabled:            p.Enabled,
			DestinationDomains: p.DestinationDomains,
		})
	}
	return output.WriteJSON(path, entries)
}
