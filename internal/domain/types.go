// Package domain holds the data types shared across every stage of the
// feed aggregation pipeline: the publisher registry, the raw and
// normalized item shapes, and the per-run report.
package domain

// PublisherRecord describes one registered feed source. It is loaded
// once per run from the registry JSON and treated as immutable for the
// duration of that run.
type PublisherRecord struct {
	PublisherID        string   `json:"publisher_id"`
	PublisherName      string   `json:"publisher_name"`
	PublisherDomain    string   `json:"publisher_domain"`
	Category           string   `json:"category"`
	FeedURL            string   `json:"feed_url"`
	ContentType        string   `json:"content_type"`
	MaxEntries         int      `json:"max_entries"`
	OGImages           bool     `json:"og_images"`
	Enabled            bool     `json:"default"`
	CreativeInstanceID string   `json:"creative_instance_id"`
	DestinationDomains []string `json:"destination_domains"`
	FilterImages       bool     `json:"filter_images,omitempty"`
}

// FeedReportEntry is the per-feed portion of the run report:
// size_after_get is every raw entry observed (post max_entries
// truncation); size_after_insert is every entry that reached the
// "normalized" state, counted before dedup/freshness filtering.
type FeedReportEntry struct {
	SizeAfterGet    int `json:"size_after_get"`
	SizeAfterInsert int `json:"size_after_insert"`
}

// RunReport is the sidecar JSON document written alongside the output
// feed, one entry per feed that produced at least one raw item.
type RunReport struct {
	FeedStats map[string]FeedReportEntry `json:"feed_stats"`
}

// Valid reports whether every feed entry in r obeys the report
// invariant: 0 < size_after_insert <= size_after_get.
func (r RunReport) Valid() bool {
	for _, entry := range r.FeedStats {
		if entry.SizeAfterGet <= 0 {
			return false
		}
		if entry.SizeAfterInsert <= 0 {
			return false
		}
		if entry.SizeAfterInsert > entry.SizeAfterGet {
			return false
		}
	}
	return true
}

// RawItem is the parser's opaque per-entry bag, populated from a
// gofeed.Item. Fields not present in the source feed are left zero.
type RawItem struct {
	Title          string
	Link           string
	URL            string
	Updated        string
	Published      string
	Summary        string
	Content        string
	ContentIsHTML  bool
	URLToImage     string
	Image          string
	Category       string
	Description    string
	MediaThumbnail string
	MediaContent   string
	Enclosures     []Enclosure
}

// Enclosure mirrors an RSS <enclosure> element, used for audio content.
type Enclosure struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Length string `json:"length,omitempty"`
}

// NormalizedItem is the output record emitted for every item that
// survives normalization, dedup, freshness filtering, image caching,
// and scoring.
type NormalizedItem struct {
	PublisherID        string      `json:"publisher_id"`
	PublisherName      string      `json:"publisher_name"`
	CreativeInstanceID string      `json:"creative_instance_id"`
	Category           string      `json:"category"`
	ContentType        string      `json:"content_type"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	URL                string      `json:"url"`
	URLHash            string      `json:"url_hash"`
	PublishTime        string      `json:"publish_time"`
	Img                string      `json:"img,omitempty"`
	PaddedImg          string      `json:"padded_img"`
	Score              float64     `json:"score"`
	Enclosures         []Enclosure `json:"enclosures,omitempty"`
	OffersCategory     string      `json:"offers_category,omitempty"`

	// publishTimeUnix is retained internally for sorting, freshness, and
	// scoring; it is not serialized.
	publishTimeUnix int64 `json:"-"`
}

// SetPublishTimeUnix and PublishTimeUnix give the aggregator a sortable
// timestamp without re-parsing PublishTime on every comparison.
func (n *NormalizedItem) SetPublishTimeUnix(unix int64) { n.publishTimeUnix = unix }
func (n *NormalizedItem) PublishTimeUnix() int64        { return n.publishTimeUnix }
