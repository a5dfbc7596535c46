package normalize

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedagg/internal/domain"
	"feedagg/internal/unshorten"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPublisher(domains []string) domain.PublisherRecord {
	return domain.PublisherRecord{
		PublisherID:        "pub-1",
		PublisherName:      "Test Publisher",
		CreativeInstanceID: "creative-1",
		Category:           "Tech",
		ContentType:        "article",
		DestinationDomains: domains,
	}
}

func TestNormalize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw := domain.RawItem{
		Title:     "A great headline",
		Link:      srv.URL,
		Published: "2024-01-02T15:04:05Z",
		Summary:   "<p>some summary</p>",
		Image:     "https://img.example.test/a.jpg",
	}

	n := New(unshorten.New(), discardLogger())
	item, ok := n.Normalize(context.Background(), raw, testPublisher([]string{extractHost(t, srv.URL)}))
	require.True(t, ok)
	assert.Equal(t, "A great headline", item.Title)
	assert.Equal(t, "pub-1", item.PublisherID)
	assert.Equal(t, "https://img.example.test/a.jpg", item.Img)
	assert.NotEmpty(t, item.URLHash)
}

func TestNormalize_MissingTimestampDrops(t *testing.T) {
	raw := domain.RawItem{Title: "Headline", Link: "https://example.test/a"}
	n := New(unshorten.New(), discardLogger())
	_, ok := n.Normalize(context.Background(), raw, testPublisher([]string{"example.test"}))
	assert.False(t, ok)
}

func TestNormalize_MissingLinkDrops(t *testing.T) {
	raw := domain.RawItem{Title: "Headline", Published: "2024-01-02T15:04:05Z"}
	n := New(unshorten.New(), discardLogger())
	_, ok := n.Normalize(context.Background(), raw, testPublisher([]string{"example.test"}))
	assert.False(t, ok)
}

func TestNormalize_DomainGateDrops(t *testing.T) {
	raw := domain.RawItem{
		Title:     "Headline",
		Link:      "https://other.test/a",
		Published: "2024-01-02T15:04:05Z",
	}
	n := New(unshorten.New(), discardLogger())
	_, ok := n.Normalize(context.Background(), raw, testPublisher([]string{"example.test"}))
	assert.False(t, ok)
}

func TestNormalize_ProfanityGateDrops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw := domain.RawItem{
		Title:     "This is such bullshit",
		Link:      srv.URL,
		Published: "2024-01-02T15:04:05Z",
	}
	n := New(unshorten.New(), discardLogger())
	_, ok := n.Normalize(context.Background(), raw, testPublisher([]string{extractHost(t, srv.URL)}))
	assert.False(t, ok)
}

func TestNormalize_FilterImagesForcesEmptyImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw := domain.RawItem{
		Title:     "Headline",
		Link:      srv.URL,
		Published: "2024-01-02T15:04:05Z",
		Image:     "https://img.example.test/a.jpg",
	}
	pub := testPublisher([]string{extractHost(t, srv.URL)})
	pub.FilterImages = true

	n := New(unshorten.New(), discardLogger())
	item, ok := n.Normalize(context.Background(), raw, pub)
	require.True(t, ok)
	assert.Empty(t, item.Img)
}

func TestNormalize_AudioContentTypeCopiesEnclosures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw := domain.RawItem{
		Title:      "Headline",
		Link:       srv.URL,
		Published:  "2024-01-02T15:04:05Z",
		Enclosures: []domain.Enclosure{{URL: "https://cdn.example.test/a.mp3", Type: "audio/mpeg"}},
	}
	pub := testPublisher([]string{extractHost(t, srv.URL)})
	pub.ContentType = "audio"

	n := New(unshorten.New(), discardLogger())
	item, ok := n.Normalize(context.Background(), raw, pub)
	require.True(t, ok)
	require.Len(t, item.Enclosures, 1)
	assert.Equal(t, "https://cdn.example.test/a.mp3", item.Enclosures[0].URL)
}

func TestNormalizeFeed_DropsBadItemsKeepsGood(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raws := []domain.RawItem{
		{Title: "Good one", Link: srv.URL, Published: "2024-01-02T15:04:05Z"},
		{Title: "", Link: srv.URL, Published: "2024-01-02T15:04:05Z"},
		{Title: "No timestamp", Link: srv.URL},
	}

	n := New(unshorten.New(), discardLogger())
	out := n.NormalizeFeed(context.Background(), raws, testPublisher([]string{extractHost(t, srv.URL)}), 4)
	require.Len(t, out, 1)
	assert.Equal(t, "Good one", out[0].Title)
}

func extractHost(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Hostname()
}
