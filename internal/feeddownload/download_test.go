package feeddownload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"feedagg/internal/domain"
	"feedagg/internal/httpfetch"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>One</title><link>https://example.test/1</link></item>
<item><title>Two</title><link>https://example.test/2</link></item>
</channel></rss>`

const emptyRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Empty Feed</title></channel></rss>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDownload_SuccessfulFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	d := New(httpfetch.New(2*time.Second, 1000, 10), 4, discardLogger())
	items, report := d.Download(context.Background(), []domain.PublisherRecord{
		{FeedURL: srv.URL, PublisherID: "pub-1"},
	})

	assert.Len(t, items[srv.URL], 2)
	assert.Equal(t, 2, report.FeedStats[srv.URL].SizeAfterGet)
}

func TestDownload_EmptyFeedIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyRSS))
	}))
	defer srv.Close()

	d := New(httpfetch.New(2*time.Second, 1000, 10), 4, discardLogger())
	items, report := d.Download(context.Background(), []domain.PublisherRecord{
		{FeedURL: srv.URL, PublisherID: "pub-1"},
	})

	assert.Empty(t, items)
	assert.Empty(t, report.FeedStats)
}

func TestDownload_FailedFetchIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := New(httpfetch.New(2*time.Second, 1000, 10), 4, discardLogger())
	items, report := d.Download(context.Background(), []domain.PublisherRecord{
		{FeedURL: srv.URL, PublisherID: "pub-1"},
	})

	assert.Empty(t, items)
	assert.Empty(t, report.FeedStats)
}

func TestDownload_MultiplePublishersBoundedParallelism(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	publishers := make([]domain.PublisherRecord, 0, 20)
	for i := 0; i < 20; i++ {
		publishers = append(publishers, domain.PublisherRecord{FeedURL: srv.URL, PublisherID: "pub"})
	}

	d := New(httpfetch.New(2*time.Second, 10000, 50), 5, discardLogger())
	items, report := d.Download(context.Background(), publishers)

	assert.Len(t, items[srv.URL], 2)
	assert.Len(t, report.FeedStats, 1)
}

func TestToScheme(t *testing.T) {
	assert.Equal(t, "http://example.test/feed", toScheme("https://example.test/feed", "http"))
	assert.Equal(t, "https://example.test/feed", toScheme("http://example.test/feed", "https"))
	assert.Equal(t, "https://example.test/feed", toScheme("https://example.test/feed", "https"))
}
