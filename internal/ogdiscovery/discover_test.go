package ogdiscovery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedagg/internal/httpfetch"
)

func newTestFetcher() *httpfetch.Fetcher {
	return httpfetch.New(5*time.Second, 100, 10)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscover_OGImageWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:image" content="https://cdn.example.test/og.jpg"></head><body></body></html>`))
	}))
	defer srv.Close()

	f := New(newTestFetcher(), discardLogger())
	src, ok := f.Discover(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.test/og.jpg", src)
}

func TestDiscover_PageImageBeforeMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta name="image" content="https://cdn.example.test/meta.jpg"></head><body><img src="https://cdn.example.test/page.jpg"></body></html>`))
	}))
	defer srv.Close()

	f := New(newTestFetcher(), discardLogger())
	src, ok := f.Discover(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.test/page.jpg", src)
}

func TestDiscover_NoneFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head><body>no images here</body></html>`))
	}))
	defer srv.Close()

	f := New(newTestFetcher(), discardLogger())
	_, ok := f.Discover(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestDiscover_SuppressedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(newTestFetcher(), discardLogger())
	_, ok := f.Discover(context.Background(), srv.URL)
	assert.False(t, ok)
}
