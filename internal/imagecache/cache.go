// Package imagecache implements the content-addressed thumbnail cache:
// given a source image URL, it returns the cache filename to embed in
// the published feed, fetching, sandboxed-resizing, and uploading the
// thumbnail the first time that URL is seen.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"feedagg/internal/httpfetch"
	"feedagg/internal/observability/metrics"
	"feedagg/internal/objectstore"
	"feedagg/internal/resilience/circuitbreaker"
	"feedagg/internal/resilience/retry"
	"feedagg/internal/thumbnail"
)

// MaxSourceBytes bounds how large a source image the cache will
// download before giving up.
const MaxSourceBytes = 5 * 1024 * 1024

// remoteCachePrefix is the object-store key prefix cached thumbnails
// are stored and probed under.
const remoteCachePrefix = "brave-today/cache/"

// Cache resolves source image URLs to cached, resized thumbnail
// filenames, keeping a local directory and a remote object store in
// sync.
type Cache struct {
	localDir string
	fetcher  *httpfetch.Fetcher
	breaker  *circuitbreaker.CircuitBreaker
	sandbox  *thumbnail.Sandbox
	store    *objectstore.Store
	logger   *slog.Logger
}

// New builds a Cache rooted at localDir (typically ./feed/cache).
func New(localDir string, fetcher *httpfetch.Fetcher, sandbox *thumbnail.Sandbox, store *objectstore.Store, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}
	return &Cache{
		localDir: localDir,
		fetcher:  fetcher,
		breaker:  circuitbreaker.New(circuitbreaker.ImageFetchConfig()),
		sandbox:  sandbox,
		store:    store,
		logger:   logger,
	}, nil
}

// FilenameFor returns the content-addressed cache filename for a source
// URL without touching the filesystem or network.
func FilenameFor(srcURL string) string {
	sum := sha256.Sum256([]byte(srcURL))
	return hex.EncodeToString(sum[:]) + ".jpg"
}

// CacheImage implements the L4 contract: it returns the cache filename
// to reference in the published feed, or "" if the image could not be
// produced this run (the caller should drop the image reference, not
// the item).
func (c *Cache) CacheImage(ctx context.Context, srcURL string) string {
	cacheFn := FilenameFor(srcURL)
	localPath := filepath.Join(c.localDir, cacheFn)
	remoteKey := remoteCachePrefix + cacheFn + ".pad"

	if _, err := os.Stat(localPath + ".pad"); err == nil {
		metrics.RecordImageCacheOutcome("local_hit")
		return cacheFn
	}

	present, err := c.store.Exists(ctx, c.store.PrivateBucket(), remoteKey)
	if err != nil {
		c.logger.Warn("image cache: object store probe failed, will retry next run",
			slog.String("url", srcURL), slog.Any("error", err))
		metrics.RecordImageCacheOutcome("probe_error")
		return ""
	}
	if present {
		metrics.RecordImageCacheOutcome("remote_hit")
		return cacheFn
	}

	data, err := c.fetchSource(ctx, srcURL)
	if err != nil {
		metrics.RecordImageCacheOutcome("fetch_failed")
		return ""
	}

	ok, err := c.sandbox.ResizeAndPad(ctx, data, thumbnail.DefaultWidth, thumbnail.DefaultHeight, thumbnail.DefaultOutSize, localPath)
	if err != nil {
		c.logger.Warn("image cache: sandbox invocation error", slog.String("url", srcURL), slog.Any("error", err))
		metrics.RecordImageCacheOutcome("sandbox_error")
		return ""
	}
	if !ok {
		metrics.RecordImageCacheOutcome("decode_failed")
		return ""
	}

	padBytes, err := os.ReadFile(localPath + ".pad")
	if err != nil {
		c.logger.Warn("image cache: read pad artifact failed", slog.String("url", srcURL), slog.Any("error", err))
		metrics.RecordImageCacheOutcome("read_failed")
		return ""
	}

	if err := c.store.Upload(ctx, c.store.PrivateBucket(), remoteKey, padBytes, "image/jpeg"); err != nil {
		c.logger.Warn("image cache: upload failed", slog.String("url", srcURL), slog.Any("error", err))
		metrics.RecordImageCacheOutcome("upload_failed")
		return ""
	}

	metrics.RecordImageCacheOutcome("generated")
	return cacheFn
}

func (c *Cache) fetchSource(ctx context.Context, srcURL string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var data []byte
		err := retry.WithBackoff(ctx, retry.ImageFetchConfig(), func() error {
			body, fetchErr := c.fetcher.Get(ctx, srcURL, MaxSourceBytes, true)
			if fetchErr != nil {
				var httpErr *retry.HTTPError
				if errors.As(fetchErr, &httpErr) && retry.SuppressedStatus(httpErr.StatusCode) {
					c.logger.Debug("image cache: suppressed source status",
						slog.String("url", srcURL), slog.Int("status", httpErr.StatusCode))
					return fetchErr
				}
				c.logger.Warn("image cache: source fetch failed", slog.String("url", srcURL), slog.Any("error", fetchErr))
				return fetchErr
			}
			data = body
			return nil
		})
		return data, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
