// Package httpfetch is the bounded HTTP fetcher shared by every stage
// that reaches across the network: feed download, image verification,
// thumbnail source fetch, and meta/OpenGraph discovery.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"feedagg/internal/resilience/retry"
)

// Fetcher wraps an *http.Client with the size and time bounds the
// pipeline's component contracts require, plus a per-host politeness
// rate limiter.
type Fetcher struct {
	client   *http.Client
	noRedir  *http.Client
	limiters *hostLimiters
}

// New builds a Fetcher. requestsPerSecond/burst configure the shared
// per-host token bucket (golang.org/x/time/rate), following the
// teacher's notifier rate limiter pattern adapted to per-host keys.
func New(timeout time.Duration, requestsPerSecond float64, burst int) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		noRedir: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiters: newHostLimiters(requestsPerSecond, burst),
	}
}

// Get streams a GET response, rejecting non-200 responses, a declared
// Content-Length over maxBytes, and aborting mid-stream once the
// accumulated body exceeds maxBytes. followRedirects controls whether
// the underlying client follows redirects (feed fetches must not;
// image fetches may).
func (f *Fetcher) Get(ctx context.Context, url string, maxBytes int64, followRedirects bool) ([]byte, error) {
	if err := f.limiters.wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := f.client
	if !followRedirects {
		client = f.noRedir
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	if resp.ContentLength > 0 && resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%s: declared content-length %d exceeds cap %d", url, resp.ContentLength, maxBytes)
	}

	limited := io.LimitReader(resp.Body, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%s: body exceeded cap %d bytes", url, maxBytes)
	}
	return body, nil
}

// Head issues a redirect-following HEAD request and returns the final
// status code, used by image verification to decide whether a
// candidate image URL is still reachable.
func (f *Fetcher) Head(ctx context.Context, url string) (int, error) {
	if err := f.limiters.wait(ctx, url); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("head %s: %w", url, err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
