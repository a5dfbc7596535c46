// Package unshorten resolves short-link redirects for item URLs. A
// failure of any kind here is never surfaced as a pipeline error: the
// owning item is dropped, matching the silent-skip contract normalize
// applies to every other per-item check.
package unshorten

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"feedagg/internal/resilience/retry"
)

// ErrDropped is returned whenever the URL could not be resolved and the
// caller should drop the owning item rather than treat this as a fatal
// error.
var ErrDropped = errors.New("unshorten: drop item")

// Resolver follows redirects to find the final destination of a
// possibly-shortened URL, bounded by a fixed timeout.
type Resolver struct {
	client *http.Client
}

// New builds a Resolver with a 5-second timeout, following the
// contract's fixed budget for short-link resolution.
func New() *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("unshorten: stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// Resolve returns the final URL after following redirects. Any
// connection error, timeout, invalid URL, TLS error, or too-many-redirects
// condition collapses to ErrDropped so the caller drops the item instead
// of surfacing an error.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrDropped
	}

	var resolved string
	retryErr := retry.WithBackoff(ctx, retry.UnshortenConfig(), func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if reqErr != nil {
			return reqErr
		}

		resp, doErr := r.client.Do(req)
		if doErr != nil {
			// Connection errors, timeouts, TLS failures, and too-many-redirects
			// all surface here as a transport error; all of them drop silently.
			return doErr
		}
		defer resp.Body.Close()

		resolved = resp.Request.URL.String()
		return nil
	})
	if retryErr != nil {
		return "", ErrDropped
	}

	return resolved, nil
}
