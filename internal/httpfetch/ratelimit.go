package httpfetch

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiters hands out one token-bucket limiter per host, so a single
// slow or chatty publisher can't starve the shared politeness budget
// from every other host. Grounded on the teacher's token-bucket
// notification rate limiter, keyed per-destination instead of globally.
type hostLimiters struct {
	mu                sync.Mutex
	perHost           map[string]*rate.Limiter
	requestsPerSecond rate.Limit
	burst             int
}

func newHostLimiters(requestsPerSecond float64, burst int) *hostLimiters {
	return &hostLimiters{
		perHost:           make(map[string]*rate.Limiter),
		requestsPerSecond: rate.Limit(requestsPerSecond),
		burst:             burst,
	}
}

func (h *hostLimiters) wait(ctx context.Context, rawURL string) error {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	h.mu.Lock()
	limiter, ok := h.perHost[host]
	if !ok {
		limiter = rate.NewLimiter(h.requestsPerSecond, h.burst)
		h.perHost[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
