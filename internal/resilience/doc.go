// Package resilience provides reliability and fault tolerance patterns for
// the feed aggregation pipeline's outbound network calls.
//
// The package supports:
//   - Circuit breakers for feed fetch, image fetch, meta-tag fetch, and
//     object store calls
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return downloadFeed(feedURL)
//	})
//
//	err := retry.WithBackoff(ctx, retry.ImageFetchConfig(), func() error {
//	    return fetchImage(imageURL)
//	})
package resilience
