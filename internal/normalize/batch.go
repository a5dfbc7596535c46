package normalize

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"feedagg/internal/domain"
)

// NormalizeFeed runs the full check chain over every raw item from one
// feed concurrently, bounded by concurrency, and returns the items that
// survived; the caller records len() of the result as size_after_insert.
func (n *Normalizer) NormalizeFeed(ctx context.Context, raws []domain.RawItem, pub domain.PublisherRecord, concurrency int) []domain.NormalizedItem {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var out []domain.NormalizedItem

	for _, raw := range raws {
		raw := raw
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			item, ok := n.Normalize(egCtx, raw, pub)
			if !ok {
				return nil
			}
			mu.Lock()
			out = append(out, item)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return out
}
