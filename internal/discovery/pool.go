package discovery

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runPool drains items with at most concurrency workers. fn receives the item's
// index so workers can write into their own result slot; merging happens after
// the pool drains. Per-item failures are fn's responsibility to log and never
// stop the pool. Cancellation of ctx is the only error: the first worker to see
// it cancels the group, the rest stop picking up items, and runPool returns
// ctx's error. Callers that degrade on cancellation may ignore it.
func runPool[T any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, i int, item T)) error {
	if len(items) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	queue := make(chan int, len(items))
	for i := range items {
		queue <- i
	}
	close(queue)

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for i := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn(gctx, i, items[i])
			}
			return nil
		})
	}
	return g.Wait()
}
