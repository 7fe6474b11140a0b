package compute

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// below this many indices the pool is not worth starting
const minParallel = 4

type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

// ParallelFor splits [0, n) into one contiguous chunk per worker. The first
// failing index cancels the group; remaining chunks stop at their next index.
func (c *CPUBackend) ParallelFor(ctx context.Context, n int, fn func(i int) error) error {
	if n <= minParallel || c.workers == 1 {
		return Serial{}.ParallelFor(ctx, n, fn)
	}

	workers := min(c.workers, n)
	chunkSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
