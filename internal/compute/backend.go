package compute

import (
	"context"
	"runtime"
)

// Backend evaluates independent component computations.
type Backend interface {
	Name() string
	Workers() int
	ParallelFor(ctx context.Context, n int, fn func(i int) error) error
}

// New picks the serial backend for a single worker and the CPU pool
// otherwise. Zero or negative worker counts mean one per CPU.
func New(workers int) Backend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		return Serial{}
	}
	return NewCPUBackend(workers)
}

// ParallelFor runs fn for every i in [0, n) on a pool of the given size
// and returns the first error.
func ParallelFor(ctx context.Context, n, workers int, fn func(i int) error) error {
	return New(workers).ParallelFor(ctx, n, fn)
}

// Serial runs every index in order on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }
func (Serial) Workers() int { return 1 }

func (Serial) ParallelFor(ctx context.Context, n int, fn func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}
