// Package compute runs independent component computations in parallel.
//
// Two backends are available:
//
//   - [CPUBackend]: a bounded errgroup pool, one contiguous chunk per worker
//   - [Serial]: in-order evaluation on the calling goroutine
//
// # Example
//
//	backend := compute.New(cfg.Workers)
//	err := backend.ParallelFor(ctx, len(out), func(i int) error {
//		out[i], err = work(i)
//		return err
//	})
//
// Callers write only to their own index of a pre-sized slice, so results
// need no locking. The first error cancels the remaining work.
package compute
