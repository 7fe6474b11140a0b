// Package tensor holds symbolic tensors over a fixed dimension and the
// metric they are measured with.
//
//   - [Tensor]: rank-r table of canonical expressions, row-major
//   - [Metric]: symmetric rank-2 tensor with a verified inverse
//   - [Contract], [RaiseIndex], [LowerIndex]: index algebra
//
// # Metric construction
//
// [BuildMetric] parses every component, checks shape and symmetry, inverts
// by cofactor expansion and proves g^ac g_cb = δ^a_b on the normal forms:
//
//	ar := expr.NewArena()
//	m, err := tensor.BuildMetric(ar, [][]string{{"1", "0"}, {"0", "r^2"}}, []string{"r", "phi"})
//
// Failures at a particular component are reported as [*ComponentError].
//
// # Thread Safety
//
// Tensors and metrics are immutable once built and may be read
// concurrently.
package tensor
