// Package geometry computes curvature from a metric.
//
// The chain runs in fixed order, one rank at a time:
//
//   - Christoffel symbols Γ^μ_αβ (rank 3)
//   - Riemann tensor R^ρ_σμν (rank 4)
//   - Ricci tensor R_σν and scalar R
//   - Einstein tensor G_μν = R_μν − ½ g_μν R
//
// Components of one rank are independent and are evaluated on a
// [compute.Backend]; the next rank starts only after the previous one is
// complete. Intermediate results stay in normal form, so each component is
// canonical when it is expressed.
//
// # Example
//
//	eng := geometry.New(geometry.WithWorkers(4))
//	res, err := eng.Compute(ctx, metric, geometry.StageEinstein)
//	fmt.Println(res.RicciScalar.Value)
//
// # Thread Safety
//
// An [Engine] keeps no state between calls and may be shared.
package geometry
