// Package expr provides the symbolic expression engine used by the tensor
// pipeline.
//
// Expressions are immutable trees over exact rational numbers, named
// symbols, the arithmetic operators and single-argument function
// applications:
//
//   - [Parse]: formula text to [Expr], failing with [*ParseError]
//   - [Simplify]: fixed-point rewrite pass (folding, identities, flattening,
//     like-term collection)
//   - [Differentiate]: structural derivative with respect to a symbol
//   - [Arena]: per-invocation intern table plus the rational normal form
//     ([Rational]) used for canonical output and zero testing
//   - [Arena.IsZero]: three-valued zero test ([Zero], [NonZero],
//     [Indeterminate])
//
// # Normal Form
//
// A [Rational] is a polynomial numerator with exact coefficients over atoms
// (symbols, function applications, radicals) divided by a monomial times
// primitive polynomial factors. Numerators are reduced with
// cos(u)^2 = 1 - sin(u)^2 and (P^(1/d))^d = P, so a zero numerator is a proof
// of zero. Anything else is only corroborated by numeric sampling.
//
// # Example
//
//	ar := expr.NewArena()
//	e, _ := expr.Parse("sin(x)^2 + cos(x)^2 - 1")
//	v := ar.IsZero(e, expr.DefaultSampler()) // expr.Zero
//
// # Thread Safety
//
// Expressions and rationals are immutable and safe to share. An [Arena] may
// be used from many goroutines; it only caches immutable values.
package expr
