package geometry

import (
	"context"
	"math/big"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/tensor"
)

var half = big.NewRat(1, 2)

// metricDerivatives returns dg[(c*n+a)*n+b] = ∂_c g_ab.
func (e *Engine) metricDerivatives(ctx context.Context, m *tensor.Metric) ([]*expr.Rational, error) {
	n, coords := m.Dim(), m.Coords()
	dg := make([]*expr.Rational, n*n*n)
	err := e.backend.ParallelFor(ctx, len(dg), func(off int) error {
		c, a, b := off/(n*n), (off/n)%n, off%n
		if a > b {
			return nil
		}
		d, err := m.Normal(a, b).Derivative(coords[c])
		if err != nil {
			return &tensor.ComponentError{Indices: []int{c, a, b}, Err: err}
		}
		dg[off] = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	for c := 0; c < n; c++ {
		for a := 0; a < n; a++ {
			for b := 0; b < a; b++ {
				dg[(c*n+a)*n+b] = dg[(c*n+b)*n+a]
			}
		}
	}
	return dg, nil
}

// Christoffel computes Γ^μ_αβ = ½ g^μν (∂_α g_νβ + ∂_β g_να − ∂_ν g_αβ).
// Components with α > β are mirrored.
func (e *Engine) Christoffel(ctx context.Context, m *tensor.Metric) (*Field, error) {
	ar, n := m.Arena(), m.Dim()
	dg, err := e.metricDerivatives(ctx, m)
	if err != nil {
		return nil, err
	}
	at := func(c, a, b int) *expr.Rational { return dg[(c*n+a)*n+b] }

	out := make([]*expr.Rational, n*n*n)
	err = e.backend.ParallelFor(ctx, len(out), func(off int) error {
		mu, a, b := off/(n*n), (off/n)%n, off%n
		if a > b {
			return nil
		}
		sum := ar.Int(0)
		for nu := 0; nu < n; nu++ {
			inv := m.InverseNormal(mu, nu)
			if inv.IsZero() {
				continue
			}
			term := at(a, nu, b).Add(at(b, nu, a)).Sub(at(nu, a, b))
			if term.IsZero() {
				continue
			}
			sum = sum.Add(inv.Mul(term))
		}
		out[off] = sum.Scale(half)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for mu := 0; mu < n; mu++ {
		for a := 0; a < n; a++ {
			for b := 0; b < a; b++ {
				out[(mu*n+a)*n+b] = out[(mu*n+b)*n+a]
			}
		}
	}
	return newField(ar, 3, n, out), nil
}

// Riemann computes R^ρ_σμν = ∂_μ Γ^ρ_σν − ∂_ν Γ^ρ_σμ + Γ^ρ_λμ Γ^λ_σν − Γ^ρ_λν Γ^λ_σμ.
// Components with μ > ν follow from antisymmetry in the last pair.
func (e *Engine) Riemann(ctx context.Context, m *tensor.Metric, gamma *Field) (*Field, error) {
	ar, n, coords := m.Arena(), m.Dim(), m.Coords()
	g := func(r, a, b int) *expr.Rational { return gamma.normals[(r*n+a)*n+b] }

	// dG[((l*n+r)*n+a)*n+b] = ∂_l Γ^r_ab
	dG := make([]*expr.Rational, n*n*n*n)
	err := e.backend.ParallelFor(ctx, len(dG), func(off int) error {
		l, r, a, b := off/(n*n*n), (off/(n*n))%n, (off/n)%n, off%n
		if a > b {
			return nil
		}
		d, err := g(r, a, b).Derivative(coords[l])
		if err != nil {
			return &tensor.ComponentError{Indices: []int{l, r, a, b}, Err: err}
		}
		dG[off] = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	dg := func(l, r, a, b int) *expr.Rational {
		if a > b {
			a, b = b, a
		}
		return dG[((l*n+r)*n+a)*n+b]
	}

	out := make([]*expr.Rational, n*n*n*n)
	err = e.backend.ParallelFor(ctx, len(out), func(off int) error {
		rho, sigma, mu, nu := off/(n*n*n), (off/(n*n))%n, (off/n)%n, off%n
		if mu >= nu {
			return nil
		}
		sum := dg(mu, rho, sigma, nu).Sub(dg(nu, rho, sigma, mu))
		for l := 0; l < n; l++ {
			if a := g(rho, l, mu); !a.IsZero() {
				if b := g(l, sigma, nu); !b.IsZero() {
					sum = sum.Add(a.Mul(b))
				}
			}
			if a := g(rho, l, nu); !a.IsZero() {
				if b := g(l, sigma, mu); !b.IsZero() {
					sum = sum.Sub(a.Mul(b))
				}
			}
		}
		out[off] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	zero := ar.Int(0)
	for off := range out {
		mu, nu := (off/n)%n, off%n
		switch {
		case mu == nu:
			out[off] = zero
		case mu > nu:
			out[off] = out[off-mu*n-nu+nu*n+mu].Neg()
		}
	}
	return newField(ar, 4, n, out), nil
}

// RicciTensor contracts R_σν = R^μ_σμν. It is symmetric for a metric
// connection, so only σ ≤ ν is summed.
func (e *Engine) RicciTensor(ctx context.Context, m *tensor.Metric, riemann *Field) (*Field, error) {
	ar, n := m.Arena(), m.Dim()
	out := make([]*expr.Rational, n*n)
	err := e.backend.ParallelFor(ctx, len(out), func(off int) error {
		s, v := off/n, off%n
		if s > v {
			return nil
		}
		sum := ar.Int(0)
		for mu := 0; mu < n; mu++ {
			sum = sum.Add(riemann.normals[((mu*n+s)*n+mu)*n+v])
		}
		out[off] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	for s := 0; s < n; s++ {
		for v := 0; v < s; v++ {
			out[s*n+v] = out[v*n+s]
		}
	}
	return newField(ar, 2, n, out), nil
}

// RicciScalar contracts R = g^σν R_σν.
func (e *Engine) RicciScalar(m *tensor.Metric, ricci *Field) *Scalar {
	ar, n := m.Arena(), m.Dim()
	sum := ar.Int(0)
	for s := 0; s < n; s++ {
		for v := 0; v < n; v++ {
			inv := m.InverseNormal(s, v)
			if inv.IsZero() {
				continue
			}
			sum = sum.Add(inv.Mul(ricci.normals[s*n+v]))
		}
	}
	return &Scalar{Value: ar.Express(sum), Normal: sum}
}

// EinsteinTensor computes G_μν = R_μν − ½ g_μν R.
func (e *Engine) EinsteinTensor(ctx context.Context, m *tensor.Metric, ricci *Field, scalar *Scalar) (*Field, error) {
	ar, n := m.Arena(), m.Dim()
	halfR := scalar.Normal.Scale(half)
	out := make([]*expr.Rational, n*n)
	err := e.backend.ParallelFor(ctx, len(out), func(off int) error {
		a, b := off/n, off%n
		out[off] = ricci.normals[off].Sub(m.Normal(a, b).Mul(halfR))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newField(ar, 2, n, out), nil
}
