package tensor

import (
	"github.com/nightness/tensorcalc/internal/expr"
)

// Determinant expands a square matrix of normal forms by cofactors.
func Determinant(ar *expr.Arena, m []*expr.Rational, n int) *expr.Rational {
	return det(ar, m, n, seq(n), seq(n))
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func without(s []int, k int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:k]...)
	return append(out, s[k+1:]...)
}

func det(ar *expr.Arena, m []*expr.Rational, n int, rows, cols []int) *expr.Rational {
	switch len(rows) {
	case 1:
		return m[rows[0]*n+cols[0]]
	case 2:
		a, b := m[rows[0]*n+cols[0]], m[rows[0]*n+cols[1]]
		c, d := m[rows[1]*n+cols[0]], m[rows[1]*n+cols[1]]
		return a.Mul(d).Sub(b.Mul(c))
	}
	sum := ar.Int(0)
	for k, c := range cols {
		a := m[rows[0]*n+c]
		if a.IsZero() {
			continue
		}
		term := a.Mul(det(ar, m, n, rows[1:], without(cols, k)))
		if k%2 == 1 {
			sum = sum.Sub(term)
		} else {
			sum = sum.Add(term)
		}
	}
	return sum
}

// Invert returns adj(m)/det(m) of the n×n row-major normal forms in m.
func Invert(ar *expr.Arena, m []*expr.Rational, n int) ([]*expr.Rational, error) {
	d := Determinant(ar, m, n)
	if d.IsZero() {
		return nil, ErrDegenerateMetric
	}
	inv := make([]*expr.Rational, n*n)
	all := seq(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cof := det(ar, m, n, without(all, i), without(all, j))
			if (i+j)%2 == 1 {
				cof = cof.Neg()
			}
			q, err := cof.Div(d)
			if err != nil {
				return nil, err
			}
			inv[j*n+i] = q
		}
	}
	return inv, nil
}
