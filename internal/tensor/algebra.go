package tensor

import (
	"fmt"

	"github.com/nightness/tensorcalc/internal/expr"
)

// Contract sums over index ia of a and index ib of b. The result carries
// the free indices of a followed by those of b. Every product is reduced to
// normal form before it is added and the sum is expressed canonically.
func Contract(ar *expr.Arena, a, b *Tensor, ia, ib int) (*Tensor, error) {
	if a.dim != b.dim {
		return nil, fmt.Errorf("%w: dimensions %d and %d", ErrIndex, a.dim, b.dim)
	}
	if ia < 0 || ia >= a.rank || ib < 0 || ib >= b.rank {
		return nil, fmt.Errorf("%w: contraction (%d, %d) for ranks %d and %d", ErrIndex, ia, ib, a.rank, b.rank)
	}
	out := New(a.rank+b.rank-2, a.dim)
	ai := make([]int, a.rank)
	bi := make([]int, b.rank)
	for off := range out.data {
		idx := out.Indices(off)
		free := idx[:a.rank-1]
		fill(ai, free, ia)
		fill(bi, idx[a.rank-1:], ib)
		sum := ar.Int(0)
		for k := 0; k < a.dim; k++ {
			ai[ia], bi[ib] = k, k
			x, err := ar.Normalize(a.At(ai...))
			if err != nil {
				return nil, &ComponentError{Indices: idx, Err: err}
			}
			if x.IsZero() {
				continue
			}
			y, err := ar.Normalize(b.At(bi...))
			if err != nil {
				return nil, &ComponentError{Indices: idx, Err: err}
			}
			sum = sum.Add(x.Mul(y))
		}
		out.data[off] = ar.Express(sum)
	}
	return out, nil
}

// fill copies free into dst around the contracted slot at.
func fill(dst, free []int, at int) {
	j := 0
	for i := range dst {
		if i == at {
			continue
		}
		dst[i] = free[j]
		j++
	}
}

// RaiseIndex returns t with index i raised by the inverse metric. Index
// order is preserved.
func RaiseIndex(m *Metric, t *Tensor, i int) (*Tensor, error) {
	return apply(m, m.invn, t, i)
}

// LowerIndex returns t with index i lowered by the metric.
func LowerIndex(m *Metric, t *Tensor, i int) (*Tensor, error) {
	return apply(m, m.gn, t, i)
}

func apply(m *Metric, mat []*expr.Rational, t *Tensor, i int) (*Tensor, error) {
	n := m.Dim()
	if t.dim != n || i < 0 || i >= t.rank {
		return nil, fmt.Errorf("%w: index %d of rank %d dim %d tensor", ErrIndex, i, t.rank, t.dim)
	}
	ar := m.ar
	out := New(t.rank, n)
	for off := range out.data {
		idx := out.Indices(off)
		src := append([]int(nil), idx...)
		sum := ar.Int(0)
		for k := 0; k < n; k++ {
			c := mat[idx[i]*n+k]
			if c.IsZero() {
				continue
			}
			src[i] = k
			x, err := ar.Normalize(t.At(src...))
			if err != nil {
				return nil, &ComponentError{Indices: idx, Err: err}
			}
			sum = sum.Add(c.Mul(x))
		}
		out.data[off] = ar.Express(sum)
	}
	return out, nil
}
