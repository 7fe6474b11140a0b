package tensor

import (
	"fmt"
	"iter"

	"github.com/nightness/tensorcalc/internal/expr"
)

// Tensor is a rank-r table of expressions over a fixed dimension, stored
// row-major. Components are set while a tensor is built and only read
// afterwards.
type Tensor struct {
	rank int
	dim  int
	data []*expr.Expr
}

// Component is one entry of a tensor.
type Component struct {
	Indices []int
	Value   *expr.Expr
}

// New returns a tensor with every component zero.
func New(rank, dim int) *Tensor {
	n := 1
	for i := 0; i < rank; i++ {
		n *= dim
	}
	data := make([]*expr.Expr, n)
	zero := expr.Int(0)
	for i := range data {
		data[i] = zero
	}
	return &Tensor{rank: rank, dim: dim, data: data}
}

// FromSlice wraps a row-major component slice. The slice is not copied.
func FromSlice(rank, dim int, data []*expr.Expr) *Tensor {
	t := New(rank, dim)
	if len(data) != len(t.data) {
		panic(fmt.Sprintf("tensor: %d components for rank %d dim %d", len(data), rank, dim))
	}
	t.data = data
	return t
}

func (t *Tensor) Rank() int { return t.rank }
func (t *Tensor) Dim() int  { return t.dim }
func (t *Tensor) Len() int  { return len(t.data) }

// Offset maps indices to the row-major position.
func (t *Tensor) Offset(idx ...int) int {
	if len(idx) != t.rank {
		panic(fmt.Errorf("%w: %d indices for rank %d", ErrIndex, len(idx), t.rank))
	}
	off := 0
	for _, i := range idx {
		if i < 0 || i >= t.dim {
			panic(fmt.Errorf("%w: %v", ErrIndex, idx))
		}
		off = off*t.dim + i
	}
	return off
}

// Indices is the inverse of Offset.
func (t *Tensor) Indices(off int) []int {
	idx := make([]int, t.rank)
	for k := t.rank - 1; k >= 0; k-- {
		idx[k] = off % t.dim
		off /= t.dim
	}
	return idx
}

func (t *Tensor) At(idx ...int) *expr.Expr {
	return t.data[t.Offset(idx...)]
}

// Set stores a component. Only call it while building the tensor.
func (t *Tensor) Set(e *expr.Expr, idx ...int) {
	t.data[t.Offset(idx...)] = e
}

// Components iterates over every component in row-major order.
func (t *Tensor) Components() iter.Seq2[[]int, *expr.Expr] {
	return func(yield func([]int, *expr.Expr) bool) {
		for off, e := range t.data {
			if !yield(t.Indices(off), e) {
				return
			}
		}
	}
}

// NonZero lists the components that are not the literal zero.
func (t *Tensor) NonZero() []Component {
	var out []Component
	for idx, e := range t.Components() {
		if !e.IsZero() {
			out = append(out, Component{Indices: idx, Value: e})
		}
	}
	return out
}

// Strings returns the components as nested string slices: a string for rank
// 0, []string for rank 1 and so on.
func (t *Tensor) Strings() any {
	if t.rank == 0 {
		return t.data[0].String()
	}
	return t.nest(0, 0)
}

func (t *Tensor) nest(level, base int) any {
	if level == t.rank-1 {
		out := make([]string, t.dim)
		for i := range out {
			out[i] = t.data[base+i].String()
		}
		return out
	}
	stride := 1
	for k := level + 1; k < t.rank; k++ {
		stride *= t.dim
	}
	out := make([]any, t.dim)
	for i := range out {
		out[i] = t.nest(level+1, base+i*stride)
	}
	return out
}

// Kronecker returns the rank-2 identity.
func Kronecker(dim int) *Tensor {
	t := New(2, dim)
	one := expr.Int(1)
	for i := 0; i < dim; i++ {
		t.Set(one, i, i)
	}
	return t
}
