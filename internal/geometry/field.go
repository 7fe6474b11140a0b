package geometry

import (
	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/tensor"
)

// Field is a computed tensor that keeps the normal forms of its components
// for the next stage.
type Field struct {
	*tensor.Tensor
	normals []*expr.Rational
}

func newField(ar *expr.Arena, rank, dim int, normals []*expr.Rational) *Field {
	data := make([]*expr.Expr, len(normals))
	for i, r := range normals {
		data[i] = ar.Express(r)
	}
	return &Field{Tensor: tensor.FromSlice(rank, dim, data), normals: normals}
}

// Normal returns the normal form of one component.
func (f *Field) Normal(idx ...int) *expr.Rational {
	return f.normals[f.Offset(idx...)]
}

// Scalar is a rank-0 result.
type Scalar struct {
	Value  *expr.Expr
	Normal *expr.Rational
}
