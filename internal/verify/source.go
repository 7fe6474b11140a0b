package verify

import (
	"errors"
	"fmt"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/tensor"
)

var ErrSourceDimension = errors.New("verify: stress-energy tensor does not match the metric dimension")

// SourceType labels where the stress-energy comes from.
type SourceType string

const (
	Vacuum          SourceType = "vacuum"
	Electromagnetic SourceType = "electromagnetic"
	PerfectFluid    SourceType = "perfect_fluid"
	Custom          SourceType = "custom"
)

// Source is the right-hand side of the field equations: a cosmological
// constant and a covariant stress-energy tensor. Nil fields mean zero.
type Source struct {
	Type       SourceType
	Lambda     *expr.Expr
	T          *tensor.Tensor
	Parameters map[string]string
}

// VacuumSource has Λ = 0 and T = 0.
func VacuumSource() Source {
	return Source{Type: Vacuum}
}

// IsVacuum reports whether T vanishes identically. Λ may be nonzero.
func (s Source) IsVacuum() bool {
	if s.T == nil {
		return true
	}
	for _, e := range s.T.Components() {
		if !e.IsZero() {
			return false
		}
	}
	return true
}

// ParseSource parses Λ and a stress-energy matrix. An empty lambda means 0
// and a nil matrix means vacuum.
func ParseSource(p *expr.Parser, lambda string, t [][]string) (Source, error) {
	src := Source{Type: Custom}
	if lambda != "" {
		e, err := p.Parse(lambda)
		if err != nil {
			return Source{}, fmt.Errorf("lambda: %w", err)
		}
		src.Lambda = e
	}
	if t == nil {
		if src.Lambda == nil {
			src.Type = Vacuum
		}
		return src, nil
	}
	n := len(t)
	tt := tensor.New(2, n)
	for i, row := range t {
		if len(row) != n {
			return Source{}, fmt.Errorf("%w: row %d has %d entries", ErrSourceDimension, i, len(row))
		}
		for j, s := range row {
			e, err := p.Parse(s)
			if err != nil {
				return Source{}, &tensor.ComponentError{Indices: []int{i, j}, Err: err}
			}
			tt.Set(e, i, j)
		}
	}
	src.T = tt
	if src.IsVacuum() && src.Lambda == nil {
		src.Type = Vacuum
	}
	return src, nil
}
