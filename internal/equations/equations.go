package equations

import (
	"context"
	"fmt"
	"maps"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/report"
	"github.com/nightness/tensorcalc/internal/tensor"
	"github.com/nightness/tensorcalc/internal/verify"
)

// System is the field-equation system G_μν + Λ g_μν − 8π T_μν = 0 written
// over symbolic component names.
type System struct {
	FieldEquations      []report.TensorComponent `json:"field_equations" yaml:"field_equations"`
	ConstraintEquations []report.TensorComponent `json:"constraint_equations" yaml:"constraint_equations"`
	GaugeConditions     []report.TensorComponent `json:"gauge_conditions" yaml:"gauge_conditions"`
	Unknowns            []string                 `json:"unknowns" yaml:"unknowns"`
	KnownParameters     map[string]string        `json:"known_parameters" yaml:"known_parameters"`
}

func component(name string, a, b int) *expr.Expr {
	return expr.Sym(fmt.Sprintf("%s_%d_%d", name, a, b))
}

// Construct builds the system in dim dimensions. Known parameters are the
// source's parameters, Λ and the nonzero stress-energy components.
func Construct(src verify.Source, dim int) (*System, error) {
	if dim < 2 || dim > 4 {
		return nil, fmt.Errorf("%w: got %d", tensor.ErrDimension, dim)
	}
	if src.T != nil && src.T.Dim() != dim {
		return nil, fmt.Errorf("%w: %d vs %d", verify.ErrSourceDimension, src.T.Dim(), dim)
	}
	sys := &System{
		FieldEquations:      []report.TensorComponent{},
		ConstraintEquations: []report.TensorComponent{},
		GaugeConditions:     []report.TensorComponent{},
		KnownParameters:     map[string]string{},
	}
	maps.Copy(sys.KnownParameters, src.Parameters)

	var lambda *expr.Expr
	if src.Lambda != nil {
		lambda = expr.Simplify(src.Lambda)
		if lambda.IsZero() {
			lambda = nil
		} else {
			sys.KnownParameters["Lambda"] = lambda.String()
		}
	}
	eightPi := []*expr.Expr{expr.Int(8), expr.Sym("pi")}

	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			terms := []*expr.Expr{component("G", a, b)}
			if lambda != nil {
				terms = append(terms, expr.Product(lambda, component("g", a, b)))
			}
			if src.T != nil && !src.T.At(a, b).IsZero() {
				terms = append(terms, expr.Negate(expr.Product(append(eightPi, component("T", a, b))...)))
				sys.KnownParameters[component("T", a, b).Name()] = src.T.At(a, b).String()
			}
			sys.FieldEquations = append(sys.FieldEquations, report.TensorComponent{
				Indices:    []int{a, b},
				Expression: expr.Sum(terms...).String(),
			})
		}
	}
	for a := 0; a < dim; a++ {
		for b := a; b < dim; b++ {
			sys.Unknowns = append(sys.Unknowns, component("g", a, b).Name())
		}
	}
	return sys, nil
}

// Residuals instantiates the system against a concrete metric: each
// component of G_μν + Λ g_μν − 8π T_μν in canonical form, with the
// verification status.
func Residuals(ctx context.Context, v *verify.Verifier, m *tensor.Metric, src verify.Source) ([]report.TensorComponent, verify.Status, error) {
	rep, err := v.Verify(ctx, m, src)
	if err != nil {
		return nil, verify.Indeterminate, err
	}
	out := make([]report.TensorComponent, 0, rep.Residuals.Len())
	for idx, e := range rep.Residuals.Components() {
		out = append(out, report.TensorComponent{Indices: idx, Expression: e.String()})
	}
	return out, rep.Status, nil
}
