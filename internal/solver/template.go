package solver

import (
	"fmt"
	"slices"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/tensor"
	"github.com/nightness/tensorcalc/internal/verify"
)

// Placeholders are the coordinate names templates are written in.
var Placeholders = []string{"t", "r", "theta", "phi"}

// SourceSpec is the right-hand side a template solves, in placeholder
// coordinates.
type SourceSpec struct {
	Type   verify.SourceType
	Lambda string
	T      [][]string
}

// Template is one catalogue metric.
type Template struct {
	Name       string
	Metric     [][]string
	Parameters map[string]string
	Functions  []string
	Domain     string
	Source     SourceSpec
}

// Vacuum reports whether the template needs no stress-energy. A
// cosmological constant is allowed.
func (tp *Template) Vacuum() bool {
	return tp.Source.T == nil
}

// Reserved lists the names a coordinate may not take.
func (tp *Template) Reserved() []string {
	names := make([]string, 0, len(tp.Parameters)+len(tp.Functions))
	for p := range tp.Parameters {
		if expr.IsIdentifier(p) {
			names = append(names, p)
		}
	}
	names = append(names, tp.Functions...)
	slices.Sort(names)
	return names
}

// Candidate is a template instantiated in concrete coordinates.
type Candidate struct {
	Template *Template
	Coords   []string
	Formulas [][]string
	Metric   *tensor.Metric
	Source   verify.Source
}

func (tp *Template) parser() *expr.Parser {
	return expr.NewParser(expr.WithFunctions(tp.Functions...))
}

// Instantiate renames the placeholders to coords and builds the metric and
// source in ar.
func (tp *Template) Instantiate(ar *expr.Arena, coords []string) (*Candidate, error) {
	if len(coords) != len(Placeholders) {
		return nil, fmt.Errorf("%w: got %d", ErrDimensionMismatch, len(coords))
	}
	if err := tensor.ValidateCoords(coords); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCoordinates, err)
	}
	for _, c := range coords {
		if slices.Contains(tp.Reserved(), c) {
			return nil, fmt.Errorf("%w: %q is a parameter of %s", ErrInvalidCoordinates, c, tp.Name)
		}
	}

	rename := make(map[string]*expr.Expr, len(coords))
	for i, p := range Placeholders {
		rename[p] = expr.Sym(coords[i])
	}
	p := tp.parser()
	convert := func(rows [][]string) ([][]*expr.Expr, [][]string, error) {
		exprs := make([][]*expr.Expr, len(rows))
		strs := make([][]string, len(rows))
		for i, row := range rows {
			exprs[i] = make([]*expr.Expr, len(row))
			strs[i] = make([]string, len(row))
			for j, s := range row {
				e, err := p.Parse(s)
				if err != nil {
					return nil, nil, fmt.Errorf("%s: %w", tp.Name, &tensor.ComponentError{Indices: []int{i, j}, Err: err})
				}
				e = expr.Simplify(expr.SubstituteAll(e, rename))
				exprs[i][j] = e
				strs[i][j] = e.String()
			}
		}
		return exprs, strs, nil
	}

	comps, formulas, err := convert(tp.Metric)
	if err != nil {
		return nil, err
	}
	m, err := tensor.FromExprs(ar, comps, coords)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tp.Name, err)
	}

	src := verify.Source{Type: tp.Source.Type, Parameters: tp.Parameters}
	if tp.Source.Lambda != "" {
		l, err := p.Parse(tp.Source.Lambda)
		if err != nil {
			return nil, fmt.Errorf("%s: lambda: %w", tp.Name, err)
		}
		src.Lambda = expr.SubstituteAll(l, rename)
	}
	if tp.Source.T != nil {
		t, _, err := convert(tp.Source.T)
		if err != nil {
			return nil, err
		}
		src.T = tensor.New(2, len(coords))
		for i := range t {
			for j := range t[i] {
				src.T.Set(t[i][j], i, j)
			}
		}
	}
	return &Candidate{Template: tp, Coords: slices.Clone(coords), Formulas: formulas, Metric: m, Source: src}, nil
}
