package tensor

import (
	"fmt"

	"github.com/nightness/tensorcalc/internal/expr"
)

// Metric is a symmetric, invertible rank-2 tensor with its inverse and the
// coordinates it is written in. Build one with BuildMetric or FromExprs; a
// Metric value always has a verified inverse.
type Metric struct {
	ar     *expr.Arena
	coords []string
	g      *Tensor
	inv    *Tensor
	gn     []*expr.Rational
	invn   []*expr.Rational
}

type buildOptions struct {
	parser *expr.Parser
}

type Option func(*buildOptions)

// WithParser parses components with p, for metrics that use undefined
// functions such as a(t).
func WithParser(p *expr.Parser) Option {
	return func(o *buildOptions) { o.parser = p }
}

// BuildMetric parses a metric matrix over coords and verifies it.
func BuildMetric(ar *expr.Arena, matrix [][]string, coords []string, opts ...Option) (*Metric, error) {
	o := buildOptions{parser: expr.NewParser()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ValidateCoords(coords); err != nil {
		return nil, err
	}
	n := len(coords)
	if err := checkShape(len(matrix), n, func(i int) int { return len(matrix[i]) }); err != nil {
		return nil, err
	}
	comps := make([][]*expr.Expr, n)
	for i, row := range matrix {
		comps[i] = make([]*expr.Expr, n)
		for j, s := range row {
			e, err := o.parser.Parse(s)
			if err != nil {
				return nil, &ComponentError{Indices: []int{i, j}, Err: err}
			}
			comps[i][j] = e
		}
	}
	return FromExprs(ar, comps, coords)
}

// ValidateCoords checks the count and the names of a coordinate list.
func ValidateCoords(coords []string) error {
	if len(coords) < 2 || len(coords) > 4 {
		return fmt.Errorf("%w: got %d coordinates", ErrDimension, len(coords))
	}
	seen := make(map[string]bool, len(coords))
	for _, c := range coords {
		if !expr.IsIdentifier(c) || expr.IsBuiltinFunction(c) || c == "pi" {
			return fmt.Errorf("%w: %q is not a usable name", ErrInvalidCoordinates, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidCoordinates, c)
		}
		seen[c] = true
	}
	return nil
}

func checkShape(rows, n int, cols func(i int) int) error {
	if rows != n {
		return fmt.Errorf("%w: %d rows for %d coordinates", ErrNonSquareMetric, rows, n)
	}
	for i := 0; i < rows; i++ {
		if c := cols(i); c != n {
			return fmt.Errorf("%w: row %d has %d entries", ErrNonSquareMetric, i, c)
		}
	}
	return nil
}

// FromExprs builds a metric from parsed components.
func FromExprs(ar *expr.Arena, comps [][]*expr.Expr, coords []string) (*Metric, error) {
	if err := ValidateCoords(coords); err != nil {
		return nil, err
	}
	n := len(coords)
	if err := checkShape(len(comps), n, func(i int) int { return len(comps[i]) }); err != nil {
		return nil, err
	}

	gn := make([]*expr.Rational, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r, err := ar.Normalize(comps[i][j])
			if err != nil {
				return nil, &ComponentError{Indices: []int{i, j}, Err: err}
			}
			gn[i*n+j] = r
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !gn[i*n+j].Equal(gn[j*n+i]) {
				return nil, &ComponentError{Indices: []int{i, j}, Err: ErrAsymmetricMetric}
			}
		}
	}

	invn, err := Invert(ar, gn, n)
	if err != nil {
		return nil, err
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			sum := ar.Int(0)
			for c := 0; c < n; c++ {
				sum = sum.Add(invn[a*n+c].Mul(gn[c*n+b]))
			}
			want := ar.Int(0)
			if a == b {
				want = ar.Int(1)
			}
			if !sum.Equal(want) {
				return nil, &ComponentError{Indices: []int{a, b}, Err: ErrInverseCheck}
			}
		}
	}

	m := &Metric{
		ar:     ar,
		coords: append([]string(nil), coords...),
		gn:     gn,
		invn:   invn,
		g:      express(ar, 2, n, gn),
		inv:    express(ar, 2, n, invn),
	}
	return m, nil
}

func express(ar *expr.Arena, rank, dim int, rs []*expr.Rational) *Tensor {
	data := make([]*expr.Expr, len(rs))
	for i, r := range rs {
		data[i] = ar.Express(r)
	}
	return FromSlice(rank, dim, data)
}

func (m *Metric) Arena() *expr.Arena { return m.ar }
func (m *Metric) Dim() int           { return len(m.coords) }
func (m *Metric) G() *Tensor         { return m.g }
func (m *Metric) Inverse() *Tensor   { return m.inv }

func (m *Metric) Coords() []string {
	return append([]string(nil), m.coords...)
}

// Normal returns the normal form of g_ab.
func (m *Metric) Normal(a, b int) *expr.Rational {
	return m.gn[a*len(m.coords)+b]
}

// InverseNormal returns the normal form of g^ab.
func (m *Metric) InverseNormal(a, b int) *expr.Rational {
	return m.invn[a*len(m.coords)+b]
}

// IsDiagonal reports whether every off-diagonal component is zero.
func (m *Metric) IsDiagonal() bool {
	n := len(m.coords)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && !m.gn[i*n+j].IsZero() {
				return false
			}
		}
	}
	return true
}
