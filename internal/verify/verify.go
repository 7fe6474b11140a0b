package verify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/geometry"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/tensor"
)

// Offense is a residual component that is not provably zero.
type Offense struct {
	Indices []int        `json:"indices" yaml:"indices"`
	Verdict expr.Verdict `json:"-" yaml:"-"`
	Label   string       `json:"verdict" yaml:"verdict"`
	Value   string       `json:"residual" yaml:"residual"`
}

// Report is the result of checking G_μν + Λ g_μν − 8π T_μν = 0.
type Report struct {
	Status     Status
	Residuals  *tensor.Tensor
	Offending  []Offense
	Einstein   *geometry.Field
	Curvature  *geometry.Result
	SourceType SourceType
}

type Verifier struct {
	engine  *geometry.Engine
	sampler expr.Sampler
	log     *slog.Logger
}

type Option func(*Verifier)

func WithEngine(e *geometry.Engine) Option {
	return func(v *Verifier) { v.engine = e }
}

func WithSampler(s expr.Sampler) Option {
	return func(v *Verifier) { v.sampler = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) { v.log = l }
}

func New(opts ...Option) *Verifier {
	v := &Verifier{
		engine:  geometry.New(),
		sampler: expr.DefaultSampler(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify computes the Einstein tensor of m and checks it against src.
func (v *Verifier) Verify(ctx context.Context, m *tensor.Metric, src Source) (*Report, error) {
	if src.T != nil && src.T.Dim() != m.Dim() {
		return nil, fmt.Errorf("%w: %d vs %d", ErrSourceDimension, src.T.Dim(), m.Dim())
	}
	res, err := v.engine.Compute(ctx, m, geometry.StageEinstein)
	if err != nil {
		return nil, err
	}
	return v.Check(m, res, src)
}

// Check verifies an already computed curvature result.
func (v *Verifier) Check(m *tensor.Metric, res *geometry.Result, src Source) (*Report, error) {
	if res.Einstein == nil {
		return nil, fmt.Errorf("verify: curvature result stops before the einstein stage")
	}
	if src.T != nil && src.T.Dim() != m.Dim() {
		return nil, fmt.Errorf("%w: %d vs %d", ErrSourceDimension, src.T.Dim(), m.Dim())
	}
	ar, n := m.Arena(), m.Dim()

	lambda := ar.Int(0)
	if src.Lambda != nil {
		l, err := ar.Normalize(src.Lambda)
		if err != nil {
			return nil, fmt.Errorf("lambda: %w", err)
		}
		lambda = l
	}
	eightPi, err := ar.Normalize(expr.Product(expr.Int(8), expr.Sym("pi")))
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Status:     Satisfied,
		Residuals:  tensor.New(2, n),
		Einstein:   res.Einstein,
		Curvature:  res,
		SourceType: src.Type,
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			delta := res.Einstein.Normal(a, b)
			if !lambda.IsZero() {
				delta = delta.Add(lambda.Mul(m.Normal(a, b)))
			}
			if src.T != nil && !src.T.At(a, b).IsZero() {
				t, err := ar.Normalize(src.T.At(a, b))
				if err != nil {
					return nil, &tensor.ComponentError{Indices: []int{a, b}, Err: err}
				}
				delta = delta.Sub(eightPi.Mul(t))
			}
			value := ar.Express(delta)
			rep.Residuals.Set(value, a, b)

			verdict := delta.Verdict(v.sampler)
			switch verdict {
			case expr.Zero:
				continue
			case expr.NonZero:
				rep.Status = Violated
			case expr.Indeterminate:
				if rep.Status == Satisfied {
					rep.Status = Indeterminate
				}
			}
			rep.Offending = append(rep.Offending, Offense{
				Indices: []int{a, b},
				Verdict: verdict,
				Label:   verdict.String(),
				Value:   value.String(),
			})
		}
	}
	v.log.Debug("field equations checked", "status", rep.Status.String(),
		"offending", len(rep.Offending), "source", string(src.Type))
	return rep, nil
}
