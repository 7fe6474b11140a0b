package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/verify"
)

// Solution is a verified catalogue metric in the caller's coordinates.
type Solution struct {
	Symmetry             string            `json:"symmetry_class" yaml:"symmetry_class"`
	Name                 string            `json:"solution_name" yaml:"solution_name"`
	Type                 string            `json:"solution_type" yaml:"solution_type"`
	SourceType           verify.SourceType `json:"source_type" yaml:"source_type"`
	Coordinates          []string          `json:"coordinates" yaml:"coordinates"`
	Metric               [][]string        `json:"metric_tensor" yaml:"metric_tensor"`
	Parameters           map[string]string `json:"physical_parameters" yaml:"physical_parameters"`
	Domain               string            `json:"solution_domain" yaml:"solution_domain"`
	Lambda               string            `json:"cosmological_constant,omitempty" yaml:"cosmological_constant,omitempty"`
	ConstraintsSatisfied verify.Status     `json:"constraints_satisfied" yaml:"constraints_satisfied"`
}

type Solver struct {
	registry *Registry
	verifier *verify.Verifier
	log      *slog.Logger
}

type Option func(*Solver)

func WithRegistry(r *Registry) Option {
	return func(s *Solver) { s.registry = r }
}

func WithVerifier(v *verify.Verifier) Option {
	return func(s *Solver) { s.verifier = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.log = l }
}

func New(opts ...Option) *Solver {
	s := &Solver{
		registry: NewRegistry(),
		verifier: verify.New(),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Registry() *Registry { return s.registry }

// SolveVacuum returns the first vacuum candidate of the symmetry class that
// verifies in coords. ErrNoMatch means every candidate was tried.
func (s *Solver) SolveVacuum(ctx context.Context, coords []string, symmetry string) (*Solution, error) {
	a, err := s.prepare(coords, symmetry)
	if err != nil {
		return nil, err
	}
	for _, tp := range a.Templates() {
		if !tp.Vacuum() {
			continue
		}
		sol, err := s.try(ctx, a.Tag, tp, coords)
		if err != nil {
			return nil, err
		}
		if sol != nil {
			return sol, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoMatch, symmetry)
}

// SolveAll verifies every candidate of the symmetry class against its own
// source and returns those that hold.
func (s *Solver) SolveAll(ctx context.Context, coords []string, symmetry string) ([]*Solution, error) {
	a, err := s.prepare(coords, symmetry)
	if err != nil {
		return nil, err
	}
	var out []*Solution
	for _, tp := range a.Templates() {
		sol, err := s.try(ctx, a.Tag, tp, coords)
		if err != nil {
			return nil, err
		}
		if sol != nil {
			out = append(out, sol)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, symmetry)
	}
	return out, nil
}

func (s *Solver) prepare(coords []string, symmetry string) (*Ansatz, error) {
	a, err := s.registry.Get(symmetry)
	if err != nil {
		return nil, err
	}
	if len(coords) != len(Placeholders) {
		return nil, fmt.Errorf("%w: got %d", ErrDimensionMismatch, len(coords))
	}
	return a, nil
}

// try instantiates and verifies one template. A nil solution with a nil
// error means the candidate did not verify.
func (s *Solver) try(ctx context.Context, tag string, tp *Template, coords []string) (*Solution, error) {
	c, err := tp.Instantiate(expr.NewArena(), coords)
	if err != nil {
		return nil, err
	}
	rep, err := s.verifier.Verify(ctx, c.Metric, c.Source)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", tp.Name, err)
	}
	s.log.Info("candidate checked", "symmetry", tag, "template", tp.Name, "status", rep.Status.String())
	if rep.Status != verify.Satisfied {
		return nil, nil
	}
	sol := &Solution{
		Symmetry:             tag,
		Name:                 tp.Name,
		Type:                 "exact",
		SourceType:           tp.Source.Type,
		Coordinates:          c.Coords,
		Metric:               c.Formulas,
		Parameters:           tp.Parameters,
		Domain:               tp.Domain,
		ConstraintsSatisfied: rep.Status,
	}
	if c.Source.Lambda != nil {
		sol.Lambda = expr.Simplify(c.Source.Lambda).String()
	}
	return sol, nil
}
