package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nightness/tensorcalc/internal/config"
	"github.com/nightness/tensorcalc/internal/equations"
	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/geometry"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/report"
	"github.com/nightness/tensorcalc/internal/solver"
	"github.com/nightness/tensorcalc/internal/storage"
	"github.com/nightness/tensorcalc/internal/tensor"
	"github.com/nightness/tensorcalc/internal/verify"
)

const (
	CmdChristoffel = "christoffel"
	CmdRiemann     = "riemann"
	CmdRicci       = "ricci"
	CmdRicciScalar = "ricci-scalar"
	CmdEinstein    = "einstein"
	CmdVerify      = "verify"
	CmdSolve       = "solve-vacuum"
	CmdEquations   = "construct-equations"
)

var (
	ErrUnknownCommand = errors.New("calc: unknown command")
	ErrMissingInput   = errors.New("calc: missing input")
)

// Commands lists every command Do accepts.
func Commands() []string {
	return []string{CmdChristoffel, CmdRiemann, CmdRicci, CmdRicciScalar, CmdEinstein,
		CmdVerify, CmdSolve, CmdEquations}
}

// Request is one invocation of the engine. Metric, coordinates and source
// left empty are taken from Preset when one is named.
type Request struct {
	Command      string               `yaml:"command"`
	Preset       string               `yaml:"preset,omitempty"`
	Metric       report.Matrix        `yaml:"metric,omitempty"`
	Coords       []string             `yaml:"coords,omitempty"`
	Lambda       string               `yaml:"lambda,omitempty"`
	StressEnergy *report.StressEnergy `yaml:"stress_energy,omitempty"`
	Symmetry     string               `yaml:"symmetry,omitempty"`
	All          bool                 `yaml:"all,omitempty"`
	Functions    []string             `yaml:"functions,omitempty"`
}

// ApplyPreset fills the empty fields of r from its named preset.
func (r *Request) ApplyPreset() error {
	if r.Preset == "" {
		return nil
	}
	p, err := config.GetPreset(r.Preset)
	if err != nil {
		return err
	}
	if r.Metric == nil {
		r.Metric = p.Metric
	}
	if r.Coords == nil {
		r.Coords = p.Coords
	}
	if r.Lambda == "" {
		r.Lambda = p.Lambda
	}
	if r.StressEnergy == nil && p.StressEnergy != nil {
		r.StressEnergy = &report.StressEnergy{Components: p.StressEnergy}
	}
	for _, f := range p.Functions {
		if !slices.Contains(r.Functions, f) {
			r.Functions = append(r.Functions, f)
		}
	}
	return nil
}

// VerificationData is the payload of a solution_verification result.
// Residuals is the full rank-2 residual tensor as nested strings.
type VerificationData struct {
	ConstraintsSatisfied verify.Status     `json:"constraints_satisfied" yaml:"constraints_satisfied"`
	SourceType           verify.SourceType `json:"source_type" yaml:"source_type"`
	Residuals            any               `json:"residuals" yaml:"residuals"`
	Offending            []verify.Offense  `json:"offending_components" yaml:"offending_components"`
}

// Outcome is the result of Do with what is needed to archive or display it.
type Outcome struct {
	Request   Request
	Result    *report.TensorResult
	Curvature *geometry.Result
	Status    verify.Status
	Tensors   map[string][]report.TensorComponent
	Elapsed   time.Duration
}

// Archive turns the outcome into a storage run.
func (o *Outcome) Archive() *storage.Run {
	meta := storage.RunMetadata{
		Command:     o.Request.Command,
		Coordinates: o.Result.Coordinates,
		Metric:      o.Request.Metric,
		Lambda:      o.Request.Lambda,
	}
	if o.Request.Command == CmdVerify {
		meta.Status = o.Status.String()
	}
	if o.Curvature != nil {
		meta.Timings = make(map[string]float64, len(o.Curvature.Timings))
		for st, d := range o.Curvature.Timings {
			meta.Timings[st.String()] = float64(d.Microseconds()) / 1000
		}
	}
	return &storage.Run{Meta: meta, Tensors: o.Tensors}
}

type Service struct {
	cfg      *config.Config
	engine   *geometry.Engine
	verifier *verify.Verifier
	solver   *solver.Solver
	log      *slog.Logger
}

func New(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	engine := geometry.New(
		geometry.WithWorkers(cfg.Workers),
		geometry.WithLogger(logger.ForComponent("geometry")),
	)
	v := verify.New(
		verify.WithEngine(engine),
		verify.WithSampler(cfg.Sampling),
		verify.WithLogger(logger.ForComponent("verify")),
	)
	return &Service{
		cfg:      cfg,
		engine:   engine,
		verifier: v,
		solver: solver.New(
			solver.WithVerifier(v),
			solver.WithLogger(logger.ForComponent("solver")),
		),
		log: logger.ForComponent("calc"),
	}
}

func (s *Service) parser(req Request) *expr.Parser {
	names := slices.Concat(s.cfg.Functions, req.Functions)
	return expr.NewParser(expr.WithFunctions(names...))
}

// Metric parses and validates the request's metric in a fresh arena.
func (s *Service) Metric(req Request) (*tensor.Metric, error) {
	if req.Metric == nil {
		return nil, fmt.Errorf("%w: metric", ErrMissingInput)
	}
	if req.Coords == nil {
		return nil, fmt.Errorf("%w: coords", ErrMissingInput)
	}
	return tensor.BuildMetric(expr.NewArena(), req.Metric, req.Coords, tensor.WithParser(s.parser(req)))
}

// Do runs one command. Negative verification and solver outcomes are
// successful results; only invalid input and internal failures are errors.
func (s *Service) Do(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.ApplyPreset(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := &Outcome{Request: req, Status: verify.Indeterminate, Tensors: map[string][]report.TensorComponent{}}

	var err error
	switch req.Command {
	case CmdChristoffel, CmdRiemann, CmdRicci, CmdRicciScalar, CmdEinstein:
		err = s.curvature(ctx, req, out)
	case CmdVerify:
		err = s.verify(ctx, req, out)
	case CmdSolve:
		err = s.solve(ctx, req, out)
	case CmdEquations:
		err = s.construct(req, out)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
	}
	if err != nil {
		return nil, err
	}
	out.Elapsed = time.Since(start)
	s.log.Info("command done", "command", req.Command, "elapsed", out.Elapsed)
	return out, nil
}

func (s *Service) curvature(ctx context.Context, req Request, out *Outcome) error {
	stage, err := geometry.ParseStage(req.Command)
	if err != nil {
		return err
	}
	m, err := s.Metric(req)
	if err != nil {
		return err
	}
	res, err := s.engine.Compute(ctx, m, stage)
	if err != nil {
		return err
	}
	out.Curvature = res
	collect(res, out.Tensors)

	coords := m.Coords()
	switch stage {
	case geometry.StageChristoffel:
		out.Result = report.Success(report.TypeChristoffel, report.NewChristoffelData(res.Christoffel.Tensor), coords)
	case geometry.StageRiemann:
		out.Result = report.Success(report.TypeRiemann, report.NewTensorData(res.Riemann.Tensor), coords)
	case geometry.StageRicci:
		out.Result = report.Success(report.TypeRicci, report.NewTensorData(res.Ricci.Tensor), coords)
	case geometry.StageRicciScalar:
		out.Result = report.Success(report.TypeRicciScalar, &report.ScalarData{
			Expression: res.RicciScalar.Value.String(),
			Dimension:  m.Dim(),
		}, coords)
	case geometry.StageEinstein:
		out.Result = report.Success(report.TypeEinstein, report.NewTensorData(res.Einstein.Tensor), coords)
	}
	return nil
}

// collect lists the nonzero components of every computed stage.
func collect(res *geometry.Result, into map[string][]report.TensorComponent) {
	fields := map[geometry.Stage]*geometry.Field{
		geometry.StageChristoffel: res.Christoffel,
		geometry.StageRiemann:     res.Riemann,
		geometry.StageRicci:       res.Ricci,
		geometry.StageEinstein:    res.Einstein,
	}
	for st, f := range fields {
		if f != nil {
			into[st.String()] = report.Components(f.Tensor)
		}
	}
	if res.RicciScalar != nil {
		into[geometry.StageRicciScalar.String()] = []report.TensorComponent{
			{Indices: []int{}, Expression: res.RicciScalar.Value.String()},
		}
	}
}

func (s *Service) verify(ctx context.Context, req Request, out *Outcome) error {
	m, err := s.Metric(req)
	if err != nil {
		return err
	}
	src, err := req.StressEnergy.Source(s.parser(req), req.Lambda)
	if err != nil {
		return err
	}
	rep, err := s.verifier.Verify(ctx, m, src)
	if err != nil {
		return err
	}
	out.Curvature = rep.Curvature
	out.Status = rep.Status
	collect(rep.Curvature, out.Tensors)
	out.Tensors["residual"] = report.Components(rep.Residuals)

	offending := rep.Offending
	if offending == nil {
		offending = []verify.Offense{}
	}
	out.Result = report.Success(report.TypeVerification, &VerificationData{
		ConstraintsSatisfied: rep.Status,
		SourceType:           rep.SourceType,
		Residuals:            rep.Residuals.Strings(),
		Offending:            offending,
	}, m.Coords())
	return nil
}

func (s *Service) solve(ctx context.Context, req Request, out *Outcome) error {
	if req.Coords == nil {
		return fmt.Errorf("%w: coords", ErrMissingInput)
	}
	if req.Symmetry == "" {
		return fmt.Errorf("%w: symmetry", ErrMissingInput)
	}
	var sols []*solver.Solution
	if req.All {
		all, err := s.solver.SolveAll(ctx, req.Coords, req.Symmetry)
		if err != nil && !errors.Is(err, solver.ErrNoMatch) {
			return err
		}
		sols = all
	} else {
		sol, err := s.solver.SolveVacuum(ctx, req.Coords, req.Symmetry)
		if err != nil && !errors.Is(err, solver.ErrNoMatch) {
			return err
		}
		if sol != nil {
			sols = []*solver.Solution{sol}
		}
	}

	if len(sols) == 0 {
		s.log.Info("no candidate verified", "symmetry", req.Symmetry)
		out.Result = report.Success(report.TypeVacuum, report.NoSolution, req.Coords)
		return nil
	}
	out.Status = verify.Satisfied
	for _, sol := range sols {
		var comps []report.TensorComponent
		for a, row := range sol.Metric {
			for b, v := range row {
				if v != "0" {
					comps = append(comps, report.TensorComponent{Indices: []int{a, b}, Expression: v})
				}
			}
		}
		out.Tensors[sol.Name] = comps
	}
	if len(sols) == 1 && !req.All {
		out.Request.Metric = sols[0].Metric
		out.Request.Lambda = sols[0].Lambda
	}
	out.Result = report.Success(report.TypeVacuum, sols, req.Coords)
	return nil
}

func (s *Service) construct(req Request, out *Outcome) error {
	if req.Coords == nil {
		return fmt.Errorf("%w: coords", ErrMissingInput)
	}
	if err := tensor.ValidateCoords(req.Coords); err != nil {
		return err
	}
	src, err := req.StressEnergy.Source(s.parser(req), req.Lambda)
	if err != nil {
		return err
	}
	sys, err := equations.Construct(src, len(req.Coords))
	if err != nil {
		return err
	}
	out.Tensors["field_equations"] = sys.FieldEquations
	out.Result = report.Success(report.TypeEquations, sys, req.Coords)
	return nil
}
