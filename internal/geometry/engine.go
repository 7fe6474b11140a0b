package geometry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nightness/tensorcalc/internal/compute"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/tensor"
)

// Stage names a point in the Christoffel → Riemann → Ricci → Einstein chain.
type Stage int

const (
	StageChristoffel Stage = iota
	StageRiemann
	StageRicci
	StageRicciScalar
	StageEinstein
)

var stageNames = map[Stage]string{
	StageChristoffel: "christoffel",
	StageRiemann:     "riemann",
	StageRicci:       "ricci",
	StageRicciScalar: "ricci-scalar",
	StageEinstein:    "einstein",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage maps a command or result name to a stage.
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage: %s", name)
}

// Engine evaluates the curvature chain on a compute backend. It holds no
// results between calls.
type Engine struct {
	backend compute.Backend
	log     *slog.Logger
}

type Option func(*Engine)

func WithBackend(b compute.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

func WithWorkers(n int) Option {
	return func(e *Engine) { e.backend = compute.New(n) }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{backend: compute.New(0), log: logger.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result holds every stage computed up to the requested one; later stages
// are nil.
type Result struct {
	Metric      *tensor.Metric
	Christoffel *Field
	Riemann     *Field
	Ricci       *Field
	RicciScalar *Scalar
	Einstein    *Field
	Timings     map[Stage]time.Duration
}

// Compute runs the chain through stage upTo. Each stage finishes before the
// next starts.
func (e *Engine) Compute(ctx context.Context, m *tensor.Metric, upTo Stage) (*Result, error) {
	res := &Result{Metric: m, Timings: map[Stage]time.Duration{}}
	run := func(s Stage, fn func() error) error {
		if s > upTo {
			return nil
		}
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		res.Timings[s] = time.Since(start)
		e.log.Debug("stage done", "stage", s.String(), "dim", m.Dim(),
			"backend", e.backend.Name(), "elapsed", res.Timings[s])
		return nil
	}

	var err error
	if err := run(StageChristoffel, func() error {
		res.Christoffel, err = e.Christoffel(ctx, m)
		return err
	}); err != nil {
		return nil, err
	}
	if err := run(StageRiemann, func() error {
		res.Riemann, err = e.Riemann(ctx, m, res.Christoffel)
		return err
	}); err != nil {
		return nil, err
	}
	if err := run(StageRicci, func() error {
		res.Ricci, err = e.RicciTensor(ctx, m, res.Riemann)
		return err
	}); err != nil {
		return nil, err
	}
	if err := run(StageRicciScalar, func() error {
		res.RicciScalar = e.RicciScalar(m, res.Ricci)
		return nil
	}); err != nil {
		return nil, err
	}
	if err := run(StageEinstein, func() error {
		res.Einstein, err = e.EinsteinTensor(ctx, m, res.Ricci, res.RicciScalar)
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}
