package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nightness/tensorcalc/internal/calc"
	"github.com/nightness/tensorcalc/internal/logger"
	"github.com/nightness/tensorcalc/internal/storage"
	"github.com/nightness/tensorcalc/internal/verify"
)

var ErrExpectation = errors.New("batch: unexpected verification status")

// Scenario is a scripted sequence of engine invocations.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one request, optionally archived and optionally checked against an
// expected verification status.
type Step struct {
	Name         string `yaml:"name"`
	calc.Request `yaml:",inline"`
	Save         bool   `yaml:"save"`
	Expect       string `yaml:"expect"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepResult records what a step produced.
type StepResult struct {
	Step    int
	Name    string
	Outcome *calc.Outcome
	RunID   string
}

type Runner struct {
	svc   *calc.Service
	store *storage.Store
	log   *slog.Logger
}

// NewRunner returns a runner. A nil store disables archiving.
func NewRunner(svc *calc.Service, store *storage.Store) *Runner {
	return &Runner{svc: svc, store: store, log: logger.ForComponent("batch")}
}

// Run executes the steps in order and stops at the first failure. Results of
// the steps that completed are returned with the error.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = step.Command
		}
		r.log.Info("running step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "name", name)

		out, err := r.svc.Do(ctx, step.Request)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Expect != "" {
			want, err := verify.ParseStatus(step.Expect)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			if out.Status != want {
				return results, fmt.Errorf("step %d: %w: got %s, want %s", i+1, ErrExpectation, out.Status, want)
			}
		}

		res := StepResult{Step: i + 1, Name: name, Outcome: out}
		if step.Save && r.store != nil {
			id, err := r.store.Save(out.Archive())
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.RunID = id
		}
		results = append(results, res)
	}

	return results, nil
}

// SurveyResult is the verification status of one preset.
type SurveyResult struct {
	Preset  string
	Status  verify.Status
	Elapsed time.Duration
}

// Survey verifies each preset against its own source, running up to workers
// presets at once. Results come back in the order of presets.
func (r *Runner) Survey(ctx context.Context, presets []string, workers int) ([]SurveyResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	var mu sync.Mutex
	results := make([]SurveyResult, 0, len(presets))
	for _, name := range presets {
		g.Go(func() error {
			out, err := r.svc.Do(ctx, calc.Request{Command: calc.CmdVerify, Preset: name})
			if err != nil {
				return fmt.Errorf("preset %s: %w", name, err)
			}
			mu.Lock()
			results = append(results, SurveyResult{Preset: name, Status: out.Status, Elapsed: out.Elapsed})
			mu.Unlock()
			r.log.Info("preset verified", "preset", name, "status", out.Status.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make(map[string]int, len(presets))
	for i, name := range presets {
		order[name] = i
	}
	sort.Slice(results, func(i, j int) bool { return order[results[i].Preset] < order[results[j].Preset] })
	return results, nil
}
