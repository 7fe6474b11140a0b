package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/geometry"
)

var ErrBadComponent = errors.New("calc: bad component reference")

// ComponentRef names one component of a computed stage, e.g. "einstein:0,0"
// or "ricci-scalar".
type ComponentRef struct {
	Stage   geometry.Stage
	Indices []int
}

func ParseComponentRef(s string) (ComponentRef, error) {
	name, rest, hasIdx := strings.Cut(s, ":")
	stage, err := geometry.ParseStage(strings.TrimSpace(name))
	if err != nil {
		return ComponentRef{}, fmt.Errorf("%w: %w", ErrBadComponent, err)
	}
	ref := ComponentRef{Stage: stage}
	if hasIdx {
		for _, f := range strings.Split(rest, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return ComponentRef{}, fmt.Errorf("%w: %q", ErrBadComponent, s)
			}
			ref.Indices = append(ref.Indices, v)
		}
	}
	want := map[geometry.Stage]int{
		geometry.StageChristoffel: 3,
		geometry.StageRiemann:     4,
		geometry.StageRicci:       2,
		geometry.StageRicciScalar: 0,
		geometry.StageEinstein:    2,
	}[stage]
	if len(ref.Indices) != want {
		return ComponentRef{}, fmt.Errorf("%w: %s takes %d indices", ErrBadComponent, stage, want)
	}
	return ref, nil
}

func (r ComponentRef) String() string {
	if len(r.Indices) == 0 {
		return r.Stage.String()
	}
	parts := make([]string, len(r.Indices))
	for i, v := range r.Indices {
		parts[i] = strconv.Itoa(v)
	}
	return r.Stage.String() + ":" + strings.Join(parts, ",")
}

// Lookup returns the referenced component of res.
func (r ComponentRef) Lookup(res *geometry.Result) (*expr.Expr, error) {
	if r.Stage == geometry.StageRicciScalar {
		if res.RicciScalar == nil {
			return nil, fmt.Errorf("%w: %s not computed", ErrBadComponent, r.Stage)
		}
		return res.RicciScalar.Value, nil
	}
	f := map[geometry.Stage]*geometry.Field{
		geometry.StageChristoffel: res.Christoffel,
		geometry.StageRiemann:     res.Riemann,
		geometry.StageRicci:       res.Ricci,
		geometry.StageEinstein:    res.Einstein,
	}[r.Stage]
	if f == nil {
		return nil, fmt.Errorf("%w: %s not computed", ErrBadComponent, r.Stage)
	}
	for _, i := range r.Indices {
		if i < 0 || i >= f.Dim() {
			return nil, fmt.Errorf("%w: index %d out of range", ErrBadComponent, i)
		}
	}
	return f.At(r.Indices...), nil
}

// Profile evaluates e at n evenly spaced values of along in [from, to], with
// every other symbol bound by env. Points where e is not finite are skipped.
func Profile(e *expr.Expr, along string, from, to float64, n int, env expr.Env) (xs, ys []float64, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("calc: profile needs at least 2 points, got %d", n)
	}
	vars := make(expr.Env, len(env)+1)
	for k, v := range env {
		vars[k] = v
	}
	step := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		x := from + float64(i)*step
		vars[along] = x
		y, err := expr.Eval(e, vars)
		if errors.Is(err, expr.ErrNotFinite) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(ys) == 0 {
		return nil, nil, fmt.Errorf("calc: %s is not finite anywhere on [%g, %g]", e, from, to)
	}
	return xs, ys, nil
}

// ParseBindings parses "M=1,Q=0.5" style symbol bindings.
func ParseBindings(pairs []string) (expr.Env, error) {
	env := expr.Env{}
	for _, p := range pairs {
		name, val, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("calc: binding %q is not name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("calc: binding %q: %w", p, err)
		}
		env[strings.TrimSpace(name)] = v
	}
	return env, nil
}
