package expr

import (
	"fmt"
	"math"
)

// Env maps symbol names, and printed undefined function applications such
// as "a(t)" or "a'(t)", to values. pi evaluates to math.Pi unless bound.
type Env map[string]float64

// Eval evaluates e numerically.
func Eval(e *Expr, env Env) (float64, error) {
	v, err := eval(e, env)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

func eval(e *Expr, env Env) (float64, error) {
	switch e.kind {
	case KindNumber:
		f, _ := e.num.Float64()
		return f, nil
	case KindSymbol:
		if v, ok := env[e.name]; ok {
			return v, nil
		}
		if e.name == symPi {
			return math.Pi, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnbound, e.name)
	case KindNeg:
		v, err := eval(e.args[0], env)
		return -v, err
	case KindAdd, KindMul:
		acc := 0.0
		if e.kind == KindMul {
			acc = 1
		}
		for _, a := range e.args {
			v, err := eval(a, env)
			if err != nil {
				return 0, err
			}
			if e.kind == KindMul {
				acc *= v
			} else {
				acc += v
			}
		}
		return acc, nil
	case KindSub, KindDiv, KindPow:
		a, err := eval(e.args[0], env)
		if err != nil {
			return 0, err
		}
		b, err := eval(e.args[1], env)
		if err != nil {
			return 0, err
		}
		switch e.kind {
		case KindSub:
			return a - b, nil
		case KindDiv:
			return a / b, nil
		}
		return math.Pow(a, b), nil
	case KindFunc:
		if isBuiltin(e) {
			v, err := eval(e.args[0], env)
			if err != nil {
				return 0, err
			}
			return builtins[e.name].eval(v), nil
		}
		if v, ok := env[e.String()]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnbound, e.String())
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupported, e.kind)
}
