package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	env := Env{"x": 0.5, "f(t)": 2, "f'(t)": -1}
	tests := []struct {
		in   string
		want float64
	}{
		{"sin(x)^2 + cos(x)^2", 1},
		{"exp(log(3))", 3},
		{"tanh(x) - sinh(x)/cosh(x)", 0},
		{"sqrt(16)*x", 2},
		{"f(t)*f'(t)", -2},
		{"pi/2", math.Pi / 2},
	}
	for _, tt := range tests {
		got, err := Eval(mustParse(t, tt.in), env)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, tt.in)
	}
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval(mustParse(t, "x + y"), Env{"x": 1})
	assert.True(t, errors.Is(err, ErrUnbound))

	_, err = Eval(mustParse(t, "f(t)"), Env{"t": 1})
	assert.True(t, errors.Is(err, ErrUnbound))

	_, err = Eval(mustParse(t, "1/x"), Env{"x": 0})
	assert.True(t, errors.Is(err, ErrNotFinite))

	_, err = Eval(mustParse(t, "log(x)"), Env{"x": -1})
	assert.True(t, errors.Is(err, ErrNotFinite))
}

func TestEvalPiCanBeBound(t *testing.T) {
	v, err := Eval(mustParse(t, "2*pi"), Env{"pi": 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}
