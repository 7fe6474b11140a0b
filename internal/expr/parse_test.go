package expr

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 + 2*3", "1 + 2*3"},
		{"(a + b)*c", "(a + b)*c"},
		{"-x^2", "-x^2"},
		{"2^3^2", "2^3^2"},
		{"a/b/c", "a/b/c"},
		{"2*M*r", "2*M*r"},
		{"a/b*c", "a/b*c"},
		{"a*(b*c)", "a*(b*c)"},
		{"a - (b - c)", "a - (b - c)"},
		{"x**2", "x^2"},
		{"ln(x)", "log(x)"},
		{"sin(theta)^2", "sin(theta)^2"},
		{"r^2 * sin(theta)^2", "r^2*sin(theta)^2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseEvaluatesWithPrecedence(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2^3^2", 512},
		{"-2^2", -4},
		{"2*3 - 4/2", 4},
		{"8/2/2", 2},
		{"2^-1", 0.5},
		{"1.5e1 + 0.5", 15.5},
	}
	for _, tt := range tests {
		e, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		got, err := Eval(e, nil)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, tt.in)
	}
}

func TestParseDecimalIsExact(t *testing.T) {
	e, err := Parse("0.25")
	require.NoError(t, err)
	require.True(t, e.IsNumber())
	assert.Equal(t, 0, e.Value().Cmp(big.NewRat(1, 4)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"   ", 0},
		{"(x + 1", 6},
		{"x + 1)", 5},
		{"2x", 1},
		{"2 (x)", 2},
		{"foo(x)", 0},
		{"x $ y", 2},
		{"sin(x, y)", 5},
		{"x +", 3},
		{"sin", 0},
		{"x'", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tt.pos, pe.Position)
			assert.Equal(t, tt.in, pe.Text)
			assert.NotEmpty(t, pe.Reason)
		})
	}
}

func TestParseUndefinedFunctions(t *testing.T) {
	p := NewParser(WithFunctions("a"))

	e, err := p.Parse("a''(t)^2 + a(t)")
	require.NoError(t, err)
	assert.Equal(t, "a''(t)^2 + a(t)", e.String())

	calls := UndefinedCalls(e)
	assert.Contains(t, calls, "a(t)")
	assert.Contains(t, calls, "a''(t)")
	assert.Equal(t, 2, calls["a''(t)"].Prime())

	_, err = Parse("a(t)")
	require.Error(t, err, "undeclared functions are rejected")

	_, err = p.Parse("sin'(t)")
	require.Error(t, err, "primes need an undefined function")
}

func TestParsePiIsSymbol(t *testing.T) {
	e, err := Parse("8*pi")
	require.NoError(t, err)
	assert.Equal(t, []string{"pi"}, FreeSymbols(e))
	v, err := Eval(e, nil)
	require.NoError(t, err)
	assert.InDelta(t, 8*math.Pi, v, 1e-12)
}
