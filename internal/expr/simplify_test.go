package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Expr {
	t.Helper()
	e, err := NewParser(WithFunctions("f")).Parse(s)
	require.NoError(t, err, s)
	return e
}

func TestSimplifyRules(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x + 0", "x"},
		{"x*1", "x"},
		{"x*0", "0"},
		{"x^1", "x"},
		{"x^0", "1"},
		{"2*3 + 4", "10"},
		{"1/2 + 1/3", "5/6"},
		{"x + x", "2*x"},
		{"x*x", "x^2"},
		{"x^2*x^3", "x^5"},
		{"--x", "x"},
		{"x - x", "0"},
		{"(x + 1) - (x + 1)", "0"},
		{"2*x + 3*x", "5*x"},
		{"x/x", "1"},
		{"sqrt(4)", "2"},
		{"sqrt(x)", "sqrt(x)"},
		{"exp(log(y))", "y"},
		{"log(exp(y))", "y"},
		{"sin(0) + cos(0)", "1"},
		{"(x^2)^3", "x^6"},
		{"x - y/2", "x - y/2"},
		{"f(t)*f(t)", "f(t)^2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Simplify(mustParse(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

var simplifyCorpus = []string{
	"x + y - x",
	"(x + 1)*(x + 1)*(x - 1)",
	"-(1 - 2*M/r)",
	"1/(1 - 2*M/r)",
	"r^2*sin(theta)^2",
	"a*b/(c*d)",
	"sin(x)^2 + cos(x)^2",
	"2*x*y - 3*y*x + x^2/x",
	"exp(H*t)^2*r^2",
	"-(2*f(t)*f''(t) + f'(t)^2)/(8*pi)",
	"(r^2 + a^2*cos(theta)^2)/(r^2 - 2*M*r + a^2)",
	"x^(1/2)*x^(1/2)",
	"1/sqrt(x) - 3/4",
	"-x^2 + -(-y)",
}

func TestSimplifyIdempotent(t *testing.T) {
	for _, in := range simplifyCorpus {
		t.Run(in, func(t *testing.T) {
			once := Simplify(mustParse(t, in))
			twice := Simplify(once)
			assert.True(t, once.Equal(twice), "%s -> %s -> %s", in, once, twice)
		})
	}
}

func TestSimplifiedFormRoundTrips(t *testing.T) {
	for _, in := range simplifyCorpus {
		t.Run(in, func(t *testing.T) {
			s := Simplify(mustParse(t, in))
			back := Simplify(mustParse(t, s.String()))
			assert.Equal(t, s.String(), back.String())
		})
	}
}

func TestSimplifyPreservesValue(t *testing.T) {
	env := Env{"x": 1.3, "y": 0.7, "M": 0.4, "r": 2.1, "theta": 0.9, "H": 0.3, "t": 1.1,
		"a": 0.5, "b": 1.7, "c": 2.3, "d": 0.8,
		"f(t)": 1.4, "f'(t)": 0.6, "f''(t)": -0.2}
	for _, in := range simplifyCorpus {
		e := mustParse(t, in)
		want, err := Eval(e, env)
		require.NoError(t, err, in)
		got, err := Eval(Simplify(e), env)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9*(1+abs(want)), in)
	}
}

func TestSubstituteAllIsSimultaneous(t *testing.T) {
	e := mustParse(t, "x - 2*y")
	got := SubstituteAll(e, map[string]*Expr{"x": Sym("y"), "y": Sym("x")})
	assert.Equal(t, "-2*x + y", Simplify(got).String())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
