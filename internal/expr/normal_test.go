package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProvesIdentities(t *testing.T) {
	identities := []string{
		"sin(x)^2 + cos(x)^2 - 1",
		"(x^2 - 1)/(x - 1) - (x + 1)",
		"tan(x) - sin(x)/cos(x)",
		"sqrt(x)^2 - x",
		"sqrt(x)*sqrt(x)*sqrt(x) - x*sqrt(x)",
		"sqrt(1 - 2*M/r)^2 - (1 - 2*M/r)",
		"1/(1 - 2*M/r) - r/(r - 2*M)",
		"(x + y)^2 - x^2 - 2*x*y - y^2",
		"exp(log(x)) - x",
		"cos(theta)^4 - (1 - sin(theta)^2)^2",
		"1/(x*y) - 1/x*1/y",
		"(r^2 - 2*M*r)/r^2 - (1 - 2*M/r)",
		"f''(t)*f(t)/f(t)^2 - f''(t)/f(t)",
	}
	for _, in := range identities {
		t.Run(in, func(t *testing.T) {
			r, err := NewArena().Normalize(mustParse(t, in))
			require.NoError(t, err)
			assert.True(t, r.IsZero(), "residual %s", r)
		})
	}
}

func TestNormalizeKeepsNonIdentities(t *testing.T) {
	for _, in := range []string{"x - y", "sin(x)^2 - cos(x)^2", "sqrt(x) - x", "1/(x + 1) - 1/x"} {
		r, err := NewArena().Normalize(mustParse(t, in))
		require.NoError(t, err)
		assert.False(t, r.IsZero(), in)
	}
}

func TestNormalizeErrors(t *testing.T) {
	ar := NewArena()

	_, err := ar.Normalize(mustParse(t, "x/(y - y)"))
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = ar.Normalize(mustParse(t, "0^(-1/2)"))
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = ar.Normalize(mustParse(t, "(x + 1)^1000"))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = ar.Normalize(mustParse(t, "0^(-1)"))
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestNormalizeFoldsLargeNumericPowers(t *testing.T) {
	ar := NewArena()
	r, err := ar.Normalize(mustParse(t, "10^400"))
	require.NoError(t, err)
	c, ok := r.Constant()
	require.True(t, ok)
	assert.Equal(t, 401, len(c.Num().String()))

	r, err = ar.Normalize(mustParse(t, "10^400*x - x*10^400"))
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = ar.Normalize(mustParse(t, "2^(-300)"))
	require.NoError(t, err)
	c, ok = r.Constant()
	require.True(t, ok)
	assert.Equal(t, 301, c.Denom().BitLen())
}

func TestCanonicalAgreesAcrossForms(t *testing.T) {
	ar := NewArena()
	pairs := [][2]string{
		{"(x + 1)^2", "x^2 + 2*x + 1"},
		{"1 - 2*M/r", "(r - 2*M)/r"},
		{"cos(theta)^2", "1 - sin(theta)^2"},
		{"tan(x)", "sin(x)/cos(x)"},
	}
	for _, p := range pairs {
		a, err := ar.Canonical(mustParse(t, p[0]))
		require.NoError(t, err)
		b, err := ar.Canonical(mustParse(t, p[1]))
		require.NoError(t, err)
		assert.Equal(t, a.String(), b.String(), "%s vs %s", p[0], p[1])
	}
}

func TestCanonicalIsStable(t *testing.T) {
	ar := NewArena()
	for _, in := range simplifyCorpus {
		t.Run(in, func(t *testing.T) {
			once, err := ar.Canonical(mustParse(t, in))
			require.NoError(t, err)
			twice, err := NewArena().Canonical(mustParse(t, once.String()))
			require.NoError(t, err)
			assertEquivalent(t, ar, once, twice)
		})
	}
}

func TestCanonicalPreservesValue(t *testing.T) {
	env := Env{"x": 1.3, "y": 0.7, "M": 0.4, "r": 2.1, "theta": 0.9, "H": 0.3, "t": 1.1,
		"a": 0.5, "b": 1.7, "c": 2.3, "d": 0.8,
		"f(t)": 1.4, "f'(t)": 0.6, "f''(t)": -0.2}
	ar := NewArena()
	for _, in := range simplifyCorpus {
		e := mustParse(t, in)
		want, err := Eval(e, env)
		require.NoError(t, err, in)
		c, err := ar.Canonical(e)
		require.NoError(t, err, in)
		got, err := Eval(c, env)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9*(1+abs(want)), "%s -> %s", in, c)
	}
}

func TestRationalArithmetic(t *testing.T) {
	ar := NewArena()
	x, err := ar.Normalize(Sym("x"))
	require.NoError(t, err)
	one := ar.Int(1)

	sum := x.Add(one)
	prod := sum.Mul(x.Sub(one))
	sq, err := x.PowInt(2)
	require.NoError(t, err)
	assert.True(t, prod.Equal(sq.Sub(one)))

	q, err := prod.Div(sum)
	require.NoError(t, err)
	assert.True(t, q.Equal(x.Sub(one)))
	assert.True(t, q.IsPolynomial())

	inv, err := x.Inv()
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Factors())
	assert.True(t, inv.Mul(x).Equal(one))

	c, ok := ar.Int(3).Constant()
	require.True(t, ok)
	assert.Equal(t, "3", c.RatString())
	_, ok = x.Constant()
	assert.False(t, ok)

	_, err = ar.Int(0).Inv()
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}
