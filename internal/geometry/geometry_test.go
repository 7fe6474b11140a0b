package geometry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightness/tensorcalc/internal/compute"
	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/tensor"
)

var schwarzschild = [][]string{
	{"-(1 - 2*M/r)", "0", "0", "0"},
	{"0", "1/(1 - 2*M/r)", "0", "0"},
	{"0", "0", "r^2", "0"},
	{"0", "0", "0", "r^2*sin(theta)^2"},
}

func buildMetric(t *testing.T, matrix [][]string, coords ...string) *tensor.Metric {
	t.Helper()
	m, err := tensor.BuildMetric(expr.NewArena(), matrix, coords)
	require.NoError(t, err)
	return m
}

func assertNormal(t *testing.T, m *tensor.Metric, got *expr.Rational, want string) {
	t.Helper()
	e, err := expr.Parse(want)
	require.NoError(t, err)
	w, err := m.Arena().Normalize(e)
	require.NoError(t, err)
	assert.True(t, got.Equal(w), "got %s, want %s", got, want)
}

func TestPolarPlaneIsFlat(t *testing.T) {
	m := buildMetric(t, [][]string{{"1", "0"}, {"0", "r^2"}}, "r", "phi")
	res, err := New().Compute(context.Background(), m, StageEinstein)
	require.NoError(t, err)

	assertNormal(t, m, res.Christoffel.Normal(0, 1, 1), "-r")
	assertNormal(t, m, res.Christoffel.Normal(1, 0, 1), "1/r")
	assertNormal(t, m, res.Christoffel.Normal(1, 1, 0), "1/r")
	assert.True(t, res.Christoffel.Normal(0, 0, 0).IsZero())

	assert.Empty(t, res.Riemann.NonZero())
	assert.Empty(t, res.Ricci.NonZero())
	assert.Equal(t, "0", res.RicciScalar.Value.String())
	assert.Empty(t, res.Einstein.NonZero())
}

func TestTwoSphereCurvature(t *testing.T) {
	m := buildMetric(t, [][]string{{"R^2", "0"}, {"0", "R^2*sin(theta)^2"}}, "theta", "phi")
	res, err := New().Compute(context.Background(), m, StageRicciScalar)
	require.NoError(t, err)

	assertNormal(t, m, res.Christoffel.Normal(0, 1, 1), "-sin(theta)*cos(theta)")
	assertNormal(t, m, res.Christoffel.Normal(1, 0, 1), "cos(theta)/sin(theta)")
	assertNormal(t, m, res.Riemann.Normal(0, 1, 0, 1), "sin(theta)^2")
	assertNormal(t, m, res.Riemann.Normal(0, 1, 1, 0), "-sin(theta)^2")
	assertNormal(t, m, res.Ricci.Normal(0, 0), "1")
	assertNormal(t, m, res.RicciScalar.Normal, "2/R^2")
	assert.Nil(t, res.Einstein, "stages after the requested one are skipped")
}

func TestChristoffelIsSymmetric(t *testing.T) {
	m := buildMetric(t, [][]string{
		{"1", "y", "0"},
		{"y", "1 + y^2", "z"},
		{"0", "z", "2"},
	}, "x", "y", "z")
	gamma, err := New().Christoffel(context.Background(), m)
	require.NoError(t, err)
	for mu := 0; mu < 3; mu++ {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				assert.Equal(t, gamma.At(mu, a, b).String(), gamma.At(mu, b, a).String())
			}
		}
	}
}

func TestSchwarzschildIsRicciFlat(t *testing.T) {
	m := buildMetric(t, schwarzschild, "t", "r", "theta", "phi")
	res, err := New(WithWorkers(4)).Compute(context.Background(), m, StageEinstein)
	require.NoError(t, err)

	assertNormal(t, m, res.Christoffel.Normal(1, 0, 0), "M*(r - 2*M)/r^3")
	assertNormal(t, m, res.Christoffel.Normal(2, 1, 2), "1/r")
	assert.NotEmpty(t, res.Riemann.NonZero())
	assert.Empty(t, res.Ricci.NonZero())
	assert.True(t, res.RicciScalar.Normal.IsZero())
	assert.Empty(t, res.Einstein.NonZero())
	assert.Len(t, res.Timings, 5)
}

func TestRiemannAntisymmetry(t *testing.T) {
	m := buildMetric(t, schwarzschild, "t", "r", "theta", "phi")
	eng := New()
	gamma, err := eng.Christoffel(context.Background(), m)
	require.NoError(t, err)
	riem, err := eng.Riemann(context.Background(), m, gamma)
	require.NoError(t, err)
	for off := 0; off < riem.Len(); off++ {
		i := riem.Indices(off)
		assert.True(t, riem.Normal(i[0], i[1], i[2], i[3]).Equal(riem.Normal(i[0], i[1], i[3], i[2]).Neg()))
	}
}

func TestSerialAndParallelAgree(t *testing.T) {
	matrix := [][]string{
		{"-1 + w^2*r^2", "0", "w*r^2"},
		{"0", "1", "0"},
		{"w*r^2", "0", "r^2"},
	}
	a, err := New(WithBackend(compute.Serial{})).Compute(context.Background(), buildMetric(t, matrix, "t", "r", "phi"), StageEinstein)
	require.NoError(t, err)
	b, err := New(WithWorkers(8)).Compute(context.Background(), buildMetric(t, matrix, "t", "r", "phi"), StageEinstein)
	require.NoError(t, err)
	assert.Equal(t, a.Riemann.Strings(), b.Riemann.Strings())
	assert.Equal(t, a.Einstein.Strings(), b.Einstein.Strings())
}

func TestComputeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := buildMetric(t, schwarzschild, "t", "r", "theta", "phi")
	_, err := New().Compute(ctx, m, StageEinstein)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStage(t *testing.T) {
	for s, name := range stageNames {
		got, err := ParseStage(name)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, name, s.String())
	}
	_, err := ParseStage("weyl")
	assert.Error(t, err)
}
