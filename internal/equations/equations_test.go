package equations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/report"
	"github.com/nightness/tensorcalc/internal/tensor"
	"github.com/nightness/tensorcalc/internal/verify"
)

func TestConstructVacuum(t *testing.T) {
	sys, err := Construct(verify.VacuumSource(), 4)
	require.NoError(t, err)
	require.Len(t, sys.FieldEquations, 16)
	assert.Equal(t, "G_0_0", sys.FieldEquations[0].Expression)
	assert.Equal(t, []int{2, 3}, sys.FieldEquations[11].Indices)
	assert.Len(t, sys.Unknowns, 10)
	assert.Equal(t, "g_0_0", sys.Unknowns[0])
	assert.Equal(t, "g_3_3", sys.Unknowns[9])
	assert.Empty(t, sys.ConstraintEquations)
}

func TestConstructWithSource(t *testing.T) {
	se, err := report.ParseStressEnergy(`{"components": [["rho", 0], [0, "p"]], "tensor_type": "perfect_fluid", "parameters": {"rho": "density"}}`)
	require.NoError(t, err)
	src, err := se.Source(expr.NewParser(), "3*H^2")
	require.NoError(t, err)

	sys, err := Construct(src, 2)
	require.NoError(t, err)
	assert.Equal(t, "G_0_0 + 3*H^2*g_0_0 - 8*pi*T_0_0", sys.FieldEquations[0].Expression)
	assert.Equal(t, "G_0_1 + 3*H^2*g_0_1", sys.FieldEquations[1].Expression)
	assert.Equal(t, "rho", sys.KnownParameters["T_0_0"])
	assert.Equal(t, "3*H^2", sys.KnownParameters["Lambda"])
	assert.Equal(t, "density", sys.KnownParameters["rho"])
	assert.Equal(t, []string{"g_0_0", "g_0_1", "g_1_1"}, sys.Unknowns)
}

func TestConstructRejectsMismatch(t *testing.T) {
	se, err := report.ParseStressEnergy(`[["rho", 0], [0, "p"]]`)
	require.NoError(t, err)
	src, err := se.Source(expr.NewParser(), "")
	require.NoError(t, err)
	_, err = Construct(src, 4)
	assert.ErrorIs(t, err, verify.ErrSourceDimension)

	_, err = Construct(verify.VacuumSource(), 5)
	assert.ErrorIs(t, err, tensor.ErrDimension)
}

func TestResidualsOfDeSitter(t *testing.T) {
	m, err := tensor.BuildMetric(expr.NewArena(), [][]string{
		{"-1", "0", "0", "0"},
		{"0", "exp(H*t)^2", "0", "0"},
		{"0", "0", "exp(H*t)^2*r^2", "0"},
		{"0", "0", "0", "exp(H*t)^2*r^2*sin(theta)^2"},
	}, []string{"t", "r", "theta", "phi"})
	require.NoError(t, err)

	src, err := (*report.StressEnergy)(nil).Source(expr.NewParser(), "3*H^2")
	require.NoError(t, err)
	res, status, err := Residuals(context.Background(), verify.New(), m, src)
	require.NoError(t, err)
	assert.Equal(t, verify.Satisfied, status)
	require.Len(t, res, 16)
	for _, c := range res {
		assert.Equal(t, "0", c.Expression, "%v", c.Indices)
	}

	src, err = (*report.StressEnergy)(nil).Source(expr.NewParser(), "")
	require.NoError(t, err)
	_, status, err = Residuals(context.Background(), verify.New(), m, src)
	require.NoError(t, err)
	assert.Equal(t, verify.Violated, status)
}
