package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightness/tensorcalc/internal/calc"
)

func TestRequestParsesFlags(t *testing.T) {
	metricJSON = `[["-1", 0], [0, "a(t)^2"]]`
	coordsJSON = `["t", "x"]`
	stressEnergyJSON = `{"components": [["rho", 0], [0, "p"]], "tensor_type": "perfect_fluid"}`
	lambda = "L"
	t.Cleanup(func() { metricJSON, coordsJSON, stressEnergyJSON, lambda = "", "", "", "" })

	req, err := request(calc.CmdVerify)
	require.NoError(t, err)
	assert.Equal(t, calc.CmdVerify, req.Command)
	assert.Equal(t, "0", req.Metric[0][1])
	assert.Equal(t, []string{"t", "x"}, req.Coords)
	assert.Equal(t, "perfect_fluid", req.StressEnergy.TensorType)
	assert.Equal(t, "L", req.Lambda)
}

func TestRequestRejectsBadJSON(t *testing.T) {
	for _, bad := range []*string{&metricJSON, &coordsJSON, &stressEnergyJSON} {
		*bad = "{not json"
		_, err := request(calc.CmdRicci)
		assert.Error(t, err)
		*bad = ""
	}
}

func TestRequestBoundaryConditions(t *testing.T) {
	t.Cleanup(func() { boundary = "" })

	for _, ok := range []string{"", "{}", " [] ", "null"} {
		boundary = ok
		_, err := request(calc.CmdSolve)
		assert.NoError(t, err, ok)
	}

	boundary = `{"r": "infinity"}`
	_, err := request(calc.CmdSolve)
	assert.True(t, errors.Is(err, errBoundaryConditions))
}
