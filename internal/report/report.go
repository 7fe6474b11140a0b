package report

import (
	"encoding/json"
	"io"

	"github.com/nightness/tensorcalc/internal/tensor"
)

// Result types written to the result_type field.
const (
	TypeChristoffel  = "christoffel_symbols"
	TypeRiemann      = "riemann_tensor"
	TypeRicci        = "ricci_tensor"
	TypeRicciScalar  = "ricci_scalar"
	TypeEinstein     = "einstein_tensor"
	TypeVacuum       = "vacuum_solutions"
	TypeVerification = "solution_verification"
	TypeEquations    = "einstein_equations"
	TypeError        = "error"
)

// TensorResult is the envelope of every command's output.
type TensorResult struct {
	ResultType  string   `json:"result_type" yaml:"result_type"`
	Data        any      `json:"data" yaml:"data"`
	Coordinates []string `json:"coordinates" yaml:"coordinates"`
	Success     bool     `json:"success" yaml:"success"`
	Error       *string  `json:"error" yaml:"error"`
}

func Success(resultType string, data any, coords []string) *TensorResult {
	if coords == nil {
		coords = []string{}
	}
	return &TensorResult{ResultType: resultType, Data: data, Coordinates: coords, Success: true}
}

func Failure(err error) *TensorResult {
	msg := err.Error()
	return &TensorResult{ResultType: TypeError, Coordinates: []string{}, Error: &msg}
}

// TensorComponent is one indexed expression.
type TensorComponent struct {
	Indices    []int  `json:"indices" yaml:"indices"`
	Expression string `json:"expression" yaml:"expression"`
}

// Components lists the nonzero components of t in row-major order.
func Components(t *tensor.Tensor) []TensorComponent {
	out := []TensorComponent{}
	for _, c := range t.NonZero() {
		out = append(out, TensorComponent{Indices: c.Indices, Expression: c.Value.String()})
	}
	return out
}

// ChristoffelData is the payload of a christoffel result. Tensor holds
// every component nested as [μ][α][β].
type ChristoffelData struct {
	Symbols   []TensorComponent `json:"symbols" yaml:"symbols"`
	Dimension int               `json:"dimension" yaml:"dimension"`
	Tensor    any               `json:"tensor" yaml:"tensor"`
}

func NewChristoffelData(t *tensor.Tensor) *ChristoffelData {
	return &ChristoffelData{Symbols: Components(t), Dimension: t.Dim(), Tensor: t.Strings()}
}

// TensorData is the payload of the riemann, ricci and einstein results:
// the nonzero components and the full nested tensor.
type TensorData struct {
	Components []TensorComponent `json:"components" yaml:"components"`
	Dimension  int               `json:"dimension" yaml:"dimension"`
	Tensor     any               `json:"tensor" yaml:"tensor"`
}

func NewTensorData(t *tensor.Tensor) *TensorData {
	return &TensorData{Components: Components(t), Dimension: t.Dim(), Tensor: t.Strings()}
}

// WriteJSON writes v indented by two spaces with a trailing newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ScalarData is the payload of a ricci_scalar result.
type ScalarData struct {
	Expression string `json:"expression" yaml:"expression"`
	Dimension  int    `json:"dimension" yaml:"dimension"`
}

// NoSolution is the vacuum_solutions payload when no candidate verifies.
const NoSolution = "no solution found"
