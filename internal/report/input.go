package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nightness/tensorcalc/internal/expr"
	"github.com/nightness/tensorcalc/internal/verify"
)

// Value is an expression given either as a JSON string or a JSON number.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*v = Value(n.String())
	return nil
}

func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = Value(x)
	case int:
		*v = Value(strconv.Itoa(x))
	case float64:
		*v = Value(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return fmt.Errorf("expected a string or number, got %v", raw)
	}
	return nil
}

// Matrix is a square table of expression strings.
type Matrix [][]string

func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][]Value
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*m = fromValues(rows)
	return nil
}

func (m *Matrix) UnmarshalYAML(unmarshal func(any) error) error {
	var rows [][]Value
	if err := unmarshal(&rows); err != nil {
		return err
	}
	*m = fromValues(rows)
	return nil
}

func fromValues(rows [][]Value) Matrix {
	out := make(Matrix, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = string(v)
		}
	}
	return out
}

// ParseMatrix decodes a JSON matrix such as [["-1", 0], [0, "r^2"]].
func ParseMatrix(s string) (Matrix, error) {
	var m Matrix
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("metric: %w", err)
	}
	return m, nil
}

// ParseCoords decodes a JSON string array.
func ParseCoords(s string) ([]string, error) {
	var c []string
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, fmt.Errorf("coords: %w", err)
	}
	return c, nil
}

// StressEnergy is the stress-energy input: either a bare matrix or an
// object with components, tensor_type and parameters.
type StressEnergy struct {
	Components Matrix           `json:"components" yaml:"components"`
	TensorType string           `json:"tensor_type" yaml:"tensor_type"`
	Parameters map[string]Value `json:"parameters" yaml:"parameters"`
}

func ParseStressEnergy(s string) (*StressEnergy, error) {
	s = strings.TrimSpace(s)
	se := &StressEnergy{}
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &se.Components); err != nil {
			return nil, fmt.Errorf("stress-energy: %w", err)
		}
		return se, nil
	}
	if err := json.Unmarshal([]byte(s), se); err != nil {
		return nil, fmt.Errorf("stress-energy: %w", err)
	}
	return se, nil
}

// Source converts the input to a verifier source. A nil receiver is vacuum.
func (se *StressEnergy) Source(p *expr.Parser, lambda string) (verify.Source, error) {
	var comps [][]string
	if se != nil {
		comps = se.Components
	}
	src, err := verify.ParseSource(p, lambda, comps)
	if err != nil {
		return verify.Source{}, err
	}
	if se == nil {
		return src, nil
	}
	if se.TensorType != "" {
		src.Type = verify.SourceType(se.TensorType)
	}
	if len(se.Parameters) > 0 {
		src.Parameters = make(map[string]string, len(se.Parameters))
		for k, v := range se.Parameters {
			src.Parameters[k] = string(v)
		}
	}
	return src, nil
}
