package verify

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome of checking the field equations.
type Status int

const (
	// Satisfied means every residual component is provably zero.
	Satisfied Status = iota
	// Violated means some residual component is provably nonzero.
	Violated
	// Indeterminate means neither could be established. It is never
	// reported as satisfied.
	Indeterminate
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Violated:
		return "violated"
	default:
		return "indeterminate"
	}
}

// MarshalJSON encodes satisfied as true, violated as false and
// indeterminate as the string "indeterminate".
func (s Status) MarshalJSON() ([]byte, error) {
	switch s {
	case Satisfied:
		return []byte("true"), nil
	case Violated:
		return []byte("false"), nil
	default:
		return []byte(`"indeterminate"`), nil
	}
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case true:
		*s = Satisfied
	case false:
		*s = Violated
	case "indeterminate":
		*s = Indeterminate
	default:
		return fmt.Errorf("verify: invalid status %s", data)
	}
	return nil
}

// MarshalYAML uses the same encoding as JSON.
func (s Status) MarshalYAML() (any, error) {
	switch s {
	case Satisfied:
		return true, nil
	case Violated:
		return false, nil
	default:
		return "indeterminate", nil
	}
}

// ParseStatus accepts the names printed by String and the boolean spellings
// of the JSON encoding.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "satisfied", "true":
		return Satisfied, nil
	case "violated", "false":
		return Violated, nil
	case "indeterminate":
		return Indeterminate, nil
	}
	return Indeterminate, fmt.Errorf("verify: invalid status %q", s)
}
