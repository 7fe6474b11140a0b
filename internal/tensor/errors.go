package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrNonSquareMetric indicates a metric matrix whose shape does not match
	// the coordinate count.
	ErrNonSquareMetric = errors.New("tensor: metric matrix is not square over the coordinates")

	// ErrAsymmetricMetric indicates g_ab and g_ba with different canonical forms.
	ErrAsymmetricMetric = errors.New("tensor: metric is not symmetric")

	// ErrDegenerateMetric indicates a zero determinant.
	ErrDegenerateMetric = errors.New("tensor: metric is degenerate (zero determinant)")

	// ErrInverseCheck indicates g^ac g_cb did not reduce to the Kronecker delta.
	ErrInverseCheck = errors.New("tensor: inverse metric check failed")

	// ErrInvalidCoordinates indicates empty, duplicate or reserved coordinate names.
	ErrInvalidCoordinates = errors.New("tensor: invalid coordinates")

	// ErrDimension indicates a dimension outside 2..4.
	ErrDimension = errors.New("tensor: dimension must be between 2 and 4")

	// ErrIndex indicates an index out of range or of the wrong count.
	ErrIndex = errors.New("tensor: index out of range")
)

// ComponentError wraps an error with the component it occurred at.
type ComponentError struct {
	Indices []int
	Err     error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %v: %v", e.Indices, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}
