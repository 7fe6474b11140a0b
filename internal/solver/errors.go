package solver

import "errors"

var (
	// ErrDimensionMismatch indicates a coordinate count other than four.
	ErrDimensionMismatch = errors.New("solver: templates need exactly 4 coordinates")

	// ErrUnsupportedSymmetry indicates a symmetry tag with no registered ansatz.
	ErrUnsupportedSymmetry = errors.New("solver: unsupported symmetry")

	// ErrInvalidCoordinates indicates coordinates that are malformed or that
	// collide with template parameter or function names.
	ErrInvalidCoordinates = errors.New("solver: invalid coordinates")

	// ErrNoMatch indicates that no candidate verified. This is a negative
	// result, not a failure.
	ErrNoMatch = errors.New("solver: no solution found")
)
