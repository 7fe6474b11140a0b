package expr

import (
	"errors"
	"fmt"
)

// Domain errors for expression operations.
var (
	// ErrDivisionByZero indicates a division whose denominator normalizes to zero.
	ErrDivisionByZero = errors.New("expr: division by zero")

	// ErrUnbound indicates numeric evaluation met a symbol with no value.
	ErrUnbound = errors.New("expr: unbound symbol")

	// ErrNotFinite indicates numeric evaluation produced NaN or Inf.
	ErrNotFinite = errors.New("expr: evaluation is not finite")

	// ErrUnsupported indicates an expression the normal form cannot hold.
	ErrUnsupported = errors.New("expr: unsupported expression")
)

// ParseError reports malformed formula text with the byte offset where the
// parser gave up.
type ParseError struct {
	Text     string
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: parse error at position %d in %q: %s", e.Position, e.Text, e.Reason)
}
