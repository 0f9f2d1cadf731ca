package core

import (
	"errors"
	"fmt"
)

// ErrPrecondition indicates a caller passed an out-of-range row, column or
// character to a grid operation.
var ErrPrecondition = errors.New("precondition violated")

// PreconditionError describes a rejected grid access.
type PreconditionError struct {
	Op     string // Operation name (e.g., "write_cell", "read_row")
	Row    int
	Col    int
	Char   int
	Width  int // Grid width at the time of the call
	Height int // Grid height at the time of the call
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	switch e.Op {
	case "write_cell":
		return fmt.Sprintf("%s: %v: row=%d col=%d char=%d outside %dx%d grid",
			e.Op, ErrPrecondition, e.Row, e.Col, e.Char, e.Width, e.Height)
	default:
		return fmt.Sprintf("%s: %v: row=%d outside %d rows", e.Op, ErrPrecondition, e.Row, e.Height)
	}
}

// Unwrap returns ErrPrecondition so callers can use errors.Is.
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}
