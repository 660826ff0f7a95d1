package numeric

import (
	"errors"
	"fmt"
)

// Domain errors for quadrature and ODE operations.
var (
	// ErrInvalidArgument indicates a bad step count, tolerance or interval.
	ErrInvalidArgument = errors.New("numeric: invalid argument")

	// ErrConvergence indicates an iterative scheme ran out of budget.
	ErrConvergence = errors.New("numeric: convergence failure")

	// ErrNonFinite indicates the supplied function produced NaN or Inf.
	ErrNonFinite = errors.New("numeric: non-finite function value")
)

// EvalError wraps an error with the point at which it was raised.
type EvalError struct {
	Op      string
	X       float64
	Y       float64
	Depth   int
	Wrapped error
}

func (e *EvalError) Error() string {
	if e.Depth > 0 {
		return fmt.Sprintf("%s at x=%g (depth %d): %v", e.Op, e.X, e.Depth, e.Wrapped)
	}
	return fmt.Sprintf("%s at x=%g (value %g): %v", e.Op, e.X, e.Y, e.Wrapped)
}

func (e *EvalError) Unwrap() error {
	return e.Wrapped
}

// Invalid returns an ErrInvalidArgument carrying a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
