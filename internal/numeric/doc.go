// Package numeric provides the shared primitives of the quadrature and ODE
// engines:
//
//   - [Func] and [Deriv]: caller-supplied scalar functions
//   - [Float]: the scalar constraint (float32 or float64)
//   - [ErrInvalidArgument], [ErrConvergence], [ErrNonFinite]: error taxonomy
//   - [EvalError]: wraps a sentinel with the point where it was raised
//
// Everything here is stateless and safe for concurrent use.
package numeric
