package numeric

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Float is the scalar type accepted by the engines.
type Float interface {
	constraints.Float
}

// Func is an integrand.
type Func[T Float] func(x T) T

// Deriv is the right-hand side of y' = f(x, y).
type Deriv[T Float] func(x, y T) T

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite[T Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Abs returns |v|.
func Abs[T Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Eval calls f and rejects a non-finite result.
func Eval[T Float](op string, f Func[T], x T) (T, error) {
	v := f(x)
	if !IsFinite(v) {
		return v, &EvalError{Op: op, X: float64(x), Y: float64(v), Wrapped: ErrNonFinite}
	}
	return v, nil
}

// EvalDeriv calls d and rejects a non-finite result.
func EvalDeriv[T Float](op string, d Deriv[T], x, y T) (T, error) {
	if !IsFinite(y) {
		return y, &EvalError{Op: op, X: float64(x), Y: float64(y), Wrapped: ErrNonFinite}
	}
	v := d(x, y)
	if !IsFinite(v) {
		return v, &EvalError{Op: op, X: float64(x), Y: float64(v), Wrapped: ErrNonFinite}
	}
	return v, nil
}

// Epsilon returns the machine epsilon of T.
func Epsilon[T Float]() T {
	one, e := T(1), T(1)
	for one+e/2 != one {
		e /= 2
	}
	return e
}
