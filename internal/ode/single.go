package ode

import (
	"github.com/san-kum/numlib/internal/numeric"
)

// Observer receives every computed point, starting with (x0, y0).
type Observer[T numeric.Float] func(x, y T)

type stepFunc[T numeric.Float] func(d numeric.Deriv[T], x, y, h T) (T, error)

// Euler integrates with n explicit Euler steps.
func Euler[T numeric.Float](x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, error) {
	return integrate("euler", eulerStep[T], x0, x, y0, n, deriv, nil)
}

// RungeKutta2 integrates with n explicit midpoint steps.
func RungeKutta2[T numeric.Float](x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, error) {
	return integrate("rk2", rk2Step[T], x0, x, y0, n, deriv, nil)
}

// RungeKutta4 integrates with n classic fourth-order Runge-Kutta steps.
func RungeKutta4[T numeric.Float](x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, error) {
	return integrate("rk4", rk4Step[T], x0, x, y0, n, deriv, nil)
}

func stepSize[T numeric.Float](op string, x0, x T, n int) (T, error) {
	if n < 1 {
		return 0, numeric.Invalid("%s: n must be positive, got %d", op, n)
	}
	if !numeric.IsFinite(x0) || !numeric.IsFinite(x) {
		return 0, numeric.Invalid("%s: bounds must be finite, got [%v, %v]", op, x0, x)
	}
	return (x - x0) / T(n), nil
}

func integrate[T numeric.Float](op string, step stepFunc[T], x0, x, y0 T, n int, d numeric.Deriv[T], obs Observer[T]) (T, error) {
	h, err := stepSize(op, x0, x, n)
	if err != nil {
		return 0, err
	}
	if !numeric.IsFinite(y0) {
		return 0, numeric.Invalid("%s: initial value must be finite, got %v", op, y0)
	}
	if obs != nil {
		obs(x0, y0)
	}

	y := y0
	for i := 0; i < n; i++ {
		xi := x0 + T(i)*h
		y, err = step(d, xi, y, h)
		if err != nil {
			return 0, err
		}
		if !numeric.IsFinite(y) {
			return 0, &numeric.EvalError{Op: op, X: float64(xi + h), Y: float64(y), Wrapped: numeric.ErrNonFinite}
		}
		if obs != nil {
			obs(x0+T(i+1)*h, y)
		}
	}
	return y, nil
}

func eulerStep[T numeric.Float](d numeric.Deriv[T], x, y, h T) (T, error) {
	f, err := numeric.EvalDeriv("euler", d, x, y)
	if err != nil {
		return 0, err
	}
	return y + h*f, nil
}

func rk2Step[T numeric.Float](d numeric.Deriv[T], x, y, h T) (T, error) {
	f1, err := numeric.EvalDeriv("rk2", d, x, y)
	if err != nil {
		return 0, err
	}
	k1 := h * f1

	f2, err := numeric.EvalDeriv("rk2", d, x+h/2, y+k1/2)
	if err != nil {
		return 0, err
	}
	k2 := h * f2

	return y + k2, nil
}

func rk4Step[T numeric.Float](d numeric.Deriv[T], x, y, h T) (T, error) {
	f1, err := numeric.EvalDeriv("rk4", d, x, y)
	if err != nil {
		return 0, err
	}
	k1 := h * f1

	f2, err := numeric.EvalDeriv("rk4", d, x+h/2, y+k1/2)
	if err != nil {
		return 0, err
	}
	k2 := h * f2

	f3, err := numeric.EvalDeriv("rk4", d, x+h/2, y+k2/2)
	if err != nil {
		return 0, err
	}
	k3 := h * f3

	f4, err := numeric.EvalDeriv("rk4", d, x+h, y+k3)
	if err != nil {
		return 0, err
	}
	k4 := h * f4

	return y + k1/6 + k2/3 + k3/3 + k4/6, nil
}
