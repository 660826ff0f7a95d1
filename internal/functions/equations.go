package functions

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/numlib/internal/numeric"
)

// Equation is an initial-value problem y' = f(x, y), y(X0) = Y0 on [X0, X].
type Equation struct {
	Name        string
	Description string
	Deriv       numeric.Deriv[float64]
	// Solution is the trajectory through (x0, y0); nil when unknown.
	Solution  func(x0, y0, x float64) float64
	X0, X, Y0 float64
}

// Exact returns the reference solution at x for the initial point (x0, y0).
func (e Equation) Exact(x0, y0, x float64) (float64, bool) {
	if e.Solution == nil {
		return 0, false
	}
	return e.Solution(x0, y0, x), true
}

var equations = map[string]Equation{
	"growth": {
		Name: "growth", Description: "y' = y",
		Deriv:    func(x, y float64) float64 { return y },
		Solution: func(x0, y0, x float64) float64 { return y0 * math.Exp(x-x0) },
		X0:       0, X: 1, Y0: 1,
	},
	"decay": {
		Name: "decay", Description: "y' = -2y",
		Deriv:    func(x, y float64) float64 { return -2 * y },
		Solution: func(x0, y0, x float64) float64 { return y0 * math.Exp(-2*(x-x0)) },
		X0:       0, X: 2, Y0: 1,
	},
	"linear": {
		Name: "linear", Description: "y' = x + y",
		Deriv: func(x, y float64) float64 { return x + y },
		Solution: func(x0, y0, x float64) float64 {
			c := (y0 + x0 + 1) * math.Exp(-x0)
			return c*math.Exp(x) - x - 1
		},
		X0: 0, X: 1, Y0: 1,
	},
	"logistic": {
		Name: "logistic", Description: "y' = y(1 - y)",
		Deriv: func(x, y float64) float64 { return y * (1 - y) },
		Solution: func(x0, y0, x float64) float64 {
			return 1 / (1 + (1/y0-1)*math.Exp(-(x-x0)))
		},
		X0: 0, X: 5, Y0: 0.1,
	},
	"forced": {
		Name: "forced", Description: "y' = cos x",
		Deriv:    func(x, y float64) float64 { return math.Cos(x) },
		Solution: func(x0, y0, x float64) float64 { return y0 + math.Sin(x) - math.Sin(x0) },
		X0:       0, X: 2 * math.Pi, Y0: 0,
	},
	"stiff": {
		Name: "stiff", Description: "y' = -1000y",
		Deriv:    func(x, y float64) float64 { return -1000 * y },
		Solution: func(x0, y0, x float64) float64 { return y0 * math.Exp(-1000*(x-x0)) },
		X0:       0, X: 1, Y0: 1,
	},
}

// LookupEquation returns the problem registered under name.
func LookupEquation(name string) (Equation, error) {
	e, ok := equations[name]
	if !ok {
		return Equation{}, fmt.Errorf("unknown equation: %s", name)
	}
	return e, nil
}

// EquationNames lists the catalog in lexical order.
func EquationNames() []string {
	names := make([]string, 0, len(equations))
	for name := range equations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
