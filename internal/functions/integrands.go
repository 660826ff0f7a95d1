package functions

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/numlib/internal/numeric"
)

type Integrand struct {
	Name        string
	Description string
	F           numeric.Func[float64]
	// Antiderivative is nil when no closed form is used.
	Antiderivative func(x float64) float64
	// Default interval.
	A, B float64
}

// Exact returns the reference value of the integral over [a, b].
func (i Integrand) Exact(a, b float64) (float64, bool) {
	if i.Antiderivative == nil {
		return 0, false
	}
	return i.Antiderivative(b) - i.Antiderivative(a), true
}

const stepAt = 1.0 / 3.0

var integrands = map[string]Integrand{
	"square": {
		Name: "square", Description: "x²",
		F:              func(x float64) float64 { return x * x },
		Antiderivative: func(x float64) float64 { return x * x * x / 3 },
		A:              -1, B: 1,
	},
	"cube": {
		Name: "cube", Description: "x³ - 2x + 1",
		F:              func(x float64) float64 { return x*x*x - 2*x + 1 },
		Antiderivative: func(x float64) float64 { return x*x*x*x/4 - x*x + x },
		A:              0, B: 2,
	},
	"sin": {
		Name: "sin", Description: "sin x over two periods",
		F:              math.Sin,
		Antiderivative: func(x float64) float64 { return -math.Cos(x) },
		A:              0, B: 4 * math.Pi,
	},
	"exp": {
		Name: "exp", Description: "eˣ",
		F:              math.Exp,
		Antiderivative: math.Exp,
		A:              0, B: 1,
	},
	"gauss": {
		Name: "gauss", Description: "e^(-x²)",
		F:              func(x float64) float64 { return math.Exp(-x * x) },
		Antiderivative: func(x float64) float64 { return math.Sqrt(math.Pi) / 2 * math.Erf(x) },
		A:              -3, B: 3,
	},
	"sqrt": {
		Name: "sqrt", Description: "√x, unbounded derivative at 0",
		F:              math.Sqrt,
		Antiderivative: func(x float64) float64 { return 2 * x * math.Sqrt(x) / 3 },
		A:              0, B: 1,
	},
	"runge": {
		Name: "runge", Description: "1/(1+25x²)",
		F:              func(x float64) float64 { return 1 / (1 + 25*x*x) },
		Antiderivative: func(x float64) float64 { return math.Atan(5*x) / 5 },
		A:              -1, B: 1,
	},
	"peak": {
		Name: "peak", Description: "1/(10⁻⁴+(x-0.3)²), sharp peak",
		F:              func(x float64) float64 { return 1 / (1e-4 + (x-0.3)*(x-0.3)) },
		Antiderivative: func(x float64) float64 { return 100 * math.Atan(100*(x-0.3)) },
		A:              0, B: 1,
	},
	"oscillatory": {
		Name: "oscillatory", Description: "e^(-x) cos 7x",
		F: func(x float64) float64 { return math.Exp(-x) * math.Cos(7*x) },
		Antiderivative: func(x float64) float64 {
			return math.Exp(-x) * (7*math.Sin(7*x) - math.Cos(7*x)) / 50
		},
		A: 0, B: 5,
	},
	"step": {
		Name: "step", Description: "unit jump at x=1/3",
		F: func(x float64) float64 {
			if x < stepAt {
				return 0
			}
			return 1
		},
		Antiderivative: func(x float64) float64 { return math.Max(0, x-stepAt) },
		A:              0, B: 1,
	},
}

// LookupIntegrand returns the integrand registered under name.
func LookupIntegrand(name string) (Integrand, error) {
	i, ok := integrands[name]
	if !ok {
		return Integrand{}, fmt.Errorf("unknown integrand: %s", name)
	}
	return i, nil
}

// IntegrandNames lists the catalog in lexical order.
func IntegrandNames() []string {
	names := make([]string, 0, len(integrands))
	for name := range integrands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
