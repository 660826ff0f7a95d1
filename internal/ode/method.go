package ode

import (
	"fmt"

	"github.com/san-kum/numlib/internal/numeric"
)

type traceFunc func(x0, x, y0 float64, n int, d numeric.Deriv[float64], obs Observer[float64]) (float64, error)

type multistepFunc func(cfg MultistepConfig, x0, x, y0 float64, n int, d numeric.Deriv[float64], obs Observer[float64]) (float64, Stats, error)

// Method is a named propagation scheme over float64, used by the experiment
// layer and the CLI.
type Method struct {
	Name string
	// Order is the global order observed with the default starter.
	Order int
	// Multistep marks the Adams methods.
	Multistep bool

	trace     traceFunc
	multistep multistepFunc
}

// Trace propagates and reports every computed point to obs.
func (m Method) Trace(x0, x, y0 float64, n int, d numeric.Deriv[float64], obs Observer[float64]) (float64, error) {
	return m.trace(x0, x, y0, n, d, obs)
}

// Solve propagates without observing intermediate points.
func (m Method) Solve(x0, x, y0 float64, n int, d numeric.Deriv[float64]) (float64, error) {
	return m.trace(x0, x, y0, n, d, nil)
}

// Path returns every computed abscissa and value, (x0, y0) first.
func (m Method) Path(x0, x, y0 float64, n int, d numeric.Deriv[float64]) ([]float64, []float64, error) {
	xs := make([]float64, 0, n+1)
	ys := make([]float64, 0, n+1)
	_, err := m.trace(x0, x, y0, n, d, func(x, y float64) {
		xs = append(xs, x)
		ys = append(ys, y)
	})
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// WithConfig rebinds a multistep method to cfg. Single-step methods are
// returned unchanged.
func (m Method) WithConfig(cfg MultistepConfig) Method {
	if m.multistep == nil {
		return m
	}
	run := m.multistep
	m.trace = func(x0, x, y0 float64, n int, d numeric.Deriv[float64], obs Observer[float64]) (float64, error) {
		y, _, err := run(cfg, x0, x, y0, n, d, obs)
		return y, err
	}
	if m.Name == "am2" && cfg.Starter == StartRK4 {
		m.Order = 3
	}
	return m
}

func singleStep(name string, order int, step stepFunc[float64]) Method {
	return Method{
		Name:  name,
		Order: order,
		trace: func(x0, x, y0 float64, n int, d numeric.Deriv[float64], obs Observer[float64]) (float64, error) {
			return integrate(name, step, x0, x, y0, n, d, obs)
		},
	}
}

func adams(name string, order int, run multistepFunc) Method {
	m := Method{Name: name, Order: order, Multistep: true, multistep: run}
	return m.WithConfig(DefaultMultistepConfig())
}

var methods = map[string]Method{
	"euler": singleStep("euler", 1, eulerStep[float64]),
	"rk2":   singleStep("rk2", 2, rk2Step[float64]),
	"rk4":   singleStep("rk4", 4, rk4Step[float64]),
	"ab2":   adams("ab2", 2, adamsBashforth[float64]),
	"am2":   adams("am2", 2, adamsMoulton[float64]),
}

// Lookup returns the method registered under name.
func Lookup(name string) (Method, error) {
	m, ok := methods[name]
	if !ok {
		return Method{}, fmt.Errorf("unknown method: %s", name)
	}
	return m, nil
}

// MethodNames lists the registered methods, single-step first.
func MethodNames() []string {
	return []string{"euler", "rk2", "rk4", "ab2", "am2"}
}

// ParseStarter maps a starter name to its Starter value.
func ParseStarter(name string) (Starter, error) {
	switch name {
	case "", "euler":
		return StartEuler, nil
	case "rk4":
		return StartRK4, nil
	default:
		return StartEuler, fmt.Errorf("unknown starter: %s", name)
	}
}
