package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/san-kum/numlib/internal/ode"
	"github.com/san-kum/numlib/internal/quadrature"
)

// Config describes one run. For ODE runs A and B are x0 and x.
type Config struct {
	Kind   Kind
	Method string
	Target string

	A, B float64
	Y0   float64

	// Y0Set marks Y0 as chosen by the caller, so a zero is kept.
	Y0Set bool

	N   int
	Eps float64

	MaxDepth      int
	ParallelDepth int
	Starter       string

	// KeepPath records the ODE trajectory in the result.
	KeepPath bool
}

type Result struct {
	Config      Config
	Value       float64
	Exact       float64
	HasExact    bool
	AbsError    float64
	Evaluations int64
	Depth       int
	Elapsed     time.Duration
	Xs, Ys      []float64
}

type Experiment struct {
	cfg      Config
	registry *Registry
	logger   *slog.Logger
}

func New(cfg Config, registry *Registry, logger *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Config returns the run description.
func (e *Experiment) Config() Config {
	return e.cfg
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	switch e.cfg.Kind {
	case KindQuadrature:
		res, err = e.runQuadrature()
	case KindAdaptive:
		res, err = e.runAdaptive(ctx)
	case KindODE:
		res, err = e.runODE()
	default:
		err = fmt.Errorf("unknown kind: %q", e.cfg.Kind)
	}
	if err != nil {
		e.logger.Debug("experiment failed", "kind", e.cfg.Kind, "method", e.cfg.Method, "target", e.cfg.Target, "err", err)
		return nil, fmt.Errorf("%s %s on %s: %w", e.cfg.Kind, e.cfg.Method, e.cfg.Target, err)
	}

	res.Config = e.cfg
	res.Elapsed = time.Since(start)
	if res.HasExact {
		res.AbsError = math.Abs(res.Value - res.Exact)
	}

	e.logger.Debug("experiment finished",
		"kind", e.cfg.Kind, "method", e.cfg.Method, "target", e.cfg.Target,
		"n", e.cfg.N, "eps", e.cfg.Eps, "value", res.Value, "evals", res.Evaluations, "elapsed", res.Elapsed)
	return res, nil
}

func (e *Experiment) runQuadrature() (*Result, error) {
	rule, err := e.registry.GetRule(e.cfg.Method)
	if err != nil {
		return nil, err
	}
	in, err := e.registry.GetIntegrand(e.cfg.Target)
	if err != nil {
		return nil, err
	}

	var evals atomic.Int64
	f := func(x float64) float64 {
		evals.Add(1)
		return in.F(x)
	}

	if n := rule.Admissible(e.cfg.N); e.cfg.N > 0 && n != e.cfg.N {
		e.logger.Debug("adjusted n", "method", rule.Name, "requested", e.cfg.N, "n", n)
		e.cfg.N = n
	}

	v, err := rule.Integrate(e.cfg.A, e.cfg.B, e.cfg.N, f)
	if err != nil {
		return nil, err
	}
	exact, ok := in.Exact(e.cfg.A, e.cfg.B)
	return &Result{Value: v, Exact: exact, HasExact: ok, Evaluations: evals.Load()}, nil
}

func (e *Experiment) runAdaptive(ctx context.Context) (*Result, error) {
	in, err := e.registry.GetIntegrand(e.cfg.Target)
	if err != nil {
		return nil, err
	}

	cfg := quadrature.DefaultAdaptiveConfig()
	if e.cfg.MaxDepth > 0 {
		cfg.MaxDepth = e.cfg.MaxDepth
	}
	cfg.ParallelDepth = e.cfg.ParallelDepth

	v, stats, err := quadrature.AdaptiveContext(ctx, cfg, e.cfg.A, e.cfg.B, in.F, e.cfg.Eps)
	if err != nil {
		return nil, err
	}
	exact, ok := in.Exact(e.cfg.A, e.cfg.B)
	return &Result{Value: v, Exact: exact, HasExact: ok, Evaluations: stats.Evaluations, Depth: stats.Depth}, nil
}

func (e *Experiment) runODE() (*Result, error) {
	method, err := e.registry.GetMethod(e.cfg.Method)
	if err != nil {
		return nil, err
	}
	eq, err := e.registry.GetEquation(e.cfg.Target)
	if err != nil {
		return nil, err
	}
	starter, err := ode.ParseStarter(e.cfg.Starter)
	if err != nil {
		return nil, err
	}
	msCfg := ode.DefaultMultistepConfig()
	msCfg.Starter = starter
	method = method.WithConfig(msCfg)

	var evals int64
	d := func(x, y float64) float64 {
		evals++
		return eq.Deriv(x, y)
	}

	res := &Result{}
	if e.cfg.KeepPath {
		xs, ys, err := method.Path(e.cfg.A, e.cfg.B, e.cfg.Y0, e.cfg.N, d)
		if err != nil {
			return nil, err
		}
		res.Xs, res.Ys = xs, ys
		res.Value = ys[len(ys)-1]
	} else {
		res.Value, err = method.Solve(e.cfg.A, e.cfg.B, e.cfg.Y0, e.cfg.N, d)
		if err != nil {
			return nil, err
		}
	}

	res.Evaluations = evals
	res.Exact, res.HasExact = eq.Exact(e.cfg.A, e.cfg.Y0, e.cfg.B)
	return res, nil
}

// Defaults fills the interval and initial value from the catalog entry when
// they were left unset. The interval and Y0 are filled independently.
func (r *Registry) Defaults(cfg Config) (Config, error) {
	switch cfg.Kind {
	case KindODE:
		eq, err := r.GetEquation(cfg.Target)
		if err != nil {
			return cfg, err
		}
		if cfg.A == 0 && cfg.B == 0 {
			cfg.A, cfg.B = eq.X0, eq.X
		}
		if !cfg.Y0Set && cfg.Y0 == 0 {
			cfg.Y0 = eq.Y0
		}
	default:
		in, err := r.GetIntegrand(cfg.Target)
		if err != nil {
			return cfg, err
		}
		if cfg.A == 0 && cfg.B == 0 {
			cfg.A, cfg.B = in.A, in.B
		}
	}
	return cfg, nil
}
