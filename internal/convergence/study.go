// Package convergence measures how the error of a method falls as the
// discretization is refined, and fits the observed order of accuracy.
package convergence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/numlib/internal/experiment"
)

// RoundoffFloor excludes errors at machine precision from the order fit.
const RoundoffFloor = 1e-13

// Study refines one experiment Levels times. Fixed-step and ODE runs double
// N per level starting at Base.N; adaptive runs divide Eps by EpsFactor.
type Study struct {
	Base      experiment.Config
	Levels    int
	EpsFactor float64
	// Parallel bounds the number of levels run at once; 0 or 1 is serial.
	Parallel int

	registry *experiment.Registry
	logger   *slog.Logger
}

// Sample is one level of a study.
type Sample struct {
	Level       int           `json:"level"`
	N           int           `json:"n"`
	Eps         float64       `json:"eps"`
	Value       float64       `json:"value"`
	Error       float64       `json:"error"`
	Evaluations int64         `json:"evaluations"`
	Depth       int           `json:"depth"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Report holds the samples of a study with the ratios and fitted order.
type Report struct {
	Config  experiment.Config
	Samples []Sample
	// Ratios[i] is Samples[i].Error / Samples[i+1].Error.
	Ratios []float64
	// Order is the least-squares slope of -log(error) against log(n), or
	// log(evaluations) for adaptive studies; NaN when fewer than two samples
	// are usable.
	Order     float64
	FitPoints int
}

// New builds a study that refines base over levels runs.
func New(base experiment.Config, levels int, registry *experiment.Registry, logger *slog.Logger) *Study {
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Study{Base: base, Levels: levels, EpsFactor: 10, registry: registry, logger: logger}
}

func (s *Study) validate() error {
	if s.Levels < 2 {
		return fmt.Errorf("study needs at least 2 levels, got %d", s.Levels)
	}
	if s.Base.Kind == experiment.KindAdaptive {
		if s.Base.Eps <= 0 {
			return fmt.Errorf("adaptive study needs a positive starting eps, got %g", s.Base.Eps)
		}
		if s.EpsFactor <= 1 {
			return fmt.Errorf("eps factor must exceed 1, got %g", s.EpsFactor)
		}
	} else if s.Base.N < 1 {
		return fmt.Errorf("study needs a positive starting n, got %d", s.Base.N)
	}
	return nil
}

// level returns the experiment configuration for refinement level i.
func (s *Study) level(i int) experiment.Config {
	cfg := s.Base
	cfg.KeepPath = false
	if cfg.Kind == experiment.KindAdaptive {
		cfg.Eps = s.Base.Eps / math.Pow(s.EpsFactor, float64(i))
		return cfg
	}
	cfg.N = s.Base.N << i
	return cfg
}

func (s *Study) Run(ctx context.Context) (*Report, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	samples := make([]Sample, s.Levels)
	g, gctx := errgroup.WithContext(ctx)
	if s.Parallel > 1 {
		g.SetLimit(s.Parallel)
	} else {
		g.SetLimit(1)
	}

	for i := 0; i < s.Levels; i++ {
		i := i
		cfg := s.level(i)
		g.Go(func() error {
			res, err := experiment.New(cfg, s.registry, s.logger).Run(gctx)
			if err != nil {
				return fmt.Errorf("level %d: %w", i, err)
			}
			if !res.HasExact {
				return fmt.Errorf("level %d: %s has no closed-form reference", i, cfg.Target)
			}
			samples[i] = Sample{
				Level:       i,
				N:           res.Config.N,
				Eps:         cfg.Eps,
				Value:       res.Value,
				Error:       res.AbsError,
				Evaluations: res.Evaluations,
				Depth:       res.Depth,
				Elapsed:     res.Elapsed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Config: s.Base, Samples: samples}
	report.Ratios = Ratios(samples)
	report.Order, report.FitPoints = FitOrder(samples, s.Base.Kind == experiment.KindAdaptive)

	s.logger.Info("study finished",
		"kind", s.Base.Kind, "method", s.Base.Method, "target", s.Base.Target,
		"levels", s.Levels, "order", report.Order, "fit_points", report.FitPoints)
	return report, nil
}

// Ratios returns successive error reduction factors. A zero denominator
// yields +Inf.
func Ratios(samples []Sample) []float64 {
	if len(samples) < 2 {
		return nil
	}
	ratios := make([]float64, len(samples)-1)
	for i := range ratios {
		if samples[i+1].Error == 0 {
			ratios[i] = math.Inf(1)
			continue
		}
		ratios[i] = samples[i].Error / samples[i+1].Error
	}
	return ratios
}

// FitOrder regresses log(error) on log(n) over the samples above
// RoundoffFloor and returns the negated slope. With byEvaluations the
// abscissa is the evaluation count instead.
func FitOrder(samples []Sample, byEvaluations bool) (float64, int) {
	xs := make([]float64, 0, len(samples))
	ys := make([]float64, 0, len(samples))
	for _, sm := range samples {
		x := float64(sm.N)
		if byEvaluations {
			x = float64(sm.Evaluations)
		}
		if sm.Error <= RoundoffFloor || x <= 0 {
			continue
		}
		xs = append(xs, math.Log(x))
		ys = append(ys, math.Log(sm.Error))
	}
	if len(xs) < 2 {
		return math.NaN(), len(xs)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return -beta, len(xs)
}
