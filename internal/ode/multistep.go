package ode

import (
	"github.com/san-kum/numlib/internal/numeric"
)

// Starter selects the single-step method that seeds the Adams history.
type Starter int

const (
	StartEuler Starter = iota
	StartRK4
)

func (s Starter) String() string {
	switch s {
	case StartRK4:
		return "rk4"
	default:
		return "euler"
	}
}

const (
	DefaultCorrectorTolerance  = 1e-12
	DefaultCorrectorIterations = 25
)

// MultistepConfig controls self-starting and the Adams-Moulton corrector.
type MultistepConfig struct {
	Starter Starter

	// Tolerance is the relative fixed-point tolerance |Δy| <= tol·(1+|y|).
	// It is raised to a few ulps of T when set below that.
	Tolerance float64

	// MaxIterations bounds the corrector loop per step.
	MaxIterations int
}

func DefaultMultistepConfig() MultistepConfig {
	return MultistepConfig{
		Starter:       StartEuler,
		Tolerance:     DefaultCorrectorTolerance,
		MaxIterations: DefaultCorrectorIterations,
	}
}

// Stats describes the work done by one multistep propagation.
type Stats struct {
	Steps       int
	Evaluations int
	Corrections int
}

// AdamsBashforth integrates with the explicit two-step Adams-Bashforth
// method, seeded by one Euler step.
func AdamsBashforth[T numeric.Float](x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, error) {
	y, _, err := adamsBashforth(DefaultMultistepConfig(), x0, x, y0, n, deriv, nil)
	return y, err
}

// AdamsBashforthWith is AdamsBashforth with an explicit configuration.
func AdamsBashforthWith[T numeric.Float](cfg MultistepConfig, x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, Stats, error) {
	return adamsBashforth(cfg, x0, x, y0, n, deriv, nil)
}

// AdamsMoulton integrates with the two-step Adams-Moulton corrector, seeded
// by one Euler step.
func AdamsMoulton[T numeric.Float](x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, error) {
	y, _, err := adamsMoulton(DefaultMultistepConfig(), x0, x, y0, n, deriv, nil)
	return y, err
}

// AdamsMoultonWith is AdamsMoulton with an explicit configuration.
func AdamsMoultonWith[T numeric.Float](cfg MultistepConfig, x0, x, y0 T, n int, deriv numeric.Deriv[T]) (T, Stats, error) {
	return adamsMoulton(cfg, x0, x, y0, n, deriv, nil)
}

// point is one history entry: abscissa, value and derivative there.
type point[T numeric.Float] struct {
	x, y, f T
}

// window holds the two most recent points. head indexes the newest slot.
type window[T numeric.Float] struct {
	slots [2]point[T]
	head  int
}

func (w *window[T]) push(p point[T]) {
	w.head ^= 1
	w.slots[w.head] = p
}

func (w *window[T]) newest() point[T]   { return w.slots[w.head] }
func (w *window[T]) previous() point[T] { return w.slots[w.head^1] }

// history evaluates f at the points it is fed and counts evaluations.
type history[T numeric.Float] struct {
	op    string
	d     numeric.Deriv[T]
	win   window[T]
	stats Stats
}

func (hs *history[T]) eval(x, y T) (T, error) {
	hs.stats.Evaluations++
	return numeric.EvalDeriv(hs.op, hs.d, x, y)
}

func (hs *history[T]) record(x, y T) error {
	f, err := hs.eval(x, y)
	if err != nil {
		return err
	}
	hs.win.push(point[T]{x: x, y: y, f: f})
	return nil
}

// seed validates the problem, records (x0, y0) and takes the starter step.
// It returns the step size and the first computed value.
func (hs *history[T]) seed(cfg MultistepConfig, x0, x, y0 T, n int, obs Observer[T]) (T, T, error) {
	h, err := stepSize(hs.op, x0, x, n)
	if err != nil {
		return 0, 0, err
	}
	if !numeric.IsFinite(y0) {
		return 0, 0, numeric.Invalid("%s: initial value must be finite, got %v", hs.op, y0)
	}
	if obs != nil {
		obs(x0, y0)
	}
	if err := hs.record(x0, y0); err != nil {
		return 0, 0, err
	}

	var y1 T
	switch cfg.Starter {
	case StartRK4:
		hs.stats.Evaluations += 4
		y1, err = rk4Step(hs.d, x0, y0, h)
	default:
		y1 = y0 + h*hs.win.newest().f
	}
	if err != nil {
		return 0, 0, err
	}
	if !numeric.IsFinite(y1) {
		return 0, 0, &numeric.EvalError{Op: hs.op, X: float64(x0 + h), Y: float64(y1), Wrapped: numeric.ErrNonFinite}
	}
	hs.stats.Steps++
	if obs != nil {
		obs(x0+h, y1)
	}
	return h, y1, nil
}

func adamsBashforth[T numeric.Float](cfg MultistepConfig, x0, x, y0 T, n int, d numeric.Deriv[T], obs Observer[T]) (T, Stats, error) {
	hs := &history[T]{op: "adams-bashforth", d: d}
	h, y, err := hs.seed(cfg, x0, x, y0, n, obs)
	if err != nil {
		return 0, hs.stats, err
	}

	for k := 1; k < n; k++ {
		if err := hs.record(x0+T(k)*h, y); err != nil {
			return 0, hs.stats, err
		}
		cur, prev := hs.win.newest(), hs.win.previous()

		y = cur.y + h*(1.5*cur.f-0.5*prev.f)
		xn := x0 + T(k+1)*h
		if !numeric.IsFinite(y) {
			return 0, hs.stats, &numeric.EvalError{Op: hs.op, X: float64(xn), Y: float64(y), Wrapped: numeric.ErrNonFinite}
		}
		hs.stats.Steps++
		if obs != nil {
			obs(xn, y)
		}
	}
	return y, hs.stats, nil
}

func adamsMoulton[T numeric.Float](cfg MultistepConfig, x0, x, y0 T, n int, d numeric.Deriv[T], obs Observer[T]) (T, Stats, error) {
	hs := &history[T]{op: "adams-moulton", d: d}
	if cfg.MaxIterations < 1 {
		return 0, hs.stats, numeric.Invalid("adams-moulton: max iterations must be positive, got %d", cfg.MaxIterations)
	}
	if !(cfg.Tolerance >= 0) {
		return 0, hs.stats, numeric.Invalid("adams-moulton: tolerance must be non-negative, got %v", cfg.Tolerance)
	}
	tol := T(cfg.Tolerance)
	if floor := 4 * numeric.Epsilon[T](); tol < floor {
		tol = floor
	}

	h, y, err := hs.seed(cfg, x0, x, y0, n, obs)
	if err != nil {
		return 0, hs.stats, err
	}

	for k := 1; k < n; k++ {
		if err := hs.record(x0+T(k)*h, y); err != nil {
			return 0, hs.stats, err
		}
		cur, prev := hs.win.newest(), hs.win.previous()
		xn := x0 + T(k+1)*h

		explicit := cur.y + h*(T(2.0/3.0)*cur.f-T(1.0/12.0)*prev.f)
		next := cur.y + h*(1.5*cur.f-0.5*prev.f)

		converged := false
		for it := 0; it < cfg.MaxIterations; it++ {
			fn, err := hs.eval(xn, next)
			if err != nil {
				return 0, hs.stats, err
			}
			corrected := explicit + h*T(5.0/12.0)*fn
			hs.stats.Corrections++

			delta := numeric.Abs(corrected - next)
			next = corrected
			if delta <= tol*(1+numeric.Abs(corrected)) {
				converged = true
				break
			}
		}
		if !numeric.IsFinite(next) {
			return 0, hs.stats, &numeric.EvalError{Op: hs.op, X: float64(xn), Y: float64(next), Wrapped: numeric.ErrNonFinite}
		}
		if !converged {
			return 0, hs.stats, &numeric.EvalError{Op: hs.op, X: float64(xn), Y: float64(next), Wrapped: numeric.ErrConvergence}
		}

		y = next
		hs.stats.Steps++
		if obs != nil {
			obs(xn, y)
		}
	}
	return y, hs.stats, nil
}
