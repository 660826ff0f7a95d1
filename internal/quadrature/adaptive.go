package quadrature

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/numlib/internal/numeric"
)

// DefaultMaxDepth bounds recursion when the caller sets no limit.
const DefaultMaxDepth = 50

// AdaptiveConfig bounds the recursive bisection.
type AdaptiveConfig struct {
	// MaxDepth is the deepest bisection level allowed before the call fails
	// with numeric.ErrConvergence.
	MaxDepth int

	// ParallelDepth is the number of top levels whose two halves are
	// evaluated concurrently. Zero keeps the recursion on one goroutine.
	ParallelDepth int
}

// DefaultAdaptiveConfig runs serially with DefaultMaxDepth.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{MaxDepth: DefaultMaxDepth}
}

// Stats describes the work done by one adaptive integration.
type Stats struct {
	Evaluations int64
	Panels      int64
	Depth       int
}

// Adaptive integrates f over [a, b] with the default configuration.
func Adaptive[T numeric.Float](a, b T, f numeric.Func[T], eps T) (T, error) {
	v, _, err := AdaptiveWith(DefaultAdaptiveConfig(), a, b, f, eps)
	return v, err
}

// AdaptiveWith integrates f over [a, b] to within eps using recursive Simpson
// bisection. Every accepted panel satisfies |left+right-whole| <= 15*eps_i,
// where eps_i is eps halved once per level.
func AdaptiveWith[T numeric.Float](cfg AdaptiveConfig, a, b T, f numeric.Func[T], eps T) (T, Stats, error) {
	return AdaptiveContext(context.Background(), cfg, a, b, f, eps)
}

// AdaptiveContext is AdaptiveWith with a context checked at every level.
func AdaptiveContext[T numeric.Float](ctx context.Context, cfg AdaptiveConfig, a, b T, f numeric.Func[T], eps T) (T, Stats, error) {
	if !(eps > 0) || !numeric.IsFinite(eps) {
		return 0, Stats{}, numeric.Invalid("adaptive: eps must be positive, got %v", eps)
	}
	if cfg.MaxDepth < 1 {
		return 0, Stats{}, numeric.Invalid("adaptive: max depth must be positive, got %d", cfg.MaxDepth)
	}
	if !numeric.IsFinite(a) || !numeric.IsFinite(b) {
		return 0, Stats{}, numeric.Invalid("adaptive: bounds must be finite, got [%v, %v]", a, b)
	}
	if a == b {
		return 0, Stats{}, nil
	}

	r := &adaptiveRun[T]{f: f, cfg: cfg}

	fa, err := r.eval(a)
	if err != nil {
		return 0, r.stats(), err
	}
	fb, err := r.eval(b)
	if err != nil {
		return 0, r.stats(), err
	}
	m := (a + b) / 2
	fm, err := r.eval(m)
	if err != nil {
		return 0, r.stats(), err
	}

	whole := panel(a, b, fa, fm, fb)
	v, err := r.recurse(ctx, a, b, fa, fm, fb, whole, eps, 0)
	if err != nil {
		return 0, r.stats(), err
	}
	return v, r.stats(), nil
}

type adaptiveRun[T numeric.Float] struct {
	f   numeric.Func[T]
	cfg AdaptiveConfig

	evals    atomic.Int64
	panels   atomic.Int64
	maxDepth atomic.Int64
}

func (r *adaptiveRun[T]) eval(x T) (T, error) {
	r.evals.Add(1)
	return numeric.Eval("adaptive", r.f, x)
}

func (r *adaptiveRun[T]) stats() Stats {
	return Stats{
		Evaluations: r.evals.Load(),
		Panels:      r.panels.Load(),
		Depth:       int(r.maxDepth.Load()),
	}
}

func (r *adaptiveRun[T]) reach(depth int) {
	d := int64(depth)
	for {
		cur := r.maxDepth.Load()
		if d <= cur || r.maxDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

func (r *adaptiveRun[T]) recurse(ctx context.Context, a, b, fa, fm, fb, whole, eps T, depth int) (T, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.reach(depth)

	m := (a + b) / 2
	lm := (a + m) / 2
	rm := (m + b) / 2
	if lm == a || rm == b || m == a || m == b {
		return 0, &numeric.EvalError{Op: "adaptive", X: float64(m), Depth: depth, Wrapped: numeric.ErrConvergence}
	}

	flm, err := r.eval(lm)
	if err != nil {
		return 0, err
	}
	frm, err := r.eval(rm)
	if err != nil {
		return 0, err
	}

	left := panel(a, m, fa, flm, fm)
	right := panel(m, b, fm, frm, fb)
	delta := left + right - whole
	if !numeric.IsFinite(delta) {
		return 0, &numeric.EvalError{Op: "adaptive", X: float64(m), Y: float64(delta), Wrapped: numeric.ErrNonFinite}
	}

	if numeric.Abs(delta) <= 15*eps {
		r.panels.Add(1)
		return left + right + delta/15, nil
	}
	if depth+1 >= r.cfg.MaxDepth {
		return 0, &numeric.EvalError{Op: "adaptive", X: float64(m), Depth: depth + 1, Wrapped: numeric.ErrConvergence}
	}

	half := eps / 2
	if depth < r.cfg.ParallelDepth {
		var lv, rv T
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			lv, err = r.recurse(gctx, a, m, fa, flm, fm, left, half, depth+1)
			return err
		})
		g.Go(func() error {
			var err error
			rv, err = r.recurse(gctx, m, b, fm, frm, fb, right, half, depth+1)
			return err
		})
		if err := g.Wait(); err != nil {
			return 0, err
		}
		return lv + rv, nil
	}

	lv, err := r.recurse(ctx, a, m, fa, flm, fm, left, half, depth+1)
	if err != nil {
		return 0, err
	}
	rv, err := r.recurse(ctx, m, b, fm, frm, fb, right, half, depth+1)
	if err != nil {
		return 0, err
	}
	return lv + rv, nil
}

// panel is the single-panel Simpson estimate over [a, b] with midpoint value fm.
func panel[T numeric.Float](a, b, fa, fm, fb T) T {
	return (b - a) / 6 * (fa + 4*fm + fb)
}
