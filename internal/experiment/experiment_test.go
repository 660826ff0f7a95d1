package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/numlib/internal/numeric"
)

func TestRunQuadrature(t *testing.T) {
	exp := New(Config{Kind: KindQuadrature, Method: "simpson", Target: "square", A: -1, B: 1, N: 100}, nil, nil)

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !res.HasExact {
		t.Fatal("expected closed-form reference")
	}
	if res.AbsError > 1e-12 {
		t.Errorf("simpson on x² should be exact, error %e", res.AbsError)
	}
	if res.Evaluations != 101 {
		t.Errorf("expected 101 evaluations, got %d", res.Evaluations)
	}
}

func TestRunAdaptive(t *testing.T) {
	exp := New(Config{Kind: KindAdaptive, Method: "adaptive", Target: "gauss", A: -3, B: 3, Eps: 1e-9, ParallelDepth: 2}, nil, nil)

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.AbsError > 1e-9 {
		t.Errorf("error %e above tolerance", res.AbsError)
	}
	if res.Depth == 0 || res.Evaluations == 0 {
		t.Errorf("expected refinement stats, got depth %d evals %d", res.Depth, res.Evaluations)
	}
}

func TestRunODEPath(t *testing.T) {
	exp := New(Config{Kind: KindODE, Method: "rk4", Target: "growth", A: 0, B: 1, Y0: 1, N: 20, KeepPath: true}, nil, nil)

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Xs) != 21 || len(res.Ys) != 21 {
		t.Fatalf("expected 21 path points, got %d", len(res.Xs))
	}
	if res.Value != res.Ys[20] {
		t.Errorf("value %v differs from path end %v", res.Value, res.Ys[20])
	}
	if math.Abs(res.Value-math.E) > 1e-6 {
		t.Errorf("rk4 growth: got %v", res.Value)
	}
	if res.Evaluations != 80 {
		t.Errorf("expected 80 derivative evaluations, got %d", res.Evaluations)
	}
}

func TestRunODEStarter(t *testing.T) {
	base := Config{Kind: KindODE, Method: "am2", Target: "growth", A: 0, B: 1, Y0: 1, N: 100}

	euler, err := New(base, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	base.Starter = "rk4"
	rk4, err := New(base, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rk4.AbsError >= euler.AbsError {
		t.Errorf("rk4 starter error %e not below euler starter error %e", rk4.AbsError, euler.AbsError)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		is   error
	}{
		{"zero panels", Config{Kind: KindQuadrature, Method: "simpson", Target: "exp", A: 0, B: 1, N: 0}, numeric.ErrInvalidArgument},
		{"adaptive step", Config{Kind: KindAdaptive, Method: "adaptive", Target: "step", A: 0, B: 1, Eps: 1e-12, MaxDepth: 12}, numeric.ErrConvergence},
		{"stiff moulton", Config{Kind: KindODE, Method: "am2", Target: "stiff", A: 0, B: 1, Y0: 1, N: 10}, numeric.ErrConvergence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil, nil).Run(context.Background())
			if !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}

	if _, err := New(Config{Kind: KindODE, Method: "rk4", Target: "lorenz", N: 10}, nil, nil).Run(context.Background()); err == nil {
		t.Error("expected error for unknown target")
	}
	if _, err := New(Config{Kind: "symbolic"}, nil, nil).Run(context.Background()); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRunAdjustsPanels(t *testing.T) {
	tests := []struct {
		method string
		n      int
		want   int
	}{
		{"simpson38", 64, 66},
		{"simpson", 3, 4},
		{"trapezoid", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			res, err := New(Config{Kind: KindQuadrature, Method: tt.method, Target: "exp", A: 0, B: 1, N: tt.n}, nil, nil).Run(context.Background())
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if res.Config.N != tt.want {
				t.Errorf("n = %d, want %d", res.Config.N, tt.want)
			}
			if res.Evaluations != int64(tt.want+1) {
				t.Errorf("expected %d evaluations, got %d", tt.want+1, res.Evaluations)
			}
			if res.AbsError > 1e-2 {
				t.Errorf("error too large: %e", res.AbsError)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Kind: KindQuadrature, Method: "trapezoid", Target: "exp", A: 0, B: 1, N: 10}, nil, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, tt := range []struct {
		method string
		kind   Kind
	}{
		{"trapezoid", KindQuadrature},
		{"simpson38", KindQuadrature},
		{"adaptive", KindAdaptive},
		{"ab2", KindODE},
	} {
		got, err := r.KindOf(tt.method)
		if err != nil || got != tt.kind {
			t.Errorf("KindOf(%s) = %v, %v; want %v", tt.method, got, err, tt.kind)
		}
	}
	if _, err := r.KindOf("gauss-legendre"); err == nil {
		t.Error("expected error for unknown method")
	}

	if len(r.ListMethods(KindODE)) != 5 {
		t.Errorf("expected 5 ode methods, got %v", r.ListMethods(KindODE))
	}

	cfg, err := r.Defaults(Config{Kind: KindODE, Target: "logistic"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.B != 5 || cfg.Y0 != 0.1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg, err = r.Defaults(Config{Kind: KindODE, Method: "rk4", Target: "growth", Y0: 2, Y0Set: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.A != 0 || cfg.B != 1 || cfg.Y0 != 2 {
		t.Errorf("initial value replaced: %+v", cfg)
	}
	cfg, err = r.Defaults(Config{Kind: KindODE, Method: "rk4", Target: "growth", Y0Set: true})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Y0 != 0 {
		t.Errorf("explicit zero initial value replaced: %+v", cfg)
	}
	cfg, err = r.Defaults(Config{Kind: KindODE, Method: "rk4", Target: "decay", A: 0, B: 1})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.B != 1 || cfg.Y0 != 1 {
		t.Errorf("initial value not filled for explicit interval: %+v", cfg)
	}

	if _, err := ParseKind("adaptive"); err != nil {
		t.Error(err)
	}
	if _, err := ParseKind("stochastic"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
