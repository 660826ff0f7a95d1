package quadrature

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/numlib/internal/numeric"
)

func square(x float64) float64 { return x * x }

func TestSimpsonSquare(t *testing.T) {
	got, err := Simpson(-1.0, 1.0, 100, square)
	if err != nil {
		t.Fatalf("simpson failed: %v", err)
	}
	if math.Abs(got-2.0/3.0) > 1e-3 {
		t.Errorf("expected ~%.6f, got %.6f", 2.0/3.0, got)
	}
}

func TestTrapezoidSquare(t *testing.T) {
	got, err := Trapezoid(-1.0, 1.0, 100, square)
	if err != nil {
		t.Fatalf("trapezoid failed: %v", err)
	}
	// (b-a)·h²·f''/12 = 1.33e-4
	if math.Abs(got-2.0/3.0) > 1e-3 {
		t.Errorf("expected ~%.6f, got %.6f", 2.0/3.0, got)
	}
}

func TestTrapezoidSinglePanel(t *testing.T) {
	f := func(x float64) float64 { return math.Exp(x) }
	a, b := 0.5, 2.0

	got, err := Trapezoid(a, b, 1, f)
	if err != nil {
		t.Fatalf("trapezoid failed: %v", err)
	}

	want := (b - a) * (f(a) + f(b)) / 2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("n=1: got %.12f, want %.12f", got, want)
	}
}

func TestTrapezoidErrorRatio(t *testing.T) {
	exact := math.E - 1
	prev := math.NaN()

	for n := 4; n <= 256; n *= 2 {
		got, err := Trapezoid(0.0, 1.0, n, math.Exp)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		e := math.Abs(got - exact)

		if !math.IsNaN(prev) {
			if e >= prev {
				t.Fatalf("n=%d: error %e did not decrease from %e", n, e, prev)
			}
			ratio := prev / e
			if ratio < 3.9 || ratio > 4.1 {
				t.Errorf("n=%d: error ratio %.3f, expected ~4", n, ratio)
			}
		}
		prev = e
	}
}

func TestSimpsonExactOnCubics(t *testing.T) {
	cube := func(x float64) float64 { return x*x*x - 2*x + 1 }
	// ∫₀² x³ - 2x + 1 dx = 4 - 4 + 2
	got, err := Simpson(0.0, 2.0, 2, cube)
	if err != nil {
		t.Fatalf("simpson failed: %v", err)
	}
	if math.Abs(got-2.0) > 1e-12 {
		t.Errorf("expected 2, got %.12f", got)
	}
}

func TestThreeEighthsExactOnCubics(t *testing.T) {
	cube := func(x float64) float64 { return x * x * x }

	got, err := ThreeEighths(0.0, 2.0, 3, cube)
	if err != nil {
		t.Fatalf("simpson38 failed: %v", err)
	}
	if math.Abs(got-4.0) > 1e-12 {
		t.Errorf("expected 4, got %.12f", got)
	}

	got, err = ThreeEighths(0.0, math.Pi, 99, math.Sin)
	if err != nil {
		t.Fatalf("simpson38 failed: %v", err)
	}
	if math.Abs(got-2.0) > 1e-6 {
		t.Errorf("expected 2, got %.9f", got)
	}
}

func TestReversedInterval(t *testing.T) {
	rules := []struct {
		name string
		fn   func(a, b float64, n int, f numeric.Func[float64]) (float64, error)
	}{
		{"trapezoid", Trapezoid[float64]},
		{"simpson", Simpson[float64]},
		{"simpson38", ThreeEighths[float64]},
	}

	for _, r := range rules {
		t.Run(r.name, func(t *testing.T) {
			fwd, err := r.fn(0, 2, 12, math.Exp)
			if err != nil {
				t.Fatalf("forward: %v", err)
			}
			rev, err := r.fn(2, 0, 12, math.Exp)
			if err != nil {
				t.Fatalf("reverse: %v", err)
			}
			if rev >= 0 {
				t.Errorf("reversed integral of a positive function should be negative, got %f", rev)
			}
			if math.Abs(fwd+rev) > 1e-9 {
				t.Errorf("orientation mismatch: forward %.12f, reverse %.12f", fwd, rev)
			}
		})
	}
}

func TestFixedRulesDeterministic(t *testing.T) {
	f := func(x float64) float64 { return math.Sin(x) * math.Exp(-x/3) }

	for _, name := range RuleNames() {
		r, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		n := r.Admissible(60)
		v1, err1 := r.Integrate(0, 10, n, f)
		v2, err2 := r.Integrate(0, 10, n, f)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: %v / %v", name, err1, err2)
		}
		if math.Float64bits(v1) != math.Float64bits(v2) {
			t.Errorf("%s: results differ: %v vs %v", name, v1, v2)
		}
	}
}

func TestFixedRulesInvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{"trapezoid n=0", func() error { _, err := Trapezoid(0.0, 1.0, 0, square); return err }},
		{"trapezoid n<0", func() error { _, err := Trapezoid(0.0, 1.0, -4, square); return err }},
		{"simpson n=0", func() error { _, err := Simpson(0.0, 1.0, 0, square); return err }},
		{"simpson odd", func() error { _, err := Simpson(0.0, 1.0, 7, square); return err }},
		{"simpson38 n=0", func() error { _, err := ThreeEighths(0.0, 1.0, 0, square); return err }},
		{"simpson38 n=4", func() error { _, err := ThreeEighths(0.0, 1.0, 4, square); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, numeric.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestFixedRulesNonFinite(t *testing.T) {
	inv := func(x float64) float64 { return 1 / x }

	if _, err := Trapezoid(0.0, 1.0, 10, inv); !errors.Is(err, numeric.ErrNonFinite) {
		t.Errorf("trapezoid: expected ErrNonFinite, got %v", err)
	}
	if _, err := Simpson(-1.0, 1.0, 10, inv); !errors.Is(err, numeric.ErrNonFinite) {
		t.Errorf("simpson: expected ErrNonFinite, got %v", err)
	}
	nan := func(x float64) float64 { return math.NaN() }
	if _, err := ThreeEighths(0.0, 1.0, 3, nan); !errors.Is(err, numeric.ErrNonFinite) {
		t.Errorf("simpson38: expected ErrNonFinite, got %v", err)
	}

	// Every sample is finite but the weighted sum is not.
	huge := func(x float64) float64 { return 1e308 }
	overflow := []struct {
		name string
		run  func() (float64, error)
	}{
		{"trapezoid", func() (float64, error) { return Trapezoid(0.0, 10.0, 4, huge) }},
		{"simpson", func() (float64, error) { return Simpson(0.0, 10.0, 4, huge) }},
		{"simpson38", func() (float64, error) { return ThreeEighths(0.0, 10.0, 3, huge) }},
	}
	for _, tt := range overflow {
		v, err := tt.run()
		if !errors.Is(err, numeric.ErrNonFinite) {
			t.Errorf("%s overflow: expected ErrNonFinite, got v=%v err=%v", tt.name, v, err)
		}
		var ee *numeric.EvalError
		if errors.As(err, &ee) && ee.Op != tt.name {
			t.Errorf("%s overflow: op = %q", tt.name, ee.Op)
		}
	}

	decay := func(x float64) float64 { return math.Exp(-x) }
	if _, err := Trapezoid(0.0, math.Inf(1), 4, decay); !errors.Is(err, numeric.ErrInvalidArgument) {
		t.Errorf("infinite bound: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Simpson(math.NaN(), 1.0, 4, decay); !errors.Is(err, numeric.ErrInvalidArgument) {
		t.Errorf("nan bound: expected ErrInvalidArgument, got %v", err)
	}
}

func TestFloat32(t *testing.T) {
	f := func(x float32) float32 { return x * x }

	got, err := Simpson[float32](-1, 1, 100, f)
	if err != nil {
		t.Fatalf("simpson float32: %v", err)
	}
	if math.Abs(float64(got)-2.0/3.0) > 1e-4 {
		t.Errorf("float32 simpson: got %v", got)
	}
}

func TestRuleLookup(t *testing.T) {
	if _, err := Lookup("midpoint"); err == nil {
		t.Error("expected error for unknown rule")
	}

	tests := []struct {
		rule string
		n    int
		want int
	}{
		{"trapezoid", 7, 7},
		{"simpson", 7, 8},
		{"simpson", 0, 2},
		{"simpson38", 10, 12},
		{"simpson38", 9, 9},
	}
	for _, tt := range tests {
		r, err := Lookup(tt.rule)
		if err != nil {
			t.Fatal(err)
		}
		if got := r.Admissible(tt.n); got != tt.want {
			t.Errorf("%s.Admissible(%d) = %d, want %d", tt.rule, tt.n, got, tt.want)
		}
	}
}
