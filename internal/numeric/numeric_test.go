package numeric

import (
	"errors"
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"zero", 0, true},
		{"normal", 1.5, true},
		{"NaN", math.NaN(), false},
		{"+Inf", math.Inf(1), false},
		{"-Inf", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.value); got != tt.want {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}

	if IsFinite(float32(math.Inf(1))) {
		t.Error("float32 +Inf reported finite")
	}
}

func TestEvalNonFinite(t *testing.T) {
	f := func(x float64) float64 { return 1 / x }

	if _, err := Eval("probe", f, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Eval("probe", f, 0)
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}

	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatal("expected *EvalError")
	}
	if evalErr.X != 0 || evalErr.Op != "probe" {
		t.Errorf("unexpected context: %+v", evalErr)
	}
}

func TestEvalDerivRejectsNonFiniteInput(t *testing.T) {
	called := false
	d := func(x, y float64) float64 {
		called = true
		return y
	}

	_, err := EvalDeriv("step", d, 0, math.NaN())
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	if called {
		t.Error("derivative evaluated on NaN state")
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("n must be positive, got %d", -1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	want := "numeric: invalid argument: n must be positive, got -1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestEvalErrorMessage(t *testing.T) {
	err := &EvalError{Op: "adaptive", X: 0.5, Depth: 3, Wrapped: ErrConvergence}
	want := "adaptive at x=0.5 (depth 3): numeric: convergence failure"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestEpsilon(t *testing.T) {
	if got := Epsilon[float64](); got != math.Nextafter(1, 2)-1 {
		t.Errorf("float64 epsilon = %g", got)
	}
	if got := Epsilon[float32](); got != math.Nextafter32(1, 2)-1 {
		t.Errorf("float32 epsilon = %g", got)
	}
}
