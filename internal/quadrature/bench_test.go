package quadrature

import (
	"math"
	"testing"
)

func damped(x float64) float64 { return math.Exp(-x) * math.Cos(7*x) }

func BenchmarkTrapezoid(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Trapezoid(0.0, 5.0, 1000, damped)
	}
}

func BenchmarkSimpson(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Simpson(0.0, 5.0, 1000, damped)
	}
}

func BenchmarkAdaptive(b *testing.B) {
	cfg := DefaultAdaptiveConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = AdaptiveWith(cfg, 0.0, 5.0, damped, 1e-10)
	}
}

func BenchmarkAdaptive_Parallel(b *testing.B) {
	cfg := DefaultAdaptiveConfig()
	cfg.ParallelDepth = 3

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = AdaptiveWith(cfg, 0.0, 5.0, damped, 1e-10)
	}
}
