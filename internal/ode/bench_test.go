package ode

import "testing"

func oscillating(x, y float64) float64 { return -y + x*x }

func BenchmarkEuler(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Euler(0.0, 1.0, 1.0, 1000, oscillating)
	}
}

func BenchmarkRK4(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = RungeKutta4(0.0, 1.0, 1.0, 1000, oscillating)
	}
}

func BenchmarkAdamsBashforth(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = AdamsBashforth(0.0, 1.0, 1.0, 1000, oscillating)
	}
}

func BenchmarkAdamsMoulton(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = AdamsMoulton(0.0, 1.0, 1.0, 1000, oscillating)
	}
}

func BenchmarkRK4_Float32(b *testing.B) {
	d := func(x, y float32) float32 { return -y + x*x }
	for i := 0; i < b.N; i++ {
		_, _ = RungeKutta4[float32](0, 1, 1, 1000, d)
	}
}
