package ode

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numlib/internal/numeric"
)

var _ = Describe("window", func() {
	It("keeps the two most recent points", func() {
		var w window[float64]
		w.push(point[float64]{x: 0, y: 1})
		w.push(point[float64]{x: 1, y: 2})
		Expect(w.newest().x).To(Equal(1.0))
		Expect(w.previous().x).To(Equal(0.0))

		w.push(point[float64]{x: 2, y: 4})
		Expect(w.newest().x).To(Equal(2.0))
		Expect(w.previous().x).To(Equal(1.0))
	})
})

var _ = Describe("AdamsBashforth", func() {
	exact := math.E

	It("approximates exponential growth", func() {
		y, err := AdamsBashforth(0.0, 1.0, 1.0, 100, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(y).To(BeNumerically("~", exact, 1e-3))
	})

	It("converges with second order", func() {
		coarse, err := AdamsBashforth(0.0, 1.0, 1.0, 200, growth)
		Expect(err).NotTo(HaveOccurred())
		fine, err := AdamsBashforth(0.0, 1.0, 1.0, 400, growth)
		Expect(err).NotTo(HaveOccurred())

		ratio := math.Abs(coarse-exact) / math.Abs(fine-exact)
		Expect(ratio).To(BeNumerically("~", 4, 0.3))
	})

	It("reduces to one Euler step when n is 1", func() {
		ab, err := AdamsBashforth(0.0, 0.5, 2.0, 1, growth)
		Expect(err).NotTo(HaveOccurred())
		eu, err := Euler(0.0, 0.5, 2.0, 1, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(ab).To(Equal(eu))
	})

	It("integrates backward", func() {
		y, err := AdamsBashforth(1.0, 0.0, exact, 200, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(y).To(BeNumerically("~", 1, 1e-4))
	})

	It("evaluates the derivative once per step", func() {
		_, stats, err := AdamsBashforthWith(DefaultMultistepConfig(), 0.0, 1.0, 1.0, 50, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Steps).To(Equal(50))
		Expect(stats.Evaluations).To(Equal(50))
		Expect(stats.Corrections).To(BeZero())
	})

	It("rejects a non-positive step count", func() {
		_, err := AdamsBashforth(0.0, 1.0, 1.0, 0, growth)
		Expect(err).To(MatchError(numeric.ErrInvalidArgument))
	})

	It("reports non-finite derivatives", func() {
		d := func(x, y float64) float64 {
			if x > 0.3 {
				return math.Inf(1)
			}
			return y
		}
		_, err := AdamsBashforth(0.0, 1.0, 1.0, 10, d)
		Expect(err).To(MatchError(numeric.ErrNonFinite))
	})
})

var _ = Describe("AdamsMoulton", func() {
	exact := math.E

	It("approximates exponential growth", func() {
		y, err := AdamsMoulton(0.0, 1.0, 1.0, 100, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(y).To(BeNumerically("~", exact, 1e-3))
	})

	It("is second order with the Euler starter", func() {
		coarse, err := AdamsMoulton(0.0, 1.0, 1.0, 100, growth)
		Expect(err).NotTo(HaveOccurred())
		fine, err := AdamsMoulton(0.0, 1.0, 1.0, 200, growth)
		Expect(err).NotTo(HaveOccurred())

		Expect(math.Abs(coarse-exact) / math.Abs(fine-exact)).To(BeNumerically("~", 4, 0.3))
	})

	It("is third order with the RK4 starter", func() {
		cfg := DefaultMultistepConfig()
		cfg.Starter = StartRK4

		coarse, _, err := AdamsMoultonWith(cfg, 0.0, 1.0, 1.0, 50, growth)
		Expect(err).NotTo(HaveOccurred())
		fine, _, err := AdamsMoultonWith(cfg, 0.0, 1.0, 1.0, 100, growth)
		Expect(err).NotTo(HaveOccurred())

		Expect(math.Abs(coarse-exact) / math.Abs(fine-exact)).To(BeNumerically("~", 8, 0.6))
		Expect(fine).To(BeNumerically("~", exact, 1e-6))
	})

	It("iterates the corrector to a fixed point", func() {
		_, stats, err := AdamsMoultonWith(DefaultMultistepConfig(), 0.0, 1.0, 1.0, 20, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Steps).To(Equal(20))
		Expect(stats.Corrections).To(BeNumerically(">", 19))
	})

	It("fails when the corrector cannot contract", func() {
		stiff := func(x, y float64) float64 { return -1000 * y }
		_, err := AdamsMoulton(0.0, 1.0, 1.0, 10, stiff)
		Expect(err).To(MatchError(numeric.ErrConvergence))

		var evalErr *numeric.EvalError
		Expect(errors.As(err, &evalErr)).To(BeTrue())
		Expect(evalErr.X).To(BeNumerically("~", 0.2, 1e-12))
	})

	It("integrates backward", func() {
		y, err := AdamsMoulton(1.0, 0.0, exact, 200, growth)
		Expect(err).NotTo(HaveOccurred())
		Expect(y).To(BeNumerically("~", 1, 1e-4))
	})

	It("rejects a bad corrector configuration", func() {
		cfg := DefaultMultistepConfig()
		cfg.MaxIterations = 0
		_, _, err := AdamsMoultonWith(cfg, 0.0, 1.0, 1.0, 10, growth)
		Expect(err).To(MatchError(numeric.ErrInvalidArgument))
	})

	It("works in single precision", func() {
		d := func(x, y float32) float32 { return y }
		y, err := AdamsMoulton[float32](0, 1, 1, 100, d)
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(y)).To(BeNumerically("~", exact, 1e-3))
	})
})
