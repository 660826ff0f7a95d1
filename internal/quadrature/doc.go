// Package quadrature approximates definite integrals of scalar functions.
//
// Fixed-step composite rules:
//
//   - [Trapezoid]: composite trapezoidal rule, O(h²)
//   - [Simpson]: composite Simpson rule, O(h⁴), even n
//   - [ThreeEighths]: composite Simpson 3/8 rule, O(h⁴), n a multiple of 3
//
// Adaptive:
//
//   - [Adaptive] / [AdaptiveWith]: recursive Simpson bisection with a
//     Richardson error estimate and a depth guard
//
// # Orientation
//
// The step h = (b-a)/n keeps its sign, so integrating with a > b returns the
// negated integral over [b, a].
//
// # Example
//
//	v, err := quadrature.Simpson(0.0, math.Pi, 100, math.Sin)
//	v, stats, err := quadrature.AdaptiveWith(cfg, 0.0, 4*math.Pi, math.Sin, 1e-8)
package quadrature
