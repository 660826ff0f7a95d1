// Package ode propagates initial-value problems y' = f(x, y), y(x0) = y0 to a
// target abscissa x over a fixed number of steps n.
//
// Single-step methods:
//
//   - [Euler]: explicit Euler, order 1
//   - [RungeKutta2]: explicit midpoint, order 2
//   - [RungeKutta4]: classic Runge-Kutta, order 4
//
// Two-step Adams methods, self-started with a single-step method:
//
//   - [AdamsBashforth]: explicit, order 2
//   - [AdamsMoulton]: AB2 predictor with a fixed-point corrector, order 3
//
// The step is h = (x-x0)/n with its sign kept, so x < x0 integrates backward.
// After n steps the solution is returned at exactly x.
package ode
