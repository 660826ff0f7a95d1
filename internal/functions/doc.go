// Package functions is the catalog of named integrands and initial-value
// problems used by the CLI, the experiment registry and the convergence
// studies. Each entry carries a closed-form reference when one exists.
package functions
