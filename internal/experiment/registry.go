package experiment

import (
	"fmt"

	"github.com/san-kum/numlib/internal/functions"
	"github.com/san-kum/numlib/internal/ode"
	"github.com/san-kum/numlib/internal/quadrature"
)

// Kind selects the engine an experiment runs on.
type Kind string

const (
	KindQuadrature Kind = "quadrature"
	KindAdaptive   Kind = "adaptive"
	KindODE        Kind = "ode"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindQuadrature, KindAdaptive, KindODE:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind: %s", s)
	}
}

// Registry resolves method and target names for each kind.
type Registry struct {
	rules       map[string]func() (quadrature.Rule, error)
	methods     map[string]func() (ode.Method, error)
	integrands  map[string]func() (functions.Integrand, error)
	equations   map[string]func() (functions.Equation, error)
	ruleNames   []string
	methodNames []string
}

func NewRegistry() *Registry {
	r := &Registry{
		rules:       make(map[string]func() (quadrature.Rule, error)),
		methods:     make(map[string]func() (ode.Method, error)),
		integrands:  make(map[string]func() (functions.Integrand, error)),
		equations:   make(map[string]func() (functions.Equation, error)),
		ruleNames:   quadrature.RuleNames(),
		methodNames: ode.MethodNames(),
	}

	for _, name := range r.ruleNames {
		name := name
		r.rules[name] = func() (quadrature.Rule, error) { return quadrature.Lookup(name) }
	}
	for _, name := range r.methodNames {
		name := name
		r.methods[name] = func() (ode.Method, error) { return ode.Lookup(name) }
	}
	for _, name := range functions.IntegrandNames() {
		name := name
		r.integrands[name] = func() (functions.Integrand, error) { return functions.LookupIntegrand(name) }
	}
	for _, name := range functions.EquationNames() {
		name := name
		r.equations[name] = func() (functions.Equation, error) { return functions.LookupEquation(name) }
	}

	return r
}

func (r *Registry) GetRule(name string) (quadrature.Rule, error) {
	fn, ok := r.rules[name]
	if !ok {
		return quadrature.Rule{}, fmt.Errorf("unknown rule: %s", name)
	}
	return fn()
}

func (r *Registry) GetMethod(name string) (ode.Method, error) {
	fn, ok := r.methods[name]
	if !ok {
		return ode.Method{}, fmt.Errorf("unknown method: %s", name)
	}
	return fn()
}

func (r *Registry) GetIntegrand(name string) (functions.Integrand, error) {
	fn, ok := r.integrands[name]
	if !ok {
		return functions.Integrand{}, fmt.Errorf("unknown integrand: %s", name)
	}
	return fn()
}

func (r *Registry) GetEquation(name string) (functions.Equation, error) {
	fn, ok := r.equations[name]
	if !ok {
		return functions.Equation{}, fmt.Errorf("unknown equation: %s", name)
	}
	return fn()
}

// ListMethods returns the method names valid for kind.
func (r *Registry) ListMethods(kind Kind) []string {
	switch kind {
	case KindQuadrature:
		return append([]string(nil), r.ruleNames...)
	case KindAdaptive:
		return []string{"adaptive"}
	default:
		return append([]string(nil), r.methodNames...)
	}
}

// ListTargets returns the catalog names valid for kind.
func (r *Registry) ListTargets(kind Kind) []string {
	if kind == KindODE {
		return functions.EquationNames()
	}
	return functions.IntegrandNames()
}

// KindOf infers the kind from a method name.
func (r *Registry) KindOf(method string) (Kind, error) {
	if method == "adaptive" {
		return KindAdaptive, nil
	}
	if _, ok := r.rules[method]; ok {
		return KindQuadrature, nil
	}
	if _, ok := r.methods[method]; ok {
		return KindODE, nil
	}
	return "", fmt.Errorf("unknown method: %s", method)
}
