package config

import "sort"

// Presets holds named experiments that show each method's characteristic
// behavior.
var Presets = map[string]*Config{
	"simpson-exp": {
		Kind: "quadrature", Method: "simpson", Target: "exp", N: 8,
		Study: StudyConfig{Levels: 6},
	},
	"trapezoid-exp": {
		Kind: "quadrature", Method: "trapezoid", Target: "exp", N: 8,
		Study: StudyConfig{Levels: 8},
	},
	"simpson38-oscillatory": {
		Kind: "quadrature", Method: "simpson38", Target: "oscillatory", N: 12,
		Study: StudyConfig{Levels: 6},
	},
	"adaptive-runge": {
		Kind: "adaptive", Method: "adaptive", Target: "runge", Eps: 1e-4, MaxDepth: 50,
		Study: StudyConfig{Levels: 6, EpsFactor: 10},
	},
	"adaptive-peak": {
		Kind: "adaptive", Method: "adaptive", Target: "peak", Eps: 1e-6, MaxDepth: 50, ParallelDepth: 3,
		Study: StudyConfig{Levels: 5, EpsFactor: 10},
	},
	"adaptive-step": {
		Kind: "adaptive", Method: "adaptive", Target: "step", Eps: 1e-10, MaxDepth: 20,
	},
	"euler-growth": {
		Kind: "ode", Method: "euler", Target: "growth", N: 16,
		Study: StudyConfig{Levels: 8},
	},
	"rk4-logistic": {
		Kind: "ode", Method: "rk4", Target: "logistic", N: 10,
		Study: StudyConfig{Levels: 6},
	},
	"am2-forced": {
		Kind: "ode", Method: "am2", Target: "forced", N: 20, Starter: "rk4",
		Study: StudyConfig{Levels: 6},
	},
	"ab2-stiff": {
		Kind: "ode", Method: "ab2", Target: "stiff", N: 100,
	},
}

// GetPreset returns a copy of the named preset with unset fields filled
// from DefaultConfig, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Kind, cfg.Method, cfg.Target = p.Kind, p.Method, p.Target
	cfg.A, cfg.B, cfg.Y0 = p.A, p.B, p.Y0
	if p.N > 0 {
		cfg.N = p.N
	}
	if p.Eps > 0 {
		cfg.Eps = p.Eps
	}
	if p.MaxDepth > 0 {
		cfg.MaxDepth = p.MaxDepth
	}
	cfg.ParallelDepth = p.ParallelDepth
	if p.Starter != "" {
		cfg.Starter = p.Starter
	}
	if p.Study.Levels > 0 {
		cfg.Study.Levels = p.Study.Levels
	}
	if p.Study.EpsFactor > 0 {
		cfg.Study.EpsFactor = p.Study.EpsFactor
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
