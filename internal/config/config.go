package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numlib/internal/experiment"
)

const (
	DefaultN         = 64
	DefaultEps       = 1e-8
	DefaultMaxDepth  = 50
	DefaultLevels    = 6
	DefaultStarter   = "euler"
	DefaultEpsFactor = 10.0
)

// Config is the file form of an experiment plus study settings. An empty
// Kind is inferred from Method.
type Config struct {
	Kind          string      `yaml:"kind"`
	Method        string      `yaml:"method"`
	Target        string      `yaml:"target"`
	A             float64     `yaml:"a"`
	B             float64     `yaml:"b"`
	Y0            float64     `yaml:"y0"`
	// Y0Set keeps an explicit zero Y0 from being replaced by the catalog value.
	Y0Set         bool        `yaml:"-"`
	N             int         `yaml:"n"`
	Eps           float64     `yaml:"eps"`
	MaxDepth      int         `yaml:"max_depth"`
	ParallelDepth int         `yaml:"parallel_depth"`
	Starter       string      `yaml:"starter"`
	Study         StudyConfig `yaml:"study"`
}

type StudyConfig struct {
	Levels    int     `yaml:"levels"`
	EpsFactor float64 `yaml:"eps_factor"`
	Parallel  int     `yaml:"parallel"`
}

func DefaultConfig() *Config {
	return &Config{
		Method:   "simpson",
		Target:   "gauss",
		N:        DefaultN,
		Eps:      DefaultEps,
		MaxDepth: DefaultMaxDepth,
		Starter:  DefaultStarter,
		Study: StudyConfig{
			Levels:    DefaultLevels,
			EpsFactor: DefaultEpsFactor,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Experiment converts the file form into a runnable configuration. An empty
// kind is inferred from the method name.
func (c *Config) Experiment(registry *experiment.Registry) (experiment.Config, error) {
	var kind experiment.Kind
	var err error
	if c.Kind == "" {
		kind, err = registry.KindOf(c.Method)
	} else {
		kind, err = experiment.ParseKind(c.Kind)
	}
	if err != nil {
		return experiment.Config{}, err
	}

	return registry.Defaults(experiment.Config{
		Kind:          kind,
		Method:        c.Method,
		Target:        c.Target,
		A:             c.A,
		B:             c.B,
		Y0:            c.Y0,
		Y0Set:         c.Y0Set,
		N:             c.N,
		Eps:           c.Eps,
		MaxDepth:      c.MaxDepth,
		ParallelDepth: c.ParallelDepth,
		Starter:       c.Starter,
	})
}
