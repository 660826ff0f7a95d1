package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/san-kum/numlib/internal/convergence"
	"github.com/san-kum/numlib/internal/experiment"
)

func TestConvergencePlot(t *testing.T) {
	samples := []convergence.Sample{
		{Level: 0, Error: 1e-2},
		{Level: 1, Error: 1e-4},
		{Level: 2, Error: 0},
	}

	out := ConvergencePlot(samples, 30, 6)
	if !strings.Contains(out, "log10 |error| by level") {
		t.Errorf("missing caption:\n%s", out)
	}
	if ConvergencePlot(nil, 30, 6) != "" {
		t.Error("expected empty plot for no samples")
	}
}

func TestPathPlot(t *testing.T) {
	registry := experiment.NewRegistry()
	cfg := experiment.Config{Kind: experiment.KindODE, Target: "growth", A: 0, B: 1, Y0: 1}
	xs := []float64{0, 0.5, 1}
	ys := []float64{1, 1.6, 2.7}

	exact := ReferencePath(registry, cfg, xs)
	if len(exact) != 3 || exact[0] != 1 {
		t.Fatalf("unexpected reference %v", exact)
	}

	out := PathPlot(ys, exact, 30, 6, "growth")
	if !strings.Contains(out, "exact") {
		t.Errorf("expected legend in plot:\n%s", out)
	}
	if out := PathPlot(ys, nil, 30, 6, "growth"); !strings.Contains(out, "growth") {
		t.Errorf("expected caption in plot:\n%s", out)
	}

	cfg.Target = "missing"
	if ReferencePath(registry, cfg, xs) != nil {
		t.Error("expected nil reference for unknown equation")
	}
}

func TestResultTable(t *testing.T) {
	res := &experiment.Result{
		Config:      experiment.Config{Kind: experiment.KindAdaptive, Method: "adaptive", Target: "gauss", A: -1, B: 1, Eps: 1e-8},
		Value:       1.4936,
		Exact:       1.4936,
		HasExact:    true,
		Evaluations: 129,
		Depth:       5,
		Elapsed:     time.Millisecond,
	}

	out := ResultTable(res)
	for _, want := range []string{"adaptive", "gauss", "depth", "129", "error"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)

	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back to default")
	}
	SetTheme("ocean")
	if CurrentTheme.Name != "ocean" {
		t.Errorf("expected ocean, got %s", CurrentTheme.Name)
	}
	if NextTheme() != ThemeCyberpunk.Name {
		t.Errorf("expected wraparound to %s, got %s", ThemeCyberpunk.Name, NextTheme())
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestErrorSparkline(t *testing.T) {
	if ErrorSparkline(nil) != "" {
		t.Error("expected empty sparkline")
	}
	out := ErrorSparkline([]float64{1e-2, 1e-5, 0, 1e-8})
	if n := strings.Count(out, "▁") + strings.Count(out, "█") + strings.Count(out, "▄") + strings.Count(out, "▅"); n == 0 {
		t.Errorf("sparkline has no bars: %q", out)
	}
}
