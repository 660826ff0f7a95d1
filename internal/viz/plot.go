package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/numlib/internal/convergence"
	"github.com/san-kum/numlib/internal/experiment"
)

// errorFloor stands in for exact results on the log scale.
const errorFloor = -17.0

func log10Error(e float64) float64 {
	if e <= 0 {
		return errorFloor
	}
	return math.Max(math.Log10(e), errorFloor)
}

// ConvergencePlot charts log10 |error| against refinement level.
func ConvergencePlot(samples []convergence.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	series := make([]float64, len(samples))
	for i, sm := range samples {
		series[i] = log10Error(sm.Error)
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(CurrentTheme.Computed),
		asciigraph.Caption("log10 |error| by level"),
	)
}

// PathPlot charts an ODE trajectory. When exact is non-nil it is drawn as
// a second series.
func PathPlot(ys, exact []float64, width, height int, caption string) string {
	if len(ys) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if exact == nil {
		opts = append(opts, asciigraph.SeriesColors(CurrentTheme.Computed))
		return asciigraph.Plot(ys, opts...)
	}
	opts = append(opts,
		asciigraph.SeriesColors(CurrentTheme.Computed, CurrentTheme.Reference),
		asciigraph.SeriesLegends("computed", "exact"),
	)
	return asciigraph.PlotMany([][]float64{ys, exact}, opts...)
}

// ReferencePath evaluates the closed-form solution at xs, or returns nil
// when the target has none.
func ReferencePath(registry *experiment.Registry, cfg experiment.Config, xs []float64) []float64 {
	eq, err := registry.GetEquation(cfg.Target)
	if err != nil || eq.Solution == nil {
		return nil
	}
	exact := make([]float64, len(xs))
	for i, x := range xs {
		exact[i] = eq.Solution(cfg.A, cfg.Y0, x)
	}
	return exact
}

// ResultTable renders one run as labeled lines.
func ResultTable(res *experiment.Result) string {
	var b strings.Builder
	cfg := res.Config
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s · %s", cfg.Method, cfg.Target)))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(MetricValue.Render(value))
		b.WriteString("\n")
	}
	row("interval", fmt.Sprintf("[%g, %g]", cfg.A, cfg.B))
	switch cfg.Kind {
	case experiment.KindAdaptive:
		row("eps", fmt.Sprintf("%.1e", cfg.Eps))
		row("depth", fmt.Sprintf("%d", res.Depth))
	case experiment.KindODE:
		row("y0", fmt.Sprintf("%g", cfg.Y0))
		row("steps", fmt.Sprintf("%d", cfg.N))
	default:
		row("panels", fmt.Sprintf("%d", cfg.N))
	}
	row("value", fmt.Sprintf("%.15g", res.Value))
	if res.HasExact {
		row("exact", fmt.Sprintf("%.15g", res.Exact))
		row("error", fmt.Sprintf("%.3e", res.AbsError))
	}
	row("evals", fmt.Sprintf("%d", res.Evaluations))
	row("elapsed", res.Elapsed.String())
	return b.String()
}
