// Package export renders stored results as standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/numlib/internal/convergence"
)

// Series is one polyline. Dashed series are drawn as references.
type Series struct {
	Xs, Ys []float64
	Stroke string
	Dashed bool
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func seriesBounds(series []Series) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, s := range series {
		for i := range s.Xs {
			x, y := s.Xs[i], s.Ys[i]
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				continue
			}
			b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
			b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
			found = true
		}
	}
	return b, found
}

// Plot writes the series scaled into a width×height viewport.
func Plot(w io.Writer, series []Series, width, height int, title string) error {
	b, ok := seriesBounds(series)
	if !ok {
		return fmt.Errorf("no finite points to draw")
	}
	b.pad()
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" fill="#888899" font-family="monospace" font-size="12">%s</text>
`, escape(title)))
	}

	for _, s := range series {
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="`, s.Stroke, dash))
		move := true
		for i := range s.Xs {
			if math.IsNaN(s.Ys[i]) || math.IsInf(s.Ys[i], 0) {
				move = true
				continue
			}
			x := (s.Xs[i] - b.minX) / rangeX * float64(width)
			y := float64(height) - (s.Ys[i]-b.minY)/rangeY*float64(height)
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Path draws an ODE trajectory, with the closed-form reference dashed when
// exact is non-nil.
func Path(w io.Writer, xs, ys, exact []float64, width, height int, title string) error {
	series := []Series{{Xs: xs, Ys: ys, Stroke: "#00ffff"}}
	if exact != nil {
		series = append(series, Series{Xs: xs, Ys: exact, Stroke: "#ff00ff", Dashed: true})
	}
	return Plot(w, series, width, height, title)
}

// Convergence draws log10 |error| against log10 of the refinement variable:
// n for fixed-step studies, evaluations for adaptive ones. A line of the
// fitted order is dashed through the first usable point.
func Convergence(w io.Writer, report *convergence.Report, byEvaluations bool, width, height int) error {
	var xs, ys []float64
	for _, sm := range report.Samples {
		x := float64(sm.N)
		if byEvaluations {
			x = float64(sm.Evaluations)
		}
		if x <= 0 || sm.Error <= 0 {
			continue
		}
		xs = append(xs, math.Log10(x))
		ys = append(ys, math.Log10(sm.Error))
	}
	if len(xs) == 0 {
		return fmt.Errorf("no nonzero errors to draw")
	}

	series := []Series{{Xs: xs, Ys: ys, Stroke: "#00ff88"}}
	title := "log10 |error|"
	if !math.IsNaN(report.Order) && len(xs) > 1 {
		fit := make([]float64, len(xs))
		for i := range xs {
			fit[i] = ys[0] - report.Order*(xs[i]-xs[0])
		}
		series = append(series, Series{Xs: xs, Ys: fit, Stroke: "#ffcc00", Dashed: true})
		title = fmt.Sprintf("log10 |error|, order %.2f", report.Order)
	}
	return Plot(w, series, width, height, title)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
