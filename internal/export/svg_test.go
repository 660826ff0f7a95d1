package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/numlib/internal/convergence"
)

func TestPath(t *testing.T) {
	var buf bytes.Buffer
	xs := []float64{0, 0.5, 1}
	err := Path(&buf, xs, []float64{1, 1.6, 2.7}, []float64{1, 1.65, 2.72}, 200, 100, "growth <rk4>")
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "<path") != 2 {
		t.Errorf("expected two paths:\n%s", out)
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("reference should be dashed")
	}
	if !strings.Contains(out, "growth &lt;rk4&gt;") {
		t.Error("title not escaped")
	}
}

func TestPlotSkipsNonFinite(t *testing.T) {
	var buf bytes.Buffer
	s := Series{Xs: []float64{0, 1, 2, 3}, Ys: []float64{1, math.NaN(), 2, 3}, Stroke: "#fff"}
	if err := Plot(&buf, []Series{s}, 100, 100, ""); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "M"); n != 2 {
		t.Errorf("expected the gap to start a new subpath, got %d moves", n)
	}

	if err := Plot(&buf, []Series{{Xs: []float64{0}, Ys: []float64{math.Inf(1)}}}, 100, 100, ""); err == nil {
		t.Error("expected error with no finite points")
	}
}

func TestConvergence(t *testing.T) {
	report := &convergence.Report{
		Samples: []convergence.Sample{
			{N: 8, Error: 1e-2, Evaluations: 9},
			{N: 16, Error: 2.5e-3, Evaluations: 17},
			{N: 32, Error: 0, Evaluations: 33},
		},
		Order: 2,
	}

	var buf bytes.Buffer
	if err := Convergence(&buf, report, false, 300, 200); err != nil {
		t.Fatalf("convergence failed: %v", err)
	}
	if !strings.Contains(buf.String(), "order 2.00") {
		t.Errorf("expected fitted order in title:\n%s", buf.String())
	}

	report.Samples = report.Samples[2:]
	if err := Convergence(&buf, report, false, 300, 200); err == nil {
		t.Error("expected error when every error is zero")
	}
}
