package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"benchviz/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("%s is not a PNG", path)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind for %s", path)
	}
}

func sampleBins(values ...int) []model.HistogramBin {
	bins := make([]model.HistogramBin, len(values))
	for i, v := range values {
		bins[i] = model.HistogramBin{Min: float64(i), Max: float64(i + 1), Count: v}
	}
	return bins
}

func renderers() []Renderer {
	return []Renderer{NewGonum(), NewGoChart()}
}

func TestRenderCharts(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{Time: start, Value: 2},
		{Time: start.Add(time.Second), Value: 5},
		{Time: start.Add(3 * time.Second), Value: 1},
	}

	for _, r := range renderers() {
		t.Run(r.Name(), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested")

			bar := filepath.Join(dir, "bar.png")
			err := r.BarChart(bar, BarChart{
				Title:         "Aggregate Metrics",
				XLabel:        "Metric",
				YLabel:        "Count",
				Bars:          []Bar{{Label: "tx_submitted", Value: 3}, {Label: "mempool_size", Value: 1}},
				LabelRotation: 45,
				Size:          SizeWide,
			})
			if err != nil {
				t.Fatalf("bar chart: %v", err)
			}
			assertPNG(t, bar)

			hist := filepath.Join(dir, "hist.png")
			err = r.Histogram(hist, Histogram{Title: "Latency", XLabel: "Seconds", YLabel: "Frequency", Legend: "Latency", Bins: sampleBins(1, 0, 4, 2), Grid: true, Size: SizeShort})
			if err != nil {
				t.Fatalf("histogram: %v", err)
			}
			assertPNG(t, hist)

			series := filepath.Join(dir, "series.png")
			err = r.TimeSeries(series, TimeSeries{Title: "Throughput", Points: points, Markers: true, Grid: true, Size: SizeShort})
			if err != nil {
				t.Fatalf("time series: %v", err)
			}
			assertPNG(t, series)
		})
	}
}

func TestRenderEmptyCharts(t *testing.T) {
	for _, r := range renderers() {
		t.Run(r.Name(), func(t *testing.T) {
			dir := t.TempDir()

			if err := r.BarChart(filepath.Join(dir, "bar.png"), BarChart{Title: "empty", Size: SizeWide}); err != nil {
				t.Fatalf("bar chart: %v", err)
			}
			if err := r.Histogram(filepath.Join(dir, "hist.png"), Histogram{Title: "empty", Bins: sampleBins(0, 0, 0), Size: SizeShort}); err != nil {
				t.Fatalf("histogram: %v", err)
			}
			if err := r.TimeSeries(filepath.Join(dir, "series.png"), TimeSeries{Title: "empty", Size: SizeShort}); err != nil {
				t.Fatalf("time series: %v", err)
			}
			for _, name := range []string{"bar.png", "hist.png", "series.png"} {
				assertPNG(t, filepath.Join(dir, name))
			}
		})
	}
}

func TestRenderSinglePoint(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range renderers() {
		t.Run(r.Name(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "single.png")
			if err := r.TimeSeries(path, TimeSeries{Points: []Point{{Time: at, Value: 5}}, Markers: true, Size: SizeShort}); err != nil {
				t.Fatalf("time series: %v", err)
			}
			assertPNG(t, path)
		})
	}
}

func TestRenderOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bar.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}
	if err := NewGonum().BarChart(path, BarChart{Bars: []Bar{{Label: "a", Value: 1}}, Size: SizeWide}); err != nil {
		t.Fatalf("bar chart: %v", err)
	}
	assertPNG(t, path)
}

func TestNew(t *testing.T) {
	cases := map[string]string{"": BackendGonum, "gonum": BackendGonum, " GoChart ": BackendGoChart}
	for input, want := range cases {
		r, err := New(input)
		if err != nil {
			t.Fatalf("new %q: %v", input, err)
		}
		if r.Name() != want {
			t.Fatalf("new %q: got %s, want %s", input, r.Name(), want)
		}
	}
	if _, err := New("svg"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange(5, 5, 1)
	if r.Min != 4 || r.Max != 6 {
		t.Fatalf("unexpected flat range: %+v", r)
	}
	r = paddedRange(0, 10, 1)
	if r.Min != -0.5 || r.Max != 10.5 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestGoChartBarsCarryLabels(t *testing.T) {
	bc := goChartBars{
		title:  "Latency",
		xLabel: "Seconds",
		yLabel: "Frequency",
		legend: "IBC",
		size:   Size{Width: 8, Height: 5},
	}.chart()

	if bc.Title != "Latency" {
		t.Fatalf("legend should not be folded into the title: %q", bc.Title)
	}
	if bc.YAxis.Name != "Frequency" {
		t.Fatalf("unexpected y axis name: %q", bc.YAxis.Name)
	}
	if len(bc.Elements) != 1 {
		t.Fatalf("expected one annotation element, got %d", len(bc.Elements))
	}

	bare := goChartBars{title: "Counts", size: Size{Width: 8, Height: 5}}.chart()
	if len(bare.Elements) != 0 {
		t.Fatalf("unlabelled chart should have no annotations")
	}
}
