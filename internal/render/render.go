// Package render draws report charts to PNG files.
//
// Charts are described by plain data (BarChart, Histogram, TimeSeries) so the
// numbers behind an image do not depend on the backend that draws it. Every
// chart is written, even when it has no data.
package render

import (
	"fmt"
	"strings"
	"time"

	"benchviz/internal/model"
)

// Backend names accepted by New.
const (
	BackendGonum   = "gonum"
	BackendGoChart = "gochart"
)

// DPI used to convert chart sizes to pixels.
const DPI = 100

// Size is a chart size in inches.
type Size struct {
	Width  float64
	Height float64
}

func (s Size) pixels() (int, int) {
	return int(s.Width * DPI), int(s.Height * DPI)
}

var (
	SizeWide  = Size{Width: 12, Height: 8}
	SizeShort = Size{Width: 12, Height: 6}
)

// Bar is one labelled bar.
type Bar struct {
	Label string
	Value float64
}

// BarChart is a vertical bar chart.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
	// LabelRotation rotates the x tick labels, in degrees.
	LabelRotation float64
	Size          Size
}

// Histogram draws precomputed bins.
type Histogram struct {
	Title  string
	XLabel string
	YLabel string
	Legend string
	Bins   []model.HistogramBin
	Grid   bool
	Size   Size
}

// Point is one time series sample.
type Point struct {
	Time  time.Time
	Value float64
}

// TimeSeries is a line over time, optionally with a marker per point.
type TimeSeries struct {
	Title   string
	XLabel  string
	YLabel  string
	Points  []Point
	Markers bool
	Grid    bool
	Size    Size
}

// Renderer writes charts to image files, overwriting existing ones.
type Renderer interface {
	Name() string
	BarChart(path string, chart BarChart) error
	Histogram(path string, chart Histogram) error
	TimeSeries(path string, chart TimeSeries) error
}

// New returns the renderer for a backend name.
func New(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendGonum:
		return NewGonum(), nil
	case BackendGoChart:
		return NewGoChart(), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (want %s or %s)", name, BackendGonum, BackendGoChart)
	}
}
