package render

import (
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	goChartSeriesColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	goChartGridColor   = drawing.Color{R: 220, G: 220, B: 220, A: 255}
	goChartInvisible   = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

// GoChart renders charts with github.com/wcharczuk/go-chart. go-chart refuses
// to draw without data or with a zero-width range, so empty charts get an
// invisible placeholder and every axis gets an explicit, padded range.
type GoChart struct{}

func NewGoChart() *GoChart {
	return &GoChart{}
}

func (g *GoChart) Name() string {
	return BackendGoChart
}

func (g *GoChart) BarChart(path string, c BarChart) error {
	bars := make([]chart.Value, 0, len(c.Bars))
	for _, bar := range c.Bars {
		bars = append(bars, chart.Value{
			Label: bar.Label,
			Value: bar.Value,
			Style: chart.Style{FillColor: goChartSeriesColor, StrokeColor: goChartSeriesColor},
		})
	}

	bc := goChartBars{
		title:    c.Title,
		xLabel:   c.XLabel,
		yLabel:   c.YLabel,
		bars:     bars,
		rotation: c.LabelRotation,
		size:     c.Size,
		spacing:  8,
	}
	return g.render(path, bc.chart())
}

func (g *GoChart) Histogram(path string, c Histogram) error {
	step := len(c.Bins) / 10
	if step < 1 {
		step = 1
	}

	bars := make([]chart.Value, 0, len(c.Bins))
	for i, bin := range c.Bins {
		label := ""
		if i%step == 0 {
			label = fmt.Sprintf("%.2f", bin.Min)
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: float64(bin.Count),
			Style: chart.Style{FillColor: goChartSeriesColor, StrokeColor: goChartSeriesColor},
		})
	}

	bc := goChartBars{
		title:   c.Title,
		xLabel:  c.XLabel,
		yLabel:  c.YLabel,
		legend:  c.Legend,
		bars:    bars,
		size:    c.Size,
		spacing: 1,
	}
	return g.render(path, bc.chart())
}

func (g *GoChart) render(path string, bc chart.BarChart) error {
	return writeImage(path, func(w io.Writer) error {
		return bc.Render(chart.PNG, w)
	})
}

// goChartBars collects what a go-chart bar chart needs. go-chart's BarChart
// has no axis names or legend, so those are drawn as extra elements.
type goChartBars struct {
	title    string
	xLabel   string
	yLabel   string
	legend   string
	bars     []chart.Value
	rotation float64
	size     Size
	spacing  int
}

func (b goChartBars) chart() chart.BarChart {
	top := 0.0
	for _, bar := range b.bars {
		top = math.Max(top, bar.Value)
	}
	if top == 0 {
		top = 1
	} else {
		top *= 1.1
	}
	bars := b.bars
	if len(bars) == 0 {
		bars = []chart.Value{{Label: " ", Value: 0, Style: chart.Style{FillColor: goChartInvisible, StrokeColor: goChartInvisible}}}
	}

	width, height := b.size.pixels()
	bottom := 64
	if b.rotation != 0 {
		bottom = 184
	}
	barWidth := (width-184)/len(bars) - b.spacing
	if barWidth < 1 {
		barWidth = 1
	}

	bc := chart.BarChart{
		Title:      b.title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 48, Right: 24, Bottom: bottom}},
		XAxis:      chart.Style{TextRotationDegrees: b.rotation},
		YAxis:      chart.YAxis{Name: b.yLabel, Range: &chart.ContinuousRange{Min: 0, Max: top}},
		BarWidth:   barWidth,
		BarSpacing: b.spacing,
		Bars:       bars,
	}
	if b.xLabel != "" || b.yLabel != "" || b.legend != "" {
		bc.Elements = []chart.Renderable{goChartAnnotations(b.xLabel, b.yLabel, b.legend, width, height)}
	}
	return bc
}

// goChartAnnotations draws the x label along the bottom edge, the y label
// rotated along the left edge and the legend in the top right corner.
func goChartAnnotations(xLabel, yLabel, legend string, width, height int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		style := chart.Style{
			Font:      defaults.Font,
			FontSize:  11,
			FontColor: drawing.ColorBlack,
		}
		if style.Font == nil {
			font, err := chart.GetDefaultFont()
			if err != nil {
				return
			}
			style.Font = font
		}

		if xLabel != "" {
			style.WriteToRenderer(r)
			tb := r.MeasureText(xLabel)
			chart.Draw.Text(r, xLabel, (width-tb.Width())/2, height-12, style)
		}
		if yLabel != "" {
			rotated := style
			rotated.TextRotationDegrees = 270
			rotated.WriteToRenderer(r)
			tb := r.MeasureText(yLabel)
			chart.Draw.Text(r, yLabel, 18, (height+tb.Width())/2, rotated)
			r.ClearTextRotation()
		}
		if legend != "" {
			style.WriteToRenderer(r)
			tb := r.MeasureText(legend)
			x := width - 24 - tb.Width()
			chart.Draw.Box(r, chart.Box{Top: 52, Left: x - 22, Right: x - 8, Bottom: 62}, chart.Style{FillColor: goChartSeriesColor, StrokeColor: goChartSeriesColor, StrokeWidth: 1})
			chart.Draw.Text(r, legend, x, 62, style)
		}
	}
}

func (g *GoChart) TimeSeries(path string, c TimeSeries) error {
	xs := make([]time.Time, 0, len(c.Points))
	ys := make([]float64, 0, len(c.Points))
	for _, pt := range c.Points {
		xs = append(xs, pt.Time)
		ys = append(ys, pt.Value)
	}

	style := chart.Style{StrokeColor: goChartSeriesColor, StrokeWidth: 1.5}
	if c.Markers {
		style.DotColor = goChartSeriesColor
		style.DotWidth = 3
	}
	if len(xs) == 0 {
		epoch := time.Unix(0, 0).UTC()
		xs = []time.Time{epoch, epoch.Add(time.Second)}
		ys = []float64{0, 0}
		style = chart.Style{StrokeColor: goChartInvisible}
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		v := float64(x.UnixNano())
		minX = math.Min(minX, v)
		maxX = math.Max(maxX, v)
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	width, height := c.Size.pixels()
	ch := chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 24, Right: 24, Bottom: 24}},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05"),
			Range:          paddedRange(minX, maxX, float64(time.Second)),
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: paddedRange(minY, maxY, 1),
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: c.Title, XValues: xs, YValues: ys, Style: style},
		},
	}
	if c.Grid {
		grid := chart.Style{StrokeColor: goChartGridColor, StrokeWidth: 1}
		ch.XAxis.GridMajorStyle = grid
		ch.YAxis.GridMajorStyle = grid
	}

	return writeImage(path, func(w io.Writer) error {
		return ch.Render(chart.PNG, w)
	})
}

// paddedRange widens [lo, hi] by 5%, or by pad on each side when lo == hi.
func paddedRange(lo, hi, pad float64) *chart.ContinuousRange {
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	margin := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - margin, Max: hi + margin}
}
