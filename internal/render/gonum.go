package render

import (
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	gonumBarColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	gonumHistColor = color.RGBA{R: 31, G: 119, B: 180, A: 178}
)

// Gonum renders charts with gonum.org/v1/plot.
type Gonum struct{}

func NewGonum() *Gonum {
	return &Gonum{}
}

func (g *Gonum) Name() string {
	return BackendGonum
}

func (g *Gonum) BarChart(path string, c BarChart) error {
	p := newPlot(c.Title, c.XLabel, c.YLabel)

	if len(c.Bars) > 0 {
		values := make(plotter.Values, len(c.Bars))
		labels := make([]string, len(c.Bars))
		for i, bar := range c.Bars {
			values[i] = bar.Value
			labels[i] = bar.Label
		}

		bars, err := plotter.NewBarChart(values, gonumBarWidth(c.Size, len(c.Bars)))
		if err != nil {
			return err
		}
		bars.Color = gonumBarColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(labels...)
	}

	if c.LabelRotation != 0 {
		p.X.Tick.Label.Rotation = c.LabelRotation * math.Pi / 180
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0

	return g.save(path, p, c.Size)
}

func (g *Gonum) Histogram(path string, c Histogram) error {
	p := newPlot(c.Title, c.XLabel, c.YLabel)
	if c.Grid {
		p.Add(plotter.NewGrid())
	}

	if len(c.Bins) > 0 {
		bins := make([]plotter.HistogramBin, len(c.Bins))
		for i, bin := range c.Bins {
			bins[i] = plotter.HistogramBin{Min: bin.Min, Max: bin.Max, Weight: float64(bin.Count)}
		}
		hist := &plotter.Histogram{
			Bins:      bins,
			Width:     c.Bins[0].Max - c.Bins[0].Min,
			FillColor: gonumHistColor,
			LineStyle: plotter.DefaultLineStyle,
		}
		p.Add(hist)
		if c.Legend != "" {
			p.Legend.Add(c.Legend, hist)
			p.Legend.Top = true
		}
	}
	p.Y.Min = 0

	return g.save(path, p, c.Size)
}

func (g *Gonum) TimeSeries(path string, c TimeSeries) error {
	p := newPlot(c.Title, c.XLabel, c.YLabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}
	if c.Grid {
		p.Add(plotter.NewGrid())
	}

	if len(c.Points) > 0 {
		xys := make(plotter.XYs, len(c.Points))
		for i, pt := range c.Points {
			xys[i].X = float64(pt.Time.UnixNano()) / 1e9
			xys[i].Y = pt.Value
		}

		if c.Markers {
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return err
			}
			line.Color = gonumBarColor
			points.Color = gonumBarColor
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(2)
			p.Add(line, points)
		} else {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return err
			}
			line.Color = gonumBarColor
			p.Add(line)
		}
	}

	return g.save(path, p, c.Size)
}

func (g *Gonum) save(path string, p *plot.Plot, size Size) error {
	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(canvas))

	return writeImage(path, func(w io.Writer) error {
		_, err := vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
		return err
	})
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func gonumBarWidth(size Size, n int) vg.Length {
	usable := vg.Length(size.Width-1.5) * vg.Inch
	width := usable / vg.Length(n) * 0.8
	if limit := vg.Inch / 2; width > limit {
		width = limit
	}
	if width < vg.Points(1) {
		width = vg.Points(1)
	}
	return width
}
