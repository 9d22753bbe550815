// Package chart renders category frequency tables as annotated bar charts
// using gonum/plot.
//
// Rendering happens in two steps. Build decides what the chart shows (bar
// order, counts, fills, outlines, the total annotation); Render turns that
// description into a *plot.Plot. Keeping the decisions in a plain struct lets
// callers inspect a chart without rasterizing it.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ajitpratap0/carflow/pkg/analysis"
)

// OutlineWidth is the edge width of bars filled with opaque white
var OutlineWidth = vg.Points(1)

// Bar is one category bar
type Bar struct {
	Category string
	Count    int
	Fill     color.Color
	Outline  bool
}

// Spec describes a complete chart
type Spec struct {
	Title  string
	XLabel string
	YLabel string
	// Total is the dataset's row count, shown in the upper-right corner
	Total int
	Bars  []Bar
}

// Options control Build
type Options struct {
	Title  string
	Column string
	Total  int
	// ColorBars fills each bar with the color its category names
	ColorBars bool
}

// Build lays out a bar per bucket in frequency-table order.
func Build(ft analysis.FrequencyTable, opts Options) *Spec {
	spec := &Spec{
		Title:  opts.Title,
		XLabel: opts.Column,
		YLabel: "count",
		Total:  opts.Total,
		Bars:   make([]Bar, 0, len(ft)),
	}

	for _, b := range ft {
		fill := color.Color(DefaultFill)
		if opts.ColorBars {
			fill, _ = ResolveColor(b.Category)
		}
		spec.Bars = append(spec.Bars, Bar{
			Category: b.Category,
			Count:    b.Count,
			Fill:     fill,
			Outline:  IsOpaqueWhite(fill),
		})
	}
	return spec
}

// TotalLabel is the corner annotation text
func (s *Spec) TotalLabel() string {
	return fmt.Sprintf("Total Entries: %d", s.Total)
}

// Categories returns the bar labels in order
func (s *Spec) Categories() []string {
	out := make([]string, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Category
	}
	return out
}

func (s *Spec) maxCount() int {
	m := 0
	for _, b := range s.Bars {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

// Render draws spec onto a new plot. width is the figure width, used to size
// the bars.
func Render(spec *Spec, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	barWidth := barWidthFor(width, len(spec.Bars))
	xys := make(plotter.XYs, len(spec.Bars))
	counts := make([]string, len(spec.Bars))

	for i, b := range spec.Bars {
		// one BarChart per bar: fill and edge are per-chart properties
		bars, err := plotter.NewBarChart(plotter.Values{float64(b.Count)}, barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to create bar %q: %w", b.Category, err)
		}
		bars.XMin = float64(i)
		bars.Color = b.Fill
		if b.Outline {
			bars.LineStyle = draw.LineStyle{Color: OutlineColor, Width: OutlineWidth}
		} else {
			bars.LineStyle.Width = 0
		}
		p.Add(bars)

		xys[i] = plotter.XY{X: float64(i), Y: float64(b.Count)}
		counts[i] = strconv.Itoa(b.Count)
	}

	if len(spec.Bars) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: counts})
		if err != nil {
			return nil, fmt.Errorf("failed to create count labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
		}
		labels.Offset = vg.Point{Y: vg.Points(4)}
		p.Add(labels)
	}

	// NominalX indexes the first name
	if len(spec.Bars) > 0 {
		p.NominalX(spec.Categories()...)
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	// headroom for the count labels and the total
	p.Y.Min = 0
	p.Y.Max = math.Max(1, float64(spec.maxCount())*1.15)
	if len(spec.Bars) == 0 {
		p.X.Min, p.X.Max = -0.5, 0.5
	}

	total, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: p.X.Max, Y: p.Y.Max}},
		Labels: []string{spec.TotalLabel()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create total label: %w", err)
	}
	total.TextStyle[0].XAlign = draw.XRight
	total.TextStyle[0].YAlign = draw.YTop
	p.Add(total)

	return p, nil
}

// Save renders spec and writes it to path. The image format follows the
// file extension (png, svg, pdf, jpg).
func Save(spec *Spec, path string, width, height vg.Length) error {
	p, err := Render(spec, width)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

func barWidthFor(width vg.Length, n int) vg.Length {
	if n < 1 {
		n = 1
	}
	w := width * 0.8 / vg.Length(n) * 0.8
	if widest := vg.Points(60); w > widest {
		return widest
	}
	if narrowest := vg.Points(2); w < narrowest {
		return narrowest
	}
	return w
}
