/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package charts renders dashboard charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/google/taxinomia-loans/core/format"
)

// Palette used for slices and series.
var (
	ColorGood = drawing.ColorFromHex("FFA500")
	ColorBad  = drawing.ColorFromHex("1f77b4")

	palette = []drawing.Color{
		drawing.ColorFromHex("636EFA"),
		drawing.ColorFromHex("EF553B"),
		drawing.ColorFromHex("00CC96"),
		drawing.ColorFromHex("AB63FA"),
		drawing.ColorFromHex("FFA15A"),
		drawing.ColorFromHex("19D3F3"),
	}
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Options sizes a chart. Zero values use DefaultOptions.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the default chart size.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 400}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// Point is one labelled value.
type Point struct {
	Label string
	Value float64
	// Color overrides the palette for donut slices.
	Color drawing.Color
}

// Donut renders a donut chart. Slice labels carry their share of the total.
func Donut(title string, slices []Point, opt Options) ([]byte, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("donut chart %q: %w", title, ErrNoData)
	}
	total := 0.0
	for _, s := range slices {
		if s.Value < 0 || math.IsNaN(s.Value) {
			return nil, fmt.Errorf("donut chart %q: invalid slice value %v for %q", title, s.Value, s.Label)
		}
		total += s.Value
	}
	if total == 0 {
		return nil, fmt.Errorf("donut chart %q: all slices are zero: %w", title, ErrNoData)
	}

	opt = opt.withDefaults()
	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		color := s.Color
		if color.IsZero() {
			color = palette[i%len(palette)]
		}
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %s", s.Label, format.Percent(s.Value/total)),
			Value: s.Value,
			Style: chart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
		}
	}

	donut := chart.DonutChart{
		Title:  title,
		Width:  opt.Width,
		Height: opt.Height,
		Values: values,
	}
	return render(title, donut)
}

// Area renders a filled line over equally spaced labelled points, in order.
func Area(title string, points []Point, opt Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("area chart %q: %w", title, ErrNoData)
	}
	opt = opt.withDefaults()

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Value
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}
	// a single point has no x range; repeat it one step to the right.
	// The x range follows the ticks, so the step needs a blank tick too.
	if len(points) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 1})
	}

	series := chart.ContinuousSeries{
		Name: title,
		Style: chart.Style{
			StrokeColor: palette[0],
			StrokeWidth: 2,
			FillColor:   palette[0].WithAlpha(96),
			DotColor:    palette[0],
			DotWidth:    3,
		},
		XValues: xs,
		YValues: ys,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  opt.Width,
		Height: opt.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			Range:          valueRange(ys),
			ValueFormatter: axisFormatter,
		},
		Series: []chart.Series{series},
	}
	return render(title, graph)
}

// Bars renders one vertical bar per point, in order.
func Bars(title string, points []Point, opt Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("bar chart %q: %w", title, ErrNoData)
	}
	opt = opt.withDefaults()

	bars := make([]chart.Value, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		bars[i] = chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: palette[0], StrokeColor: palette[0]},
		}
		ys[i] = p.Value
	}

	barWidth := (opt.Width - 120) * 2 / (3 * len(points))
	if barWidth < 4 {
		barWidth = 4
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  opt.Width,
		Height: opt.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Range:          valueRange(ys),
			ValueFormatter: axisFormatter,
		},
		Bars: bars,
	}
	return render(title, graph)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func render(title string, c renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart %q render failed: %w", title, err)
	}
	return buf.Bytes(), nil
}

// valueRange spans zero and every value with some headroom, and is never empty.
func valueRange(ys []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

func axisFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return format.Compact(f)
	}
	return ""
}
