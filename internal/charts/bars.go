package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/trendboard/internal/insights"
)

var barColor = drawing.ColorFromHex("4c78a8")

func renderTopChannels(w io.Writer, v *insights.View, opt Options) error {
	const title = "Top channels by trending appearances"
	if len(v.TopChannels) == 0 {
		return placeholder(w, title, opt)
	}
	bars := make([]chart.Value, len(v.TopChannels))
	for i, c := range v.TopChannels {
		bars[i] = chart.Value{Label: truncate(c.Value, 12), Value: float64(c.Count)}
	}
	return renderBars(w, title, bars, opt)
}

func renderHistogram(w io.Writer, title string, bins []insights.Bin, opt Options) error {
	if len(bins) == 0 {
		return placeholder(w, title, opt)
	}
	step := len(bins) / 6
	if step < 1 {
		step = 1
	}
	bars := make([]chart.Value, len(bins))
	for i, b := range bins {
		bars[i] = chart.Value{Value: float64(b.Count)}
		if i%step == 0 {
			bars[i].Label = compact(b.Lo)
		}
	}
	return renderBars(w, title, bars, opt)
}

func renderBars(w io.Writer, title string, bars []chart.Value, opt Options) error {
	top := 0.0
	for i := range bars {
		top = math.Max(top, bars[i].Value)
		bars[i].Style = chart.Style{FillColor: barColor, StrokeColor: barColor}
	}
	if top <= 0 {
		top = 1
	}
	spacing := 4
	width := (opt.Width-100)/len(bars) - spacing
	if width < 2 {
		width, spacing = 2, 1
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   width,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: func(v interface{}) string { return compactAny(v) },
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func compactAny(v interface{}) string {
	if f, ok := v.(float64); ok {
		return compact(f)
	}
	return fmt.Sprint(v)
}

// compact formats large magnitudes with k/M/B suffixes.
func compact(f float64) string {
	a := math.Abs(f)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fk", f/1e3)
	case a >= 10 || a == 0:
		return fmt.Sprintf("%.0f", f)
	default:
		return fmt.Sprintf("%.2g", f)
	}
}
