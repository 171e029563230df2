package charts

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

func renderLikesDislikes(w io.Writer, v *insights.View, opt Options) error {
	const title = "Likes vs dislikes"
	if len(v.LikesDislikes) == 0 {
		return placeholder(w, title, opt)
	}
	xs, ys := split(v.LikesDislikes)
	series := chart.ContinuousSeries{
		Name:    title,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    3,
			DotColor:    barColor.WithAlpha(160),
		},
	}
	return renderXY(w, title, v.Roles[dataset.RoleLikes], v.Roles[dataset.RoleDislikes], series, opt)
}

// renderBubble sizes and colors each dot by comment count.
func renderBubble(w io.Writer, v *insights.View, opt Options) error {
	const title = "Views vs likes (bubble size: comments)"
	pts := v.ViewsLikes
	if len(pts) == 0 {
		return placeholder(w, title, opt)
	}
	xs, ys := split(pts)
	lo, hi := pts[0].Size, pts[0].Size
	for _, p := range pts[1:] {
		lo = math.Min(lo, p.Size)
		hi = math.Max(hi, p.Size)
	}
	size := func(i int) float64 {
		if hi == lo {
			return 5
		}
		return 2 + 14*math.Sqrt((pts[i].Size-lo)/(hi-lo))
	}
	series := chart.ContinuousSeries{
		Name:    title,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    1,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return size(index)
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				if hi == lo {
					return chart.Viridis(0.5, 0, 1).WithAlpha(180)
				}
				return chart.Viridis(pts[index].Size, lo, hi).WithAlpha(180)
			},
		},
	}
	return renderXY(w, title, v.Roles[dataset.RoleViews], v.Roles[dataset.RoleLikes], series, opt)
}

func renderXY(w io.Writer, title, xName, yName string, s chart.ContinuousSeries, opt Options) error {
	ch := chart.Chart{
		Title:      title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           xName,
			Range:          span(s.XValues),
			ValueFormatter: compactAny,
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          span(s.YValues),
			ValueFormatter: compactAny,
		},
		Series: []chart.Series{s},
	}
	return ch.Render(chart.PNG, w)
}

// span returns a padded range that is never empty.
func span(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func split(pts []insights.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
