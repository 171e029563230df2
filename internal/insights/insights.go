// Package insights computes the aggregates the dashboard charts are drawn
// from: channel counts, numeric summaries, histograms, correlations, title
// word frequencies and point sets.
package insights

import (
	"math"
	"net/url"
	"sort"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/trendboard/internal/dataset"
)

// CategoryCount is one value-count entry.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TopChannels counts rows per channel, most frequent first, ties by name.
// It returns nil when the channel role is absent.
func TopChannels(t *dataset.Table, n int) []CategoryCount {
	col, ok := dataset.ResolveRoles(t).Column(dataset.RoleChannel)
	if !ok {
		return nil
	}
	counts := map[string]int{}
	for _, v := range t.Column(col) {
		if v.IsMissing() {
			continue
		}
		counts[v.Text()]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, CategoryCount{Value: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary holds descriptive statistics of one numeric column.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Summarize describes a numeric column. ok is false when the column has no
// numeric values.
func Summarize(t *dataset.Table, column string) (Summary, bool) {
	vals := t.Floats(column)
	if len(vals) == 0 {
		return Summary{}, false
	}
	s := series.New(vals, series.Float, column)
	return Summary{
		Column: column,
		Count:  s.Len(),
		Mean:   finite(s.Mean()),
		Std:    finite(s.StdDev()),
		Min:    s.Min(),
		Q1:     finite(s.Quantile(0.25)),
		Median: finite(s.Median()),
		Q3:     finite(s.Quantile(0.75)),
		Max:    s.Max(),
	}, true
}

// Bin is one histogram bucket covering [Lo, Hi); the last bucket is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram splits values into equal-width bins over their range.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlations computes pairwise-complete Pearson coefficients across all
// numeric columns. Undefined coefficients are reported as 0. It returns nil
// when the table has no numeric columns.
func Correlations(t *dataset.Table) *CorrMatrix {
	cols := t.NumericColumns()
	if len(cols) == 0 {
		return nil
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var acc pairAcc
			for _, row := range t.Rows {
				x, okx := row[idx[a]].Float()
				y, oky := row[idx[b]].Float()
				if okx && oky {
					acc.add(x, y)
				}
			}
			r := acc.r()
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: cols, Values: mat}
}

type pairAcc struct {
	n, sumX, sumY, sumXX, sumYY, sumXY float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

func (p *pairAcc) r() float64 {
	if p.n < 2 {
		return 0
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 {
		return 0
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return finite(r)
}

// Point is one scatter or bubble mark.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size,omitempty"`
	Label string  `json:"label,omitempty"`
}

// Scatter pairs two numeric columns row by row, labelled by channel when
// available. Rows missing either value are skipped.
func Scatter(t *dataset.Table, x, y string) []Point {
	return points(t, x, y, "")
}

// Bubble is Scatter with a third column sizing each point.
func Bubble(t *dataset.Table, x, y, size string) []Point {
	return points(t, x, y, size)
}

func points(t *dataset.Table, x, y, size string) []Point {
	xi, yi := t.Index(x), t.Index(y)
	if xi < 0 || yi < 0 {
		return nil
	}
	si := -1
	if size != "" {
		if si = t.Index(size); si < 0 {
			return nil
		}
	}
	li := -1
	if col, ok := dataset.ResolveRoles(t).Column(dataset.RoleChannel); ok {
		li = t.Index(col)
	}
	var out []Point
	for _, row := range t.Rows {
		xv, okx := row[xi].Float()
		yv, oky := row[yi].Float()
		if !okx || !oky {
			continue
		}
		p := Point{X: xv, Y: yv}
		if si >= 0 {
			s, ok := row[si].Float()
			if !ok {
				continue
			}
			p.Size = s
		}
		if li >= 0 {
			p.Label = row[li].Text()
		}
		out = append(out, p)
	}
	return out
}

// Video is one entry of the video explorer.
type Video struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

const watchURL = "https://www.youtube.com/watch?v="

// VideoIDs lists unique video ids in order of first appearance. It returns
// nil when the video id role is absent.
func VideoIDs(t *dataset.Table) []Video {
	col, ok := dataset.ResolveRoles(t).Column(dataset.RoleVideoID)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []Video
	for _, v := range t.Column(col) {
		id := v.Text()
		if v.IsMissing() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Video{ID: id, URL: watchURL + url.QueryEscape(id)})
	}
	return out
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
