package charts

import (
	"image"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/KaramelBytes/trendboard/internal/insights"
)

const (
	glyphHeight = 13
	maxScale    = 4
)

// renderWordCloud lays the most frequent title words out in rows, scaled
// and colored by count. Words that no longer fit are dropped.
func renderWordCloud(w io.Writer, v *insights.View, opt Options) error {
	const title = "Title word cloud"
	words := v.Words
	if len(words) == 0 {
		return placeholder(w, title, opt)
	}
	img := canvas(opt)
	drawText(img, title, 16, 24, ink)

	hi, lo := words[0].Count, words[len(words)-1].Count
	x, y, rowH := 16, 40, 0
	for _, wc := range words {
		scale := 1
		if hi > lo {
			scale = 1 + (maxScale-1)*(wc.Count-lo)/(hi-lo)
		}
		tw := textWidth(wc.Word)
		dw, dh := tw*scale, glyphHeight*scale
		if x+dw > opt.Width-16 {
			x, y, rowH = 16, y+rowH+6, 0
		}
		if y+dh > opt.Height-8 || dw > opt.Width-32 {
			continue
		}
		glyph := image.NewRGBA(image.Rect(0, 0, tw, glyphHeight))
		drawText(glyph, wc.Word, 0, 11, chart.Viridis(float64(wc.Count), float64(lo), float64(hi+1)))
		xdraw.NearestNeighbor.Scale(img, image.Rect(x, y, x+dw, y+dh), glyph, glyph.Bounds(), xdraw.Over, nil)
		x += dw + 10
		if dh > rowH {
			rowH = dh
		}
	}
	return png.Encode(w, img)
}
