package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/KaramelBytes/trendboard/internal/insights"
)

var (
	negColor = color.RGBA{R: 69, G: 117, B: 180, A: 255}
	posColor = color.RGBA{R: 215, G: 48, B: 39, A: 255}
)

// divergent maps r in [-1, 1] onto blue-white-red.
func divergent(r float64) color.RGBA {
	end := posColor
	if r < 0 {
		end, r = negColor, -r
	}
	if r > 1 {
		r = 1
	}
	mix := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*r) }
	return color.RGBA{R: mix(white.R, end.R), G: mix(white.G, end.G), B: mix(white.B, end.B), A: 255}
}

func renderHeatmap(w io.Writer, v *insights.View, opt Options) error {
	const title = "Correlation between numeric columns"
	m := v.Corr
	n := len(m.Columns)
	if n == 0 || v.Rows == 0 {
		return placeholder(w, title, opt)
	}
	img := canvas(opt)
	drawText(img, title, 16, 24, ink)

	labelChars := 14
	left := 16 + labelChars*7 + 8
	top := 56
	cell := (opt.Width - left - 16) / n
	if h := (opt.Height - top - 16) / n; h < cell {
		cell = h
	}
	if cell < 4 {
		cell = 4
	}
	colChars := cell / 7

	for i, name := range m.Columns {
		y0 := top + i*cell
		drawText(img, truncate(name, labelChars), 16, y0+cell/2+5, ink)
		if colChars > 0 {
			drawText(img, truncate(name, colChars), left+i*cell+2, top-6, ink)
		}
		for j := range m.Columns {
			r := m.Values[i][j]
			rect := image.Rect(left+j*cell, y0, left+(j+1)*cell-1, y0+cell-1)
			draw.Draw(img, rect, image.NewUniform(divergent(r)), image.Point{}, draw.Src)
			if cell >= 36 {
				label := fmt.Sprintf("%.2f", r)
				drawText(img, label, rect.Min.X+(cell-textWidth(label))/2, rect.Min.Y+cell/2+5, ink)
			}
		}
	}
	return png.Encode(w, img)
}
