// Package charts renders the dashboard's PNG charts from an insights.View.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
	"github.com/KaramelBytes/trendboard/internal/utils"
)

// Chart names, also used as file stems.
const (
	TopChannels         = "top_channels"
	ViewsHistogram      = "views_histogram"
	EngagementHistogram = "engagement_histogram"
	LikesDislikes       = "likes_dislikes"
	ViewsLikesBubble    = "views_likes_bubble"
	CorrelationHeatmap  = "correlation_heatmap"
	TitleWordCloud      = "title_wordcloud"
)

var (
	// ErrNotApplicable is returned when the columns a chart needs are absent.
	ErrNotApplicable = errors.New("chart not applicable to this dataset")
	// ErrUnknownChart is returned for a name not in Names.
	ErrUnknownChart = errors.New("unknown chart")
)

// Options sets the output size in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions is 800x450.
func DefaultOptions() Options { return Options{Width: 800, Height: 450} }

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 450
	}
	return o
}

type renderer struct {
	applies func(v *insights.View) bool
	render  func(w io.Writer, v *insights.View, opt Options) error
}

var registry = map[string]renderer{
	TopChannels: {
		applies: func(v *insights.View) bool { return v.Roles.Has(dataset.RoleChannel) },
		render:  renderTopChannels,
	},
	ViewsHistogram: {
		applies: func(v *insights.View) bool { return v.Roles.Has(dataset.RoleViews) },
		render: func(w io.Writer, v *insights.View, opt Options) error {
			return renderHistogram(w, "Views distribution", v.ViewsHist, opt)
		},
	},
	EngagementHistogram: {
		applies: func(v *insights.View) bool { return v.Table != nil && v.Table.Has(dataset.EngagementColumn) },
		render: func(w io.Writer, v *insights.View, opt Options) error {
			return renderHistogram(w, "Engagement rate distribution", v.EngagementHist, opt)
		},
	},
	LikesDislikes: {
		applies: func(v *insights.View) bool { return v.Roles.Has(dataset.RoleLikes, dataset.RoleDislikes) },
		render:  renderLikesDislikes,
	},
	ViewsLikesBubble: {
		applies: func(v *insights.View) bool {
			return v.Roles.Has(dataset.RoleViews, dataset.RoleLikes, dataset.RoleComments)
		},
		render: renderBubble,
	},
	CorrelationHeatmap: {
		applies: func(v *insights.View) bool { return v.Corr != nil },
		render:  renderHeatmap,
	},
	TitleWordCloud: {
		applies: func(v *insights.View) bool { return v.Roles.Has(dataset.RoleTitle) },
		render:  renderWordCloud,
	},
}

// Names lists every chart in dashboard order.
func Names() []string {
	return []string{TopChannels, ViewsHistogram, EngagementHistogram, LikesDislikes, ViewsLikesBubble, CorrelationHeatmap, TitleWordCloud}
}

// Applies reports whether the named chart can be drawn for v.
func Applies(name string, v *insights.View) bool {
	r, ok := registry[name]
	return ok && r.applies(v)
}

// Render writes the named chart as PNG. A chart whose data is empty after
// filtering is drawn as a "no data" placeholder.
func Render(w io.Writer, name string, v *insights.View, opt Options) error {
	r, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if !r.applies(v) {
		return fmt.Errorf("%s: %w", name, ErrNotApplicable)
	}
	return r.render(w, v, opt.normalized())
}

// RenderAll writes <name>.png into dir for every applicable chart and
// returns the file names written.
func RenderAll(dir string, v *insights.View, opt Options) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	for _, name := range Names() {
		if !Applies(name, v) {
			continue
		}
		var buf bytes.Buffer
		if err := Render(&buf, name, v, opt); err != nil {
			return written, fmt.Errorf("render %s: %w", name, err)
		}
		file := name + ".png"
		if err := utils.SafeWriteFile(filepath.Join(dir, file), buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, file)
	}
	return written, nil
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ink   = color.RGBA{R: 51, G: 51, B: 51, A: 255}
)

func canvas(opt Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

// drawText draws s with its baseline at (x, y).
func drawText(dst draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func placeholder(w io.Writer, title string, opt Options) error {
	img := canvas(opt)
	drawText(img, title, 16, 24, ink)
	msg := "no data for the current filter"
	drawText(img, msg, (opt.Width-textWidth(msg))/2, opt.Height/2, ink)
	return png.Encode(w, img)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 2 {
		return string(r[:n])
	}
	return string(r[:n-2]) + ".."
}
