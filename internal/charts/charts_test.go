package charts

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

const trending = `video_id,trending_date,title,channel_title,publish_time,views,likes,dislikes,comment_count
a1,17.14.11,Cats and dogs,Alpha,2017-11-13T17:13:01.000Z,100,10,1,5
b2,17.14.11,Dogs at night,Beta,2017-11-13T07:30:00.000Z,2000,200,2,100
c3,17.15.11,Night sky live,Gamma,2017-11-12T19:05:24.000Z,40000,3000,40,900
d4,17.16.11,Cats again,Alpha,2017-11-12T11:00:00.000Z,500,25,5,12
`

func view(t *testing.T, in string, f dataset.Filter) *insights.View {
	t.Helper()
	tbl, err := dataset.Load(strings.NewReader(in), dataset.Options{Name: "t.csv"})
	require.NoError(t, err)
	return insights.Build(tbl, f, insights.DefaultOptions())
}

func TestRenderEveryChartDecodes(t *testing.T) {
	v := view(t, trending, dataset.Filter{})
	opt := Options{Width: 640, Height: 360}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, name, v, opt))
			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 640, img.Bounds().Dx())
			assert.Equal(t, 360, img.Bounds().Dy())
		})
	}
}

func TestRenderEmptyFilterDrawsPlaceholder(t *testing.T) {
	v := view(t, trending, dataset.Filter{Channels: []string{}})
	require.Equal(t, 0, v.Rows)
	for _, name := range Names() {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, name, v, DefaultOptions()), name)
		_, err := png.Decode(&buf)
		require.NoError(t, err, name)
	}
}

func TestRenderSinglePoint(t *testing.T) {
	v := view(t, trending, dataset.Filter{Channels: []string{"Beta"}})
	for _, name := range []string{LikesDislikes, ViewsLikesBubble, ViewsHistogram, TopChannels} {
		var buf bytes.Buffer
		assert.NoError(t, Render(&buf, name, v, DefaultOptions()), name)
	}
}

func TestRenderSkipsAbsentRoles(t *testing.T) {
	v := view(t, "title,score\nhello world,1\nworld again,2\n", dataset.Filter{})
	var buf bytes.Buffer
	err := Render(&buf, LikesDislikes, v, DefaultOptions())
	assert.True(t, errors.Is(err, ErrNotApplicable), "got %v", err)
	assert.False(t, Applies(TopChannels, v))
	assert.True(t, Applies(TitleWordCloud, v))
	assert.True(t, Applies(CorrelationHeatmap, v))

	err = Render(&buf, "pie", v, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestRenderAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	v := view(t, "title,score\nhello world,1\nworld again,2\n", dataset.Filter{})
	files, err := RenderAll(dir, v, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"correlation_heatmap.png", "title_wordcloud.png"}, files)
	for _, f := range files {
		info, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "0", compact(0))
	assert.Equal(t, "1.5k", compact(1500))
	assert.Equal(t, "2.0M", compact(2e6))
	assert.Equal(t, "0.15", compact(0.15))
}

func TestDivergent(t *testing.T) {
	assert.Equal(t, white, divergent(0))
	assert.Equal(t, posColor, divergent(1))
	assert.Equal(t, negColor, divergent(-1))
}
