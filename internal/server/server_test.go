package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/trendboard/internal/assets"
	"github.com/KaramelBytes/trendboard/internal/charts"
	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

const trendingCSV = `Video ID,Trending Date,Title,Channel Title,Publish Time,Views,Likes,Dislikes,Comment Count
v1,17.14.11,Late night show,Alpha,2017-11-13T17:13:01.000Z,1000,50,2,10
v2,17.15.11,Cooking with fire,Beta,2017-11-13T07:30:00.000Z,2000,100,5,20
v3,17.16.11,Alpha returns,Alpha,2017-11-12T19:05:24.000Z,300,10,1,5
v4,17.17.11,Mystery video,Gamma,2017-11-12T11:00:00.000Z,500,5,0,1
v5,17.18.11,Quiet,Delta,2017-11-11T10:00:00.000Z,300,3,1,2
v6,17.18.11,Sixth channel,Epsilon,2017-11-11T09:00:00.000Z,700,7,1,3
v7,17.18.11,Seventh,Zeta,2017-11-11T08:00:00.000Z,900,9,1,4
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Insights: insights.DefaultOptions(),
		Charts:   charts.Options{Width: 400, Height: 300},
	}, nil, zerolog.Nop())
}

func upload(t *testing.T, s *Server, name, body string, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(body))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexWithoutDataset(t *testing.T) {
	s := newTestServer(t)
	rec := get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="file"`)
	assert.Contains(t, rec.Body.String(), "Upload a YouTube trending CSV to begin")

	rec = get(s, "/api/dataset")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(s, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","dataset_loaded":false}`, rec.Body.String())
}

func TestUploadAndDefaultFilter(t *testing.T) {
	s := newTestServer(t)
	rec := upload(t, s, "trending.csv", trendingCSV, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(s, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Name   string     `json:"name"`
		Rows   int        `json:"rows"`
		Total  int        `json:"total_rows"`
		Filter filterJSON `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "trending.csv", body.Name)
	assert.Equal(t, 7, body.Total)
	assert.True(t, body.Filter.Default)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}, body.Filter.Channels)
	assert.Equal(t, 6, body.Rows)
}

func TestUploadRejectsMalformed(t *testing.T) {
	s := newTestServer(t)
	rec := upload(t, s, "bad.csv", "title,views\na,lots\n", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a number")
	assert.Nil(t, s.Dataset())
}

func TestUploadFromBrowserRedirects(t *testing.T) {
	s := newTestServer(t)
	rec := upload(t, s, "trending.csv", trendingCSV, "text/html,application/xhtml+xml")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "/charts/top_channels.png?")
	assert.Contains(t, page, "Interactive Video Explorer")
	assert.Contains(t, page, "https://www.youtube.com/embed/v1")
}

func TestExplicitFilters(t *testing.T) {
	s := newTestServer(t)
	s.SetDataset(mustLoad(t))

	rec := get(s, "/api/dataset?channel=Alpha&min_views=500")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rows   int        `json:"rows"`
		Filter filterJSON `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Rows)
	assert.False(t, body.Filter.Default)

	rec = get(s, "/api/dataset?channels=none")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Rows)

	rec = get(s, "/api/dataset?trending_from=2017-11-15&trending_to=2017-11-17")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Rows)

	rec = get(s, "/api/dataset?min_views=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.SetDataset(mustLoad(t))

	rec := get(s, "/charts/views_histogram.png?channel=Alpha")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())

	assert.Equal(t, http.StatusNotFound, get(s, "/charts/pie.png").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/charts/top_channels.svg").Code)
}

func TestDownloadRoundTrips(t *testing.T) {
	s := newTestServer(t)
	src := mustLoad(t)
	s.SetDataset(src)

	rec := get(s, "/download?channel=Beta&channel=Gamma")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filtered.csv")

	back, err := dataset.Load(strings.NewReader(rec.Body.String()), dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())
	assert.True(t, back.Has(dataset.EngagementColumn))
}

func TestInsightsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.SetDataset(mustLoad(t))
	rec := get(s, "/api/insights?channel=Alpha&channel=Beta")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, k := range []string{"top_channels", "summaries", "correlations", "words"} {
		assert.Contains(t, body, k)
	}
}

func TestParseFilterRoundTrip(t *testing.T) {
	q, _ := url.ParseQuery("channel=A&channel=B&trending_from=2017-11-01&max_views=10")
	f, explicit, err := ParseFilter(q)
	require.NoError(t, err)
	require.True(t, explicit)
	assert.Equal(t, []string{"A", "B"}, f.Channels)
	assert.True(t, f.Dates["trending_date"].Max.IsZero())
	require.NotNil(t, f.Views)
	assert.Equal(t, 10.0, f.Views.Max)

	again, explicit, err := ParseFilter(EncodeFilter(f))
	require.NoError(t, err)
	require.True(t, explicit)
	assert.Equal(t, f.Channels, again.Channels)
	assert.Equal(t, f.Dates, again.Dates)
	assert.Equal(t, *f.Views, *again.Views)

	_, explicit, err = ParseFilter(url.Values{"video": {"v1"}})
	require.NoError(t, err)
	assert.False(t, explicit)

	_, _, err = ParseFilter(url.Values{"trending_from": {"2017-11-05"}, "trending_to": {"2017-11-01"}})
	assert.Error(t, err)
}

func TestIndexShowsAnimation(t *testing.T) {
	anim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"w":100,"h":100,"fr":25,"layers":[]}`))
	}))
	defer anim.Close()

	fetcher := assets.NewFetcher(assets.NewMemoryCache(), assets.Options{MaxAttempts: 1}, zerolog.Nop())
	s := New(Config{LottieURL: anim.URL, Insights: insights.DefaultOptions()}, fetcher, zerolog.Nop())
	page := get(s, "/").Body.String()
	assert.Contains(t, page, `id="lottie"`)
	assert.Contains(t, page, "lottie.loadAnimation")

	anim.Close()
	s = New(Config{LottieURL: anim.URL, Insights: insights.DefaultOptions()},
		assets.NewFetcher(nil, assets.Options{MaxAttempts: 1, Timeout: time.Second}, zerolog.Nop()), zerolog.Nop())
	rec := get(s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "lottie.loadAnimation")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Insights: insights.DefaultOptions()}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func mustLoad(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Load(strings.NewReader(trendingCSV), dataset.Options{Name: "trending.csv"})
	require.NoError(t, err)
	return tbl
}

var hiddenInput = regexp.MustCompile(`<input type="hidden" name="([^"]+)" value="([^"]*)">`)

func TestVideoPickerKeepsFilter(t *testing.T) {
	s := newTestServer(t)
	s.SetDataset(mustLoad(t))

	page := get(s, "/?channels=none&channel=Zeta").Body.String()
	require.Contains(t, page, `<option value="v7" selected>`)

	explorer := page[strings.Index(page, `id="tab-explorer"`):]
	q := url.Values{}
	for _, m := range hiddenInput.FindAllStringSubmatch(explorer, -1) {
		q.Add(m[1], m[2])
	}
	assert.Equal(t, []string{"Zeta"}, q["channel"])
	q.Set("video", "v7")

	page = get(s, "/?"+q.Encode()).Body.String()
	assert.Contains(t, page, "https://www.youtube.com/embed/v7")
	assert.Contains(t, page, `value="Zeta" checked`)
}

func TestChannelValuesMatchAsStored(t *testing.T) {
	f, _, err := ParseFilter(url.Values{"channel": {" Alpha", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{" Alpha"}, f.Channels)

	s := newTestServer(t)
	tbl, err := dataset.Load(strings.NewReader("title,channel_title,views\na, Alpha,1\nb,Alpha,2\n"), dataset.Options{})
	require.NoError(t, err)
	s.SetDataset(tbl)

	rec := get(s, "/api/dataset?channel=%20Alpha")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rows int `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Rows)
}

func TestDayOnlyUpperBoundCoversWholeDay(t *testing.T) {
	const publishCSV = `video_id,channel_title,publish_time,views
p1,Alpha,2017-11-12T09:00:00.000Z,10
p2,Alpha,2017-11-13T08:00:00.000Z,20
p3,Alpha,2017-11-13T17:13:01.000Z,30
`
	tbl, err := dataset.Load(strings.NewReader(publishCSV), dataset.Options{})
	require.NoError(t, err)
	s := newTestServer(t)
	s.SetDataset(tbl)

	page := get(s, "/").Body.String()
	require.Contains(t, page, `name="publish_to" value="2017-11-13"`)

	rec := get(s, "/api/dataset?channels=none&channel=Alpha&publish_from=2017-11-12&publish_to=2017-11-13")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rows   int        `json:"rows"`
		Filter filterJSON `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Rows)
	assert.Equal(t, "2017-11-13", body.Filter.Dates["publish_time"].To)

	f, _, err := ParseFilter(url.Values{"publish_to": {"2017-11-13"}})
	require.NoError(t, err)
	want := time.Date(2017, 11, 13, 23, 59, 59, 999999999, time.UTC)
	assert.True(t, f.Dates["publish_time"].Max.Equal(want))
	assert.Equal(t, "2017-11-13", EncodeFilter(f).Get("publish_to"))

	exact, _, err := ParseFilter(url.Values{"publish_to": {"2017-11-13T17:13:01"}})
	require.NoError(t, err)
	assert.True(t, exact.Dates["publish_time"].Max.Equal(time.Date(2017, 11, 13, 17, 13, 1, 0, time.UTC)))
}
