package server

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/KaramelBytes/trendboard/internal/assets"
	"github.com/KaramelBytes/trendboard/internal/charts"
	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	funcs := template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.2f%%", f*100) },
		"num": func(f float64) string { return strconv.FormatFloat(math.Round(f), 'f', 0, 64) },
	}
	return &pageRenderer{tmpl: template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))}
}

type channelOption struct {
	Name     string
	Selected bool
}

type queryParam struct {
	Name  string
	Value string
}

type chartLink struct {
	Name  string
	Title string
	Src   template.URL
}

type pageData struct {
	Title   string
	HasData bool
	Lottie  *assets.Animation

	Name     string
	Rows     int
	Total    int
	Warnings []string

	Channels     []channelOption
	HasChannel   bool
	HasTrending  bool
	HasPublish   bool
	HasViews     bool
	TrendingFrom string
	TrendingTo   string
	PublishFrom  string
	PublishTo    string
	MinViews     string
	MaxViews     string

	TotalViews    float64
	HasEngagement bool
	AvgEngagement float64

	Dashboard   []chartLink
	Pro         []chartLink
	DownloadURL template.URL

	TopChannels []insights.CategoryCount
	Words       []insights.WordCount
	Summaries   []insights.Summary

	Videos        []insights.Video
	FilterParams  []queryParam
	SelectedVideo string
	EmbedURL      template.URL
	WatchURL      string
}

var chartTitles = map[string]string{
	charts.TopChannels:         "Top 10 trending channels",
	charts.ViewsHistogram:      "Views distribution",
	charts.EngagementHistogram: "Engagement rate distribution",
	charts.LikesDislikes:       "Likes vs dislikes",
	charts.ViewsLikesBubble:    "Views vs likes",
	charts.CorrelationHeatmap:  "Correlation heatmap",
	charts.TitleWordCloud:      "Title word cloud",
}

var proCharts = map[string]bool{
	charts.ViewsLikesBubble:   true,
	charts.CorrelationHeatmap: true,
	charts.TitleWordCloud:     true,
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "YouTube Trending Analytics"}
	if s.assets != nil {
		data.Lottie = s.assets.Load(r.Context(), s.cfg.LottieURL)
	}
	if src := s.Dataset(); src != nil {
		v, code, err := s.viewOf(src, r)
		if err != nil {
			s.respondError(w, code, err)
			return
		}
		fillPage(&data, src, v, r.URL.Query().Get("video"))
	}

	var buf bytes.Buffer
	if err := s.page.tmpl.Execute(&buf, data); err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Errorf("render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func fillPage(d *pageData, src *dataset.Table, v *insights.View, video string) {
	d.HasData = true
	d.Name, d.Rows, d.Total, d.Warnings = v.Name, v.Rows, v.Total, v.Warnings

	d.HasChannel = v.Roles.Has(dataset.RoleChannel)
	if d.HasChannel {
		selected := map[string]bool{}
		for _, c := range v.Filter.Channels {
			selected[c] = true
		}
		seen := map[string]bool{}
		for _, c := range src.Column(v.Roles[dataset.RoleChannel]) {
			name := c.Text()
			if c.IsMissing() || seen[name] {
				continue
			}
			seen[name] = true
			d.Channels = append(d.Channels, channelOption{Name: name, Selected: v.Filter.Channels == nil || selected[name]})
		}
	}
	d.HasTrending = src.Has("trending_date")
	d.HasPublish = src.Has("publish_time")
	if r, ok := v.Filter.Dates["trending_date"]; ok {
		d.TrendingFrom, d.TrendingTo = dayValue(r.Min), dayValue(r.Max)
	}
	if r, ok := v.Filter.Dates["publish_time"]; ok {
		d.PublishFrom, d.PublishTo = dayValue(r.Min), dayValue(r.Max)
	}
	d.HasViews = v.Roles.Has(dataset.RoleViews)
	if f := v.Filter.Views; f != nil {
		if !math.IsInf(f.Min, 0) {
			d.MinViews = strconv.FormatFloat(f.Min, 'f', -1, 64)
		}
		if !math.IsInf(f.Max, 0) {
			d.MaxViews = strconv.FormatFloat(f.Max, 'f', -1, 64)
		}
	}

	if col, ok := v.Roles.Column(dataset.RoleViews); ok {
		for _, x := range v.Table.Floats(col) {
			d.TotalViews += x
		}
	}
	if sum, ok := v.Summary(dataset.EngagementColumn); ok {
		d.HasEngagement, d.AvgEngagement = true, sum.Mean
	}

	params := EncodeFilter(v.Filter)
	query := params.Encode()
	for _, name := range charts.Names() {
		if !charts.Applies(name, v) {
			continue
		}
		link := chartLink{Name: name, Title: chartTitles[name], Src: template.URL("/charts/" + name + ".png?" + query)}
		if proCharts[name] {
			d.Pro = append(d.Pro, link)
		} else {
			d.Dashboard = append(d.Dashboard, link)
		}
	}
	d.DownloadURL = template.URL("/download?" + query)

	d.TopChannels = v.TopChannels
	d.Summaries = v.Summaries
	d.Words = v.Words
	if len(d.Words) > 20 {
		d.Words = d.Words[:20]
	}

	d.Videos = v.Videos
	// the video picker resubmits the active filter alongside the video
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, val := range params[k] {
			d.FilterParams = append(d.FilterParams, queryParam{Name: k, Value: val})
		}
	}
	for _, vid := range v.Videos {
		if video == "" || vid.ID == video {
			d.SelectedVideo = vid.ID
			d.WatchURL = vid.URL
			d.EmbedURL = template.URL("https://www.youtube.com/embed/" + url.PathEscape(vid.ID))
			break
		}
	}
}

func dayValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}
