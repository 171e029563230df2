package insights

import (
	"fmt"

	"github.com/KaramelBytes/trendboard/internal/dataset"
)

// Options controls aggregate sizes.
type Options struct {
	TopChannels int
	Bins        int
	Words       int
	SampleRows  int
}

// DefaultOptions mirrors the dashboard: top 10 channels, 30 histogram bins.
func DefaultOptions() Options {
	return Options{TopChannels: 10, Bins: 30, Words: 100, SampleRows: 5}
}

// View is everything the dashboard renders for one filtered table.
type View struct {
	Table   *dataset.Table             `json:"-"`
	Name    string                     `json:"name"`
	Rows    int                        `json:"rows"`
	Total   int                        `json:"total_rows"`
	Roles   dataset.Roles              `json:"roles"`
	Filter  dataset.Filter             `json:"-"`
	Preview []map[string]dataset.Value `json:"preview"`

	TopChannels    []CategoryCount `json:"top_channels,omitempty"`
	Summaries      []Summary       `json:"summaries,omitempty"`
	ViewsHist      []Bin           `json:"views_histogram,omitempty"`
	EngagementHist []Bin           `json:"engagement_histogram,omitempty"`
	Corr           *CorrMatrix     `json:"correlations,omitempty"`
	Words          []WordCount     `json:"words,omitempty"`
	LikesDislikes  []Point         `json:"likes_vs_dislikes,omitempty"`
	ViewsLikes     []Point         `json:"views_vs_likes,omitempty"`
	Videos         []Video         `json:"videos,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// Build filters src, derives engagement and computes every aggregate whose
// roles are present. src is not modified.
func Build(src *dataset.Table, f dataset.Filter, opt Options) *View {
	t := dataset.Process(src, f)
	roles := dataset.ResolveRoles(t)
	v := &View{
		Table:  t,
		Name:   t.Name,
		Rows:   t.Len(),
		Total:  src.Len(),
		Roles:  roles,
		Filter: f,
	}
	for i := 0; i < t.Len() && i < opt.SampleRows; i++ {
		v.Preview = append(v.Preview, t.Record(i))
	}
	v.TopChannels = TopChannels(t, opt.TopChannels)
	for _, col := range t.NumericColumns() {
		if s, ok := Summarize(t, col); ok {
			v.Summaries = append(v.Summaries, s)
		}
	}
	if col, ok := roles.Column(dataset.RoleViews); ok {
		v.ViewsHist = Histogram(t.Floats(col), opt.Bins)
	}
	if t.Has(dataset.EngagementColumn) {
		v.EngagementHist = Histogram(t.Floats(dataset.EngagementColumn), opt.Bins)
	}
	v.Corr = Correlations(t)
	if _, ok := roles.Column(dataset.RoleTitle); ok {
		v.Words = WordFrequencies(TitleCorpus(t), opt.Words)
	}
	if roles.Has(dataset.RoleLikes, dataset.RoleDislikes) {
		v.LikesDislikes = Scatter(t, roles[dataset.RoleLikes], roles[dataset.RoleDislikes])
	}
	if roles.Has(dataset.RoleViews, dataset.RoleLikes, dataset.RoleComments) {
		v.ViewsLikes = Bubble(t, roles[dataset.RoleViews], roles[dataset.RoleLikes], roles[dataset.RoleComments])
	}
	v.Videos = VideoIDs(t)
	for _, col := range dataset.DateColumns {
		if n := src.Unparsed[col]; n > 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("%d %s value(s) could not be parsed and were treated as missing", n, col))
		}
	}
	return v
}

// Summary returns the summary for column, if computed.
func (v *View) Summary(column string) (Summary, bool) {
	for _, s := range v.Summaries {
		if s.Column == column {
			return s, true
		}
	}
	return Summary{}, false
}
