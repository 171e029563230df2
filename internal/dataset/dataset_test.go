package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trendingCSV = `Video ID,Trending Date,Title,Channel Title,Publish Time,Views,Likes,Dislikes,Comment Count
v1,17.14.11,Late night show,Alpha,2017-11-13T17:13:01.000Z,1000,50,2,10
v2,17.15.11,Cooking with fire,Beta,2017-11-13T07:30:00.000Z,2000,100,5,20
v3,17.16.11,Alpha returns,Alpha,2017-11-12T19:05:24.000Z,0,10,1,5
v4,not-a-date,Mystery video,Gamma,2017-11-12T11:00:00.000Z,500,5,0,1
v5,17.18.11,Quiet,Delta,,300,3,1,
`

func load(t *testing.T, in string) *Table {
	t.Helper()
	tbl, err := Load(strings.NewReader(in), Options{Name: "trending.csv"})
	require.NoError(t, err)
	return tbl
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"Video ID", " Channel Title", "Views "})
	assert.Equal(t, []string{"video_id", "channel_title", "views"}, got)
	assert.Equal(t, got, NormalizeHeaders(got), "normalizing twice must be a no-op")

	tbl := &Table{Columns: []string{"Like Count", "TITLE"}}
	tbl.NormalizeHeaders()
	assert.Equal(t, []string{"like_count", "title"}, tbl.Columns)
}

func TestLoadTypesAndDates(t *testing.T) {
	tbl := load(t, trendingCSV)
	require.Equal(t, 5, tbl.Len())
	assert.Equal(t, "trending.csv", tbl.Name)
	assert.NotEmpty(t, tbl.ID)
	assert.Equal(t, []string{"video_id", "trending_date", "title", "channel_title", "publish_time", "views", "likes", "dislikes", "comment_count"}, tbl.Columns)
	assert.Equal(t, []string{"views", "likes", "dislikes", "comment_count"}, tbl.NumericColumns())

	rec := tbl.Record(0)
	assert.Equal(t, Time, rec["trending_date"].Kind)
	assert.Equal(t, time.Date(2017, 11, 14, 0, 0, 0, 0, time.UTC), rec["trending_date"].Time)
	assert.Equal(t, time.Date(2017, 11, 13, 17, 13, 1, 0, time.UTC), rec["publish_time"].Time)

	// unparsable and empty date cells are missing, not errors
	assert.True(t, tbl.Record(3)["trending_date"].IsMissing())
	assert.True(t, tbl.Record(4)["publish_time"].IsMissing())
	assert.Equal(t, 1, tbl.Unparsed["trending_date"])
	assert.True(t, tbl.Record(4)["comment_count"].IsMissing())
}

func TestParseTimeDropsOffset(t *testing.T) {
	ts, ok := ParseTime("2017-11-13T17:13:01-05:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2017, 11, 13, 17, 13, 1, 0, time.UTC), ts)
	assert.Equal(t, time.UTC, ts.Location())

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
}

func TestLoadLatin1AndBOM(t *testing.T) {
	latin := []byte("title,views\ncaf\xe9,10\n")
	tbl, err := Load(bytes.NewReader(latin), Options{})
	require.NoError(t, err)
	assert.Equal(t, "café", tbl.Record(0)["title"].Text())

	bom := "\xef\xbb\xbftitle,views\nabc,1\n"
	tbl, err = Load(strings.NewReader(bom), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "views"}, tbl.Columns)
}

func TestLoadTSVByName(t *testing.T) {
	tbl, err := Load(strings.NewReader("Title\tViews\na\t1\n"), Options{Name: "x.tsv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "views"}, tbl.Columns)
	assert.Equal(t, []float64{1}, tbl.Floats("views"))
}

func TestLoadMalformedNumericRoleFails(t *testing.T) {
	_, err := Load(strings.NewReader("title,likes\na,10\nb,lots\n"), Options{})
	var mce *MalformedCellError
	require.True(t, errors.As(err, &mce), "got %v", err)
	assert.Equal(t, 2, mce.Row)
	assert.Equal(t, "likes", mce.Column)
	assert.Equal(t, "lots", mce.Value)

	// non-role columns may mix text and numbers
	_, err = Load(strings.NewReader("tags,likes\n1,10\nmusic,3\n"), Options{})
	assert.NoError(t, err)
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestResolvePrefersFirstCandidate(t *testing.T) {
	cols := []string{"likes", "like_count", "views"}
	got, ok := Resolve(cols, Candidates(RoleLikes))
	require.True(t, ok)
	assert.Equal(t, "like_count", got)

	_, ok = Resolve(cols, Candidates(RoleDislikes))
	assert.False(t, ok)

	roles := ResolveRoles(&Table{Columns: []string{"views", "comments", "title"}})
	assert.Equal(t, Roles{RoleViews: "views", RoleComments: "comments", RoleTitle: "title"}, roles)
	assert.False(t, roles.Has(RoleLikes))
}

func day(s string) time.Time {
	ts, _ := time.Parse("2006-01-02", s)
	return ts
}

func TestFilterDateRangeInclusive(t *testing.T) {
	tbl := load(t, "trending_date,title\n2017-11-03,keep\n2017-11-06,drop\nbogus,unparsed\n2017-11-01,edge\n")
	out := Apply(tbl, Filter{Dates: map[string]TimeRange{
		"trending_date": {Min: day("2017-11-01"), Max: day("2017-11-05")},
	}})
	var titles []string
	for i := 0; i < out.Len(); i++ {
		titles = append(titles, out.Record(i)["title"].Text())
	}
	assert.Equal(t, []string{"keep", "edge"}, titles)
}

func TestFilterEmptyChannelSelectionKeepsNothing(t *testing.T) {
	tbl := load(t, trendingCSV)
	out := Apply(tbl, Filter{Channels: []string{}})
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, tbl.Columns, out.Columns)

	out = Apply(tbl, Filter{Channels: nil})
	assert.Equal(t, tbl.Len(), out.Len())
}

func TestFilterSkipsAbsentRoles(t *testing.T) {
	tbl := load(t, "title,score\na,1\nb,2\n")
	out := Apply(tbl, Filter{Channels: []string{}, Views: &NumberRange{Min: 100, Max: 200}})
	assert.Equal(t, 2, out.Len())
}

func TestFilterConjunctionIsOrderIndependent(t *testing.T) {
	tbl := load(t, trendingCSV)
	a := Filter{Channels: []string{"Alpha", "Beta", "Gamma"}}
	b := Filter{Views: &NumberRange{Min: 400, Max: 5000}}
	both := Filter{Channels: a.Channels, Views: b.Views}

	ab := Apply(Apply(tbl, a), b)
	ba := Apply(Apply(tbl, b), a)
	all := Apply(tbl, both)

	require.Equal(t, 3, all.Len())
	for _, got := range []*Table{ab, ba} {
		require.Equal(t, all.Len(), got.Len())
		for i := range all.Rows {
			for j := range all.Columns {
				assert.True(t, all.Rows[i][j].Equal(got.Rows[i][j]))
			}
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tbl := load(t, trendingCSV)
	before := tbl.Len()
	out := Apply(tbl, Filter{Channels: []string{"Alpha"}})
	out.Rows[0][0] = StringValue("changed")
	assert.Equal(t, before, tbl.Len())
	assert.Equal(t, "v1", tbl.Record(0)["video_id"].Text())
}

func TestDefaultFilter(t *testing.T) {
	tbl := load(t, trendingCSV)
	f := DefaultFilter(tbl)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta"}, f.Channels)
	require.Contains(t, f.Dates, "trending_date")
	assert.NotContains(t, f.Dates, "publish_time")
	assert.Equal(t, day("2017-11-14"), f.Dates["trending_date"].Min)
	assert.Equal(t, day("2017-11-18"), f.Dates["trending_date"].Max)
	require.NotNil(t, f.Views)
	assert.Equal(t, NumberRange{Min: 0, Max: 2000}, *f.Views)

	// the row with an unparsed trending date falls outside the default range
	assert.Equal(t, 4, Apply(tbl, f).Len())
}

func TestDeriveEngagementRate(t *testing.T) {
	tbl := load(t, "likes,comments,views\n10,5,0\n10,5,100\n,5,100\n")
	out := DeriveEngagementRate(tbl)
	require.True(t, out.Has(EngagementColumn))
	assert.False(t, tbl.Has(EngagementColumn), "input must not gain the column")

	rates := out.Floats(EngagementColumn)
	assert.Equal(t, []float64{0, 0.15, 0}, rates)
	for _, r := range rates {
		assert.GreaterOrEqual(t, r, 0.0)
	}
}

func TestDeriveEngagementRateKeepsExistingColumn(t *testing.T) {
	tbl := load(t, "likes,comments,views,engagement_rate\n10,5,100,custom\n")
	out := DeriveEngagementRate(tbl)
	assert.Same(t, tbl, out)
	assert.Equal(t, "custom", out.Record(0)[EngagementColumn].Text())
}

func TestDeriveEngagementRateNeedsAllRoles(t *testing.T) {
	tbl := load(t, "likes,views\n10,100\n")
	assert.Same(t, tbl, DeriveEngagementRate(tbl))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := load(t, trendingCSV)
	filtered := Process(tbl, Filter{Channels: []string{"Alpha", "Gamma", "Delta"}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, filtered))

	var again bytes.Buffer
	require.NoError(t, WriteCSV(&again, filtered))
	assert.Equal(t, buf.String(), again.String(), "serialization must be deterministic")

	back, err := Load(bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	require.Equal(t, filtered.Columns, back.Columns)
	require.Equal(t, filtered.Len(), back.Len())
	for i := range filtered.Rows {
		for j, c := range filtered.Columns {
			assert.True(t, filtered.Rows[i][j].Equal(back.Rows[i][j]), "row %d column %s: %q vs %q", i, c, filtered.Rows[i][j].Text(), back.Rows[i][j].Text())
		}
	}
	assert.Contains(t, buf.String(), "2017-11-14,")
	assert.Contains(t, buf.String(), "2017-11-13 17:13:01")
}
