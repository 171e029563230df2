package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/trendboard/internal/dataset"
)

// Filter query parameters.
const (
	paramChannel      = "channel"
	paramChannels     = "channels"
	paramTrendingFrom = "trending_from"
	paramTrendingTo   = "trending_to"
	paramPublishFrom  = "publish_from"
	paramPublishTo    = "publish_to"
	paramMinViews     = "min_views"
	paramMaxViews     = "max_views"
)

var filterParams = []string{
	paramChannel, paramChannels, paramTrendingFrom, paramTrendingTo,
	paramPublishFrom, paramPublishTo, paramMinViews, paramMaxViews,
}

// ParseFilter reads a dataset.Filter from query parameters. explicit is
// false when no filter parameter is present at all, in which case the
// caller applies the default filter. Empty values leave that bound open.
// channels=none with no channel values selects nothing.
func ParseFilter(q url.Values) (f dataset.Filter, explicit bool, err error) {
	for _, p := range filterParams {
		if _, ok := q[p]; ok {
			explicit = true
			break
		}
	}
	if !explicit {
		return f, false, nil
	}

	var chans []string
	// channel cells are matched as stored, surrounding spaces included
	for _, c := range q[paramChannel] {
		if c != "" {
			chans = append(chans, c)
		}
	}
	switch {
	case len(chans) > 0:
		f.Channels = chans
	case strings.EqualFold(q.Get(paramChannels), "none"):
		f.Channels = []string{}
	}

	for _, d := range []struct{ col, from, to string }{
		{"trending_date", paramTrendingFrom, paramTrendingTo},
		{"publish_time", paramPublishFrom, paramPublishTo},
	} {
		lo, err := parseDay(q.Get(d.from))
		if err != nil {
			return f, true, fmt.Errorf("%s: %w", d.from, err)
		}
		hi, err := parseDay(q.Get(d.to))
		if err != nil {
			return f, true, fmt.Errorf("%s: %w", d.to, err)
		}
		if isDayOnly(q.Get(d.to)) {
			hi = endOfDay(hi)
		}
		if lo.IsZero() && hi.IsZero() {
			continue
		}
		if !lo.IsZero() && !hi.IsZero() && hi.Before(lo) {
			return f, true, fmt.Errorf("%s is after %s", d.from, d.to)
		}
		if f.Dates == nil {
			f.Dates = map[string]dataset.TimeRange{}
		}
		f.Dates[d.col] = dataset.TimeRange{Min: lo, Max: hi}
	}

	lo, hasLo, err := parseBound(q.Get(paramMinViews))
	if err != nil {
		return f, true, fmt.Errorf("%s: %w", paramMinViews, err)
	}
	hi, hasHi, err := parseBound(q.Get(paramMaxViews))
	if err != nil {
		return f, true, fmt.Errorf("%s: %w", paramMaxViews, err)
	}
	if hasLo || hasHi {
		r := dataset.OpenNumberRange()
		if hasLo {
			r.Min = lo
		}
		if hasHi {
			r.Max = hi
		}
		if r.Min > r.Max {
			return f, true, fmt.Errorf("%s is greater than %s", paramMinViews, paramMaxViews)
		}
		f.Views = &r
	}
	return f, true, nil
}

// EncodeFilter is the inverse of ParseFilter for an explicit filter.
func EncodeFilter(f dataset.Filter) url.Values {
	q := url.Values{}
	if f.Channels != nil {
		q.Set(paramChannels, "none")
		for _, c := range f.Channels {
			q.Add(paramChannel, c)
		}
	}
	for _, d := range []struct{ col, from, to string }{
		{"trending_date", paramTrendingFrom, paramTrendingTo},
		{"publish_time", paramPublishFrom, paramPublishTo},
	} {
		r, ok := f.Dates[d.col]
		if !ok {
			continue
		}
		if !r.Min.IsZero() {
			q.Set(d.from, formatBound(r.Min))
		}
		if !r.Max.IsZero() {
			q.Set(d.to, formatUpperBound(r.Max))
		}
	}
	if f.Views != nil {
		if !math.IsInf(f.Views.Min, 0) {
			q.Set(paramMinViews, strconv.FormatFloat(f.Views.Min, 'f', -1, 64))
		}
		if !math.IsInf(f.Views.Max, 0) {
			q.Set(paramMaxViews, strconv.FormatFloat(f.Views.Max, 'f', -1, 64))
		}
	}
	if len(q) == 0 {
		// keep the filter explicit so the default is not applied
		q.Set(paramChannel, "")
	}
	return q
}

const dayLayout = "2006-01-02"

// formatBound keeps the time of day only when it is not midnight.
func formatBound(t time.Time) string {
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(dayLayout)
	}
	return t.Format("2006-01-02T15:04:05.999999999")
}

// formatUpperBound writes an end-of-day bound as its date, which
// ParseFilter widens back to the whole day.
func formatUpperBound(t time.Time) string {
	if t.Equal(endOfDay(t)) {
		return t.Format(dayLayout)
	}
	return formatBound(t)
}

// An inclusive date-only upper bound covers the whole day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

func isDayOnly(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.Contains(s, ":")
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := dataset.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func parseBound(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	return f, true, nil
}
