package dataset

import (
	"strings"
	"time"
)

// DateColumns are the date-like columns parsed on load.
var DateColumns = []string{"trending_date", "publish_time"}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05.999999999"
)

// Layouts tried in order. "06.02.01" is the yy.dd.mm form used by the
// YouTube trending exports (e.g. 17.14.11).
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateLayout,
	"2006/01/02",
	"06.02.01",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// ParseTime parses s with the supported layouts and returns a
// timezone-naive result. The offset, if any, is dropped rather than
// converted: wall-clock fields are kept as written.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return naive(t), true
		}
	}
	return time.Time{}, false
}

// ParseDates converts every present date column into Time cells. Cells that
// do not parse become Missing; the count per column is returned.
func ParseDates(t *Table) map[string]int {
	unparsed := map[string]int{}
	for _, col := range DateColumns {
		idx := t.Index(col)
		if idx < 0 {
			continue
		}
		for _, row := range t.Rows {
			v := row[idx]
			switch v.Kind {
			case Time, Missing:
				continue
			}
			if ts, ok := ParseTime(v.Str); ok {
				row[idx] = TimeValue(ts)
			} else {
				row[idx] = Value{}
				unparsed[col]++
			}
		}
		if idx < len(t.Kinds) {
			t.Kinds[idx] = Time
		}
	}
	return unparsed
}

func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
