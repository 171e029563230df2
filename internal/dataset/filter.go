package dataset

import (
	"math"
	"time"
)

// TimeRange is an inclusive datetime range. A zero Min or Max leaves that
// side open.
type TimeRange struct {
	Min time.Time
	Max time.Time
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.Min.IsZero() && t.Before(r.Min) {
		return false
	}
	if !r.Max.IsZero() && t.After(r.Max) {
		return false
	}
	return true
}

// NumberRange is an inclusive numeric range. Use math.Inf for an open side.
type NumberRange struct {
	Min float64
	Max float64
}

// OpenNumberRange returns a range with no bounds.
func OpenNumberRange() NumberRange {
	return NumberRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

func (r NumberRange) contains(f float64) bool { return f >= r.Min && f <= r.Max }

// Filter is the set of active row predicates. The zero Filter keeps every
// row.
type Filter struct {
	// Channels keeps rows whose channel is listed. nil leaves the predicate
	// unset; a non-nil empty slice keeps nothing.
	Channels []string
	// Dates holds an inclusive range per date column. Rows with a missing
	// date in a filtered column are dropped.
	Dates map[string]TimeRange
	// Views bounds the resolved views column. Rows with missing views are
	// dropped.
	Views *NumberRange
}

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return f.Channels != nil || len(f.Dates) > 0 || f.Views != nil
}

type predicate func(row []Value) bool

// Apply returns a new table holding only the rows that satisfy every active
// predicate. The input table is not modified. Predicates whose column is
// absent are skipped.
func Apply(t *Table, f Filter) *Table {
	preds := compile(t, f)
	rows := make([][]Value, 0, len(t.Rows))
rowLoop:
	for _, row := range t.Rows {
		for _, p := range preds {
			if !p(row) {
				continue rowLoop
			}
		}
		rows = append(rows, append([]Value(nil), row...))
	}
	return t.withRows(rows)
}

func compile(t *Table, f Filter) []predicate {
	var preds []predicate
	roles := ResolveRoles(t)

	if f.Channels != nil {
		if col, ok := roles.Column(RoleChannel); ok {
			idx := t.Index(col)
			set := make(map[string]struct{}, len(f.Channels))
			for _, c := range f.Channels {
				set[c] = struct{}{}
			}
			preds = append(preds, func(row []Value) bool {
				v := row[idx]
				if v.IsMissing() {
					return false
				}
				_, ok := set[v.Text()]
				return ok
			})
		}
	}

	for _, col := range DateColumns {
		rng, ok := f.Dates[col]
		if !ok {
			continue
		}
		idx := t.Index(col)
		if idx < 0 {
			continue
		}
		preds = append(preds, func(row []Value) bool {
			v := row[idx]
			return v.Kind == Time && rng.contains(v.Time)
		})
	}

	if f.Views != nil {
		if col, ok := roles.Column(RoleViews); ok {
			idx := t.Index(col)
			rng := *f.Views
			preds = append(preds, func(row []Value) bool {
				x, ok := row[idx].Float()
				return ok && rng.contains(x)
			})
		}
	}
	return preds
}

// DefaultChannelCount is how many channels the dashboard pre-selects.
const DefaultChannelCount = 5

// DefaultFilter returns the dashboard's initial filter: the first few
// channels in order of appearance, the full range of the first present date
// column and the full views range. Rows with missing dates or views fall
// outside those ranges.
func DefaultFilter(t *Table) Filter {
	var f Filter
	roles := ResolveRoles(t)
	if col, ok := roles.Column(RoleChannel); ok {
		seen := map[string]bool{}
		f.Channels = []string{}
		for _, v := range t.Column(col) {
			if v.IsMissing() || seen[v.Text()] {
				continue
			}
			seen[v.Text()] = true
			f.Channels = append(f.Channels, v.Text())
			if len(f.Channels) == DefaultChannelCount {
				break
			}
		}
	}
	for _, col := range DateColumns {
		if !t.Has(col) {
			continue
		}
		var lo, hi time.Time
		for _, v := range t.Column(col) {
			if v.Kind != Time {
				continue
			}
			if lo.IsZero() || v.Time.Before(lo) {
				lo = v.Time
			}
			if hi.IsZero() || v.Time.After(hi) {
				hi = v.Time
			}
		}
		if !lo.IsZero() {
			f.Dates = map[string]TimeRange{col: {Min: lo, Max: hi}}
		}
		break
	}
	if col, ok := roles.Column(RoleViews); ok {
		vals := t.Floats(col)
		if len(vals) > 0 {
			rng := NumberRange{Min: vals[0], Max: vals[0]}
			for _, x := range vals[1:] {
				rng.Min = math.Min(rng.Min, x)
				rng.Max = math.Max(rng.Max, x)
			}
			f.Views = &rng
		}
	}
	return f
}

// Process filters t and derives engagement metrics on the result.
func Process(t *Table, f Filter) *Table {
	return DeriveEngagementRate(Apply(t, f))
}
