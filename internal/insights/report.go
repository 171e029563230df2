package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/trendboard/internal/dataset"
)

var roleOrder = []dataset.Role{
	dataset.RoleViews, dataset.RoleLikes, dataset.RoleDislikes, dataset.RoleComments,
	dataset.RoleChannel, dataset.RoleTitle, dataset.RoleVideoID,
}

// Markdown renders a compact text report of the view.
func (v *View) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if v.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", v.Name))
	}
	if v.Rows < v.Total {
		b.WriteString(fmt.Sprintf("Rows: %d (filtered from %d)\n", v.Rows, v.Total))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", v.Rows))
	}
	if v.Table != nil {
		b.WriteString(fmt.Sprintf("Columns: %d\n", len(v.Table.Columns)))
	}
	b.WriteString(filterLine(v.Filter))

	b.WriteString("\n[ROLES]\n")
	for _, r := range roleOrder {
		col, ok := v.Roles[r]
		if !ok {
			col = "(absent)"
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", r, col))
	}

	if len(v.TopChannels) > 0 {
		b.WriteString("\n[TOP CHANNELS]\n")
		for i, c := range v.TopChannels {
			b.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, safeVal(c.Value), c.Count))
		}
	}

	if len(v.Summaries) > 0 {
		b.WriteString("\n[NUMERIC SUMMARY]\n")
		for _, s := range v.Summaries {
			b.WriteString(fmt.Sprintf("- %s: n=%d, mean %.4g, std %.4g, min %.4g, median %.4g, max %.4g\n",
				s.Column, s.Count, s.Mean, s.Std, s.Min, s.Median, s.Max))
		}
	}

	if v.Corr != nil && len(v.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(v.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, pr{A: v.Corr.Columns[i], B: v.Corr.Columns[j], R: v.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if s, ok := v.Summary(dataset.EngagementColumn); ok {
		b.WriteString("\n[ENGAGEMENT]\n")
		b.WriteString(fmt.Sprintf("engagement_rate = (likes + comments) / views: mean %.4g, median %.4g, max %.4g\n", s.Mean, s.Median, s.Max))
	}

	if len(v.Words) > 0 {
		b.WriteString("\n[TOP TITLE WORDS]\n")
		lim := 15
		if len(v.Words) < lim {
			lim = len(v.Words)
		}
		for i, w := range v.Words[:lim] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s(%d)", w.Word, w.Count))
		}
		b.WriteString("\n")
	}

	if len(v.Preview) > 0 && v.Table != nil {
		b.WriteString("\n[HEAD ROWS]\n")
		b.WriteString("| ")
		b.WriteString(strings.Join(v.Table.Columns, " | "))
		b.WriteString(" |\n|")
		b.WriteString(strings.Repeat(" --- |", len(v.Table.Columns)))
		b.WriteString("\n")
		for _, rec := range v.Preview {
			b.WriteString("| ")
			for i, c := range v.Table.Columns {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := rec[c].Text()
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if len(v.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range v.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func filterLine(f dataset.Filter) string {
	if !f.Active() {
		return "Filter: none\n"
	}
	var parts []string
	if f.Channels != nil {
		if len(f.Channels) == 0 {
			parts = append(parts, "channels=(none selected)")
		} else {
			parts = append(parts, "channels="+strings.Join(f.Channels, ","))
		}
	}
	for _, col := range dataset.DateColumns {
		if r, ok := f.Dates[col]; ok {
			parts = append(parts, fmt.Sprintf("%s=[%s, %s]", col, fmtBound(r.Min), fmtBound(r.Max)))
		}
	}
	if f.Views != nil {
		parts = append(parts, fmt.Sprintf("views=[%g, %g]", f.Views.Min, f.Views.Max))
	}
	return "Filter: " + strings.Join(parts, "; ") + "\n"
}

func fmtBound(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
