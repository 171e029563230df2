package dataset

import "math"

// EngagementColumn is the derived engagement metric column.
const EngagementColumn = "engagement_rate"

// DeriveEngagementRate appends engagement_rate = (likes + comments) / views
// when the likes, comments and views roles all resolve. Undefined results
// (zero or missing views, missing operands) are 0. A table that already has
// an engagement_rate column, or lacks a role, is returned unchanged.
func DeriveEngagementRate(t *Table) *Table {
	roles := ResolveRoles(t)
	if !roles.Has(RoleLikes, RoleComments, RoleViews) || t.Has(EngagementColumn) {
		return t
	}
	li := t.Index(roles[RoleLikes])
	ci := t.Index(roles[RoleComments])
	vi := t.Index(roles[RoleViews])

	rows := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row), len(row)+1)
		copy(r, row)
		rows[i] = append(r, NumberValue(engagementRate(row[li], row[ci], row[vi])))
	}
	out := t.withRows(rows)
	out.Columns = append(out.Columns, EngagementColumn)
	out.Kinds = append(out.Kinds, Number)
	return out
}

func engagementRate(likes, comments, views Value) float64 {
	l, ok1 := likes.Float()
	c, ok2 := comments.Float()
	v, ok3 := views.Float()
	if !ok1 || !ok2 || !ok3 || v == 0 {
		return 0
	}
	r := (l + c) / v
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0
	}
	return r
}
