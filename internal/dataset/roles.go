package dataset

import "strings"

// Role is a semantic meaning that one of several column names may satisfy.
type Role string

const (
	RoleViews    Role = "views"
	RoleLikes    Role = "likes"
	RoleDislikes Role = "dislikes"
	RoleComments Role = "comments"
	RoleChannel  Role = "channel"
	RoleTitle    Role = "title"
	RoleVideoID  Role = "video_id"
)

// Candidate column names per role, in priority order.
var roleCandidates = []struct {
	role  Role
	names []string
}{
	{RoleViews, []string{"view_count", "views"}},
	{RoleLikes, []string{"like_count", "likes"}},
	{RoleDislikes, []string{"dislike_count", "dislikes"}},
	{RoleComments, []string{"comment_count", "comments"}},
	{RoleChannel, []string{"channel_title"}},
	{RoleTitle, []string{"title"}},
	{RoleVideoID, []string{"video_id"}},
}

// NumericRoles must hold numbers when present.
var NumericRoles = []Role{RoleViews, RoleLikes, RoleDislikes, RoleComments}

// Candidates returns the ordered alias list for a role.
func Candidates(r Role) []string {
	for _, rc := range roleCandidates {
		if rc.role == r {
			return append([]string(nil), rc.names...)
		}
	}
	return nil
}

// Resolve returns the first candidate present in columns.
func Resolve(columns, candidates []string) (string, bool) {
	for _, cand := range candidates {
		for _, c := range columns {
			if strings.EqualFold(c, cand) {
				return c, true
			}
		}
	}
	return "", false
}

// Roles maps each resolved role to its column. Absent roles have no entry.
type Roles map[Role]string

// ResolveRoles resolves every known role against the table's columns.
func ResolveRoles(t *Table) Roles {
	out := Roles{}
	for _, rc := range roleCandidates {
		if col, ok := Resolve(t.Columns, rc.names); ok {
			out[rc.role] = col
		}
	}
	return out
}

// Column returns the column resolved for role.
func (r Roles) Column(role Role) (string, bool) {
	c, ok := r[role]
	return c, ok
}

// Has reports whether all given roles resolved.
func (r Roles) Has(roles ...Role) bool {
	for _, role := range roles {
		if _, ok := r[role]; !ok {
			return false
		}
	}
	return true
}
