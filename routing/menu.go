package routing

import (
	"strings"

	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/users"
)

// NavEntry is one sidebar item
type NavEntry struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

var (
	adminNav = []NavEntry{
		{Title: "Dashboard", Href: routes.AdminDashboard, Icon: "layout-dashboard"},
		{Title: "Users", Href: routes.AdminUsers, Icon: "users"},
		{Title: "System Settings", Href: routes.AdminSettings, Icon: "settings"},
		{Title: "Reports", Href: routes.AdminReports, Icon: "file-text"},
	}
	teacherNav = []NavEntry{
		{Title: "Dashboard", Href: routes.TeacherDashboard, Icon: "layout-dashboard"},
		{Title: "Subjects", Href: routes.TeacherSubjects, Icon: "users"},
		{Title: "Assignments", Href: routes.TeacherAssignments, Icon: "library"},
		{Title: "Gradebook", Href: routes.TeacherGradebook, Icon: "clipboard-list"},
	}
	studentNav = []NavEntry{
		{Title: "Dashboard", Href: routes.StudentDashboard, Icon: "layout-dashboard"},
		{Title: "Submissions", Href: routes.StudentSubmissions, Icon: "upload"},
	}
)

// MenuFor returns a copy of the role's ordered menu. Unknown or empty roles
// get an empty menu.
func MenuFor(role users.Role) []NavEntry {
	var src []NavEntry
	switch role {
	case users.RoleAdmin:
		src = adminNav
	case users.RoleTeacher:
		src = teacherNav
	case users.RoleStudent:
		src = studentNav
	default:
		return []NavEntry{}
	}
	out := make([]NavEntry, len(src))
	copy(out, src)
	return out
}

// IsActive reports whether e is the page at path
func IsActive(e NavEntry, path string) bool {
	return strings.TrimSuffix(path, "/") == e.Href
}
