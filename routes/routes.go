// Package routes holds the dashboard's fixed navigation destinations.
package routes

import (
	"strings"

	"github.com/jrsteele09/notate-dashboard/users"
)

// Route path constants
// All navigation targets are defined here to ensure consistency and prevent typos
const (
	Home      = "/"
	Login     = "/login"
	Logout    = "/logout"
	Dashboard = "/dashboard"

	// Role landings
	AdminDashboard   = "/dashboard/admin"
	TeacherDashboard = "/dashboard/teacher"
	StudentDashboard = "/dashboard/student"

	// Admin pages
	AdminUsers    = "/dashboard/admin/users"
	AdminSettings = "/dashboard/admin/settings"
	AdminReports  = "/dashboard/admin/reports"

	// Teacher pages
	TeacherSubjects    = "/dashboard/teacher/subjects"
	TeacherAssignments = "/dashboard/teacher/assignments"
	TeacherGradebook   = "/dashboard/teacher/gradebook"

	// Student pages
	StudentSubmissions = "/dashboard/student/submissions"

	// Shell API
	APISession = "/api/session"
	Events     = "/events"
	Static     = "/static/{file}"
)

// LandingFor returns the landing page of a recognised role and false otherwise
func LandingFor(role users.Role) (string, bool) {
	switch role {
	case users.RoleAdmin:
		return AdminDashboard, true
	case users.RoleTeacher:
		return TeacherDashboard, true
	case users.RoleStudent:
		return StudentDashboard, true
	default:
		return "", false
	}
}

// RoleOf returns the role whose dashboard section contains path
func RoleOf(path string) (users.Role, bool) {
	for _, r := range users.Roles() {
		landing, _ := LandingFor(r)
		if path == landing || strings.HasPrefix(path, landing+"/") {
			return r, true
		}
	}
	return "", false
}
