package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/rs/zerolog/log"
)

// page describes one screen of a role's section
type page struct {
	Title       string
	Description string
	Content     string // content template
	Stats       bool   // landing pages show the role's counters
	Users       bool   // lists the backend's accounts
}

var pages = map[string]page{
	routes.AdminDashboard:     {Title: "Admin Dashboard", Description: "School-wide overview", Content: "landing_content.html", Stats: true},
	routes.AdminUsers:         {Title: "Users", Description: "Students, teachers and administrators", Content: "users_content.html", Users: true},
	routes.AdminSettings:      {Title: "System Settings", Content: "section_content.html"},
	routes.AdminReports:       {Title: "Reports", Content: "section_content.html"},
	routes.TeacherDashboard:   {Title: "Teacher Dashboard", Description: "Your classes at a glance", Content: "landing_content.html", Stats: true},
	routes.TeacherSubjects:    {Title: "Subjects", Content: "section_content.html"},
	routes.TeacherAssignments: {Title: "Assignments", Description: "Create and review assignments", Content: "section_content.html"},
	routes.TeacherGradebook:   {Title: "Gradebook", Content: "section_content.html"},
	routes.StudentDashboard:   {Title: "Student Dashboard", Description: "What is due and how you are doing", Content: "landing_content.html", Stats: true},
	routes.StudentSubmissions: {Title: "Submissions", Description: "Your submitted work and feedback", Content: "section_content.html"},
}

// menuItem is a sidebar entry with its active flag resolved
type menuItem struct {
	routing.NavEntry
	Active bool
}

// DashboardHandler is the generic entry point. It only dispatches: a loading
// session sees the placeholder, everything else is redirected.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.session.Snapshot()
		d := routing.Landing(st)

		switch {
		case d.Outcome == routing.Pending:
			s.renderLoading(w)
			return
		case d.Outcome == routing.RedirectLogin && st.User != nil:
			// an authenticated user with a role no section exists for
			log.Warn().Str("role", st.Role().String()).Msg("Invalid role, discarding session")
			if err := s.session.Logout(r.Context()); err != nil {
				log.Err(err).Msg("logout after invalid role")
			}
		}
		redirectSuccess(w, r, d.Target)
	}
}

// RolePageHandler renders a page of the section the guard admitted
func (s *Server) RolePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		p, ok := pages[path]
		if !ok {
			http.Error(w, "404 - Page not found", http.StatusNotFound)
			return
		}
		st, ok := sessionFrom(r.Context())
		if !ok {
			// routes are always registered behind RequireSession
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.renderDashboardPage(w, r, st, path, p)
	}
}

// renderDashboardPage renders a page with the dashboard layout
func (s *Server) renderDashboardPage(w http.ResponseWriter, r *http.Request, st session.State, path string, p page) {
	var menu []menuItem
	for _, e := range routing.MenuFor(st.Role()) {
		menu = append(menu, menuItem{NavEntry: e, Active: routing.IsActive(e, path)})
	}

	contentData := map[string]any{
		"Title": p.Title,
	}
	if p.Stats {
		stats, err := s.api.Stats(r.Context(), st.Role())
		if err != nil {
			log.Err(err).Str("role", st.Role().String()).Msg("Failed to fetch dashboard stats")
			contentData["StatsError"] = apiErrorMessage(err, "Statistics are unavailable right now")
		} else {
			contentData["Stats"] = stats
			contentData["AverageGrade"] = formatGrade(stats.AverageGrade)
		}
	}

	if p.Users {
		list, err := s.api.Users(r.Context(), "")
		if err != nil {
			log.Err(err).Msg("Failed to fetch users")
			contentData["UsersError"] = apiErrorMessage(err, "Users are unavailable right now")
		} else {
			rows := make([]userRow, 0, len(list))
			for i := range list {
				rows = append(rows, userRow{Name: list[i].DisplayName(), Email: list[i].Email, Role: list[i].Role.String()})
			}
			contentData["Users"] = rows
		}
	}

	contentTmpl, err := ParseTemplate(p.Content)
	if err != nil {
		http.Error(w, "Failed to load content template", http.StatusInternalServerError)
		return
	}
	var contentBuf strings.Builder
	if err := contentTmpl.Execute(&contentBuf, contentData); err != nil {
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := ParseTemplate("dashboard_layout.html")
	if err != nil {
		http.Error(w, "Failed to load layout template", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"AppName":     s.config.GetAppName(),
		"UserID":      st.User.ID,
		"Role":        st.Role().String(),
		"Menu":        menu,
		"PageTitle":   p.Title,
		"Description": p.Description,
		"Content":     template.HTML(contentBuf.String()),
	}
	renderHTML(w, http.StatusOK, layoutTmpl, data)
}

type userRow struct {
	Name  string
	Email string
	Role  string
}

func formatGrade(g *float64) string {
	if g == nil {
		return "-"
	}
	return strconv.FormatFloat(*g, 'f', 1, 64)
}

func apiErrorMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
