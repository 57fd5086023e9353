package server

import (
	"net/http"

	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/users"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+routes.Login, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+routes.Login, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+routes.Logout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+routes.Logout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Role router
	s.RegisterRouteHandler("GET "+routes.Dashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare()...))

	// Role sections, each guarded by its own role
	for _, role := range users.Roles() {
		landing, _ := routes.LandingFor(role)
		guarded := s.HTMLMiddleWare(s.RequireSession(routing.RequireRoles(role)))
		s.RegisterRouteHandler("GET "+landing, ChainMiddleware(s.RolePageHandler(), guarded...))
		s.RegisterRouteHandler("GET "+landing+"/{page}", ChainMiddleware(s.RolePageHandler(), guarded...))
	}

	// Shell API
	s.RegisterRouteHandler("GET "+routes.APISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+routes.APISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+routes.Events, ChainMiddleware(s.EventsHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	s.RegisterRouteHandler("GET "+routes.Static, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := r.PathValue("file")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
