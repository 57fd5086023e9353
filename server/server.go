package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/rs/zerolog/log"
)

// Server is the dashboard shell. It renders whatever the session service
// decides and never holds session state of its own.
type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	session *session.Service
	api     *apiclient.Client
	events  *EventHub
	unwatch func()
}

// New builds the shell around an already constructed session service. The
// hub should also be the session's navigator so forced navigations reach
// open tabs.
func New(c config.Config, sess *session.Service, api *apiclient.Client, events *EventHub) *Server {
	s := &Server{
		env:     c.GetEnv(),
		mux:     http.NewServeMux(),
		config:  c,
		session: sess,
		api:     api,
		events:  events,
	}
	s.unwatch = sess.Watch(events.PublishSession)

	s.initRoutes()
	s.logRoutes()
	return s
}

// Close stops forwarding session changes and disconnects event streams
func (s *Server) Close() {
	s.unwatch()
	s.events.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colouredMethod(method), path, Red+error+ResetColor)
}
