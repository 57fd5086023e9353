package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the session snapshot the guard admitted
const ContextKeySession ContextKey = "session"

// RequireSession applies a route guard to an HTML route. Nothing protected is
// written before the decision: a pending session gets the loading page, any
// redirect is a 303 and only Allow reaches next.
func (s *Server) RequireSession(guard routing.Guard) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			st := s.session.Snapshot()
			d := guard.Decide(st)

			switch d.Outcome {
			case routing.Allow:
				ctx := context.WithValue(r.Context(), ContextKeySession, st)
				next(w, r.WithContext(ctx))
			case routing.Pending:
				s.renderLoading(w)
			default:
				redirectSuccess(w, r, d.Target)
			}
		}
	}
}

// sessionFrom returns the snapshot stored by RequireSession
func sessionFrom(ctx context.Context) (session.State, bool) {
	st, ok := ctx.Value(ContextKeySession).(session.State)
	return st, ok
}

// renderLoading shows the placeholder for an unresolved session. It reloads
// the same URL, it never navigates elsewhere.
func (s *Server) renderLoading(w http.ResponseWriter) {
	tmpl, err := ParseTemplate("loading.html")
	if err != nil {
		http.Error(w, "Failed to load loading template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	renderHTML(w, http.StatusOK, tmpl, map[string]any{
		"AppName": s.config.GetAppName(),
	})
}
