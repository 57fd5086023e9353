package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/session"
)

type sessionUserView struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type sessionView struct {
	Authenticated bool               `json:"authenticated"`
	IsLoading     bool               `json:"isLoading"`
	User          *sessionUserView   `json:"user"`
	Landing       string             `json:"landing,omitempty"`
	Menu          []routing.NavEntry `json:"menu"`
}

func newSessionView(st session.State) sessionView {
	v := sessionView{
		Authenticated: st.Authenticated(),
		IsLoading:     st.IsLoading,
		Menu:          routing.MenuFor(st.Role()),
	}
	if st.User != nil {
		v.User = &sessionUserView{ID: st.User.ID, Role: st.User.Role.String()}
		if !st.User.ExpiresAt.IsZero() {
			exp := st.User.ExpiresAt
			v.User.ExpiresAt = &exp
		}
		v.Landing, _ = routes.LandingFor(st.User.Role)
	}
	return v
}

// SessionHandler reports the current session as JSON
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(newSessionView(s.session.Snapshot()))
	}
}
