// Package devbackend is a stand-in for the Notate REST service used in local
// runs and tests. It issues role tokens for seeded users and serves a few
// authenticated read endpoints.
package devbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/token/jwt"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/rs/zerolog/log"
)

const (
	RouteLogin = "/api/auth/login"
	RouteUsers = "/api/auth/users"
	RouteStats = "/api/stats/{role}"
)

type contextKey string

const contextKeyIdentity contextKey = "identity"

type Backend struct {
	mux     *http.ServeMux
	users   users.UserRepo
	signer  jwt.Signer
	creator *jwt.Creator
}

func New(repo users.UserRepo, signer jwt.Signer, expiry time.Duration) *Backend {
	b := &Backend{
		mux:     http.NewServeMux(),
		users:   repo,
		signer:  signer,
		creator: jwt.NewCreator(signer, expiry),
	}
	b.mux.HandleFunc("POST "+RouteLogin, b.loginHandler())
	b.mux.HandleFunc("GET "+RouteUsers, b.requireRole(b.usersHandler(), users.RoleAdmin))
	b.mux.HandleFunc("GET "+RouteStats, b.requireRole(b.statsHandler()))
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mux.ServeHTTP(w, r)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *Backend) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		u, err := b.users.GetByEmail(strings.TrimSpace(req.Email))
		if err != nil || !u.CheckPassword(req.Password) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		signed, err := b.creator.CreateAccessToken(u.ID, u.Role)
		if err != nil {
			log.Err(err).Msg("devbackend: create token")
			writeError(w, http.StatusInternalServerError, "Could not create token")
			return
		}
		log.Debug().Str("user", u.ID).Str("role", u.Role.String()).Msg("devbackend: issued token")
		writeJSON(w, http.StatusOK, map[string]string{"token": signed})
	}
}

func (b *Backend) usersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := users.Role(r.URL.Query().Get("role"))
		if role != "" && !role.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown role")
			return
		}
		list, err := b.users.List(role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not list users")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type statsResponse struct {
	Enrollments        int      `json:"enrollments"`
	PendingSubmissions int      `json:"pendingSubmissions"`
	AverageGrade       *float64 `json:"averageGrade"`
	UpcomingDeadlines  int      `json:"upcomingDeadlines"`
}

// statsHandler serves the landing counters of the caller's own role
func (b *Backend) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := r.Context().Value(contextKeyIdentity).(users.Identity)
		role := users.Role(r.PathValue("role"))
		if !role.Valid() {
			writeError(w, http.StatusNotFound, "Unknown role")
			return
		}
		if caller.Role != role {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		students, err := b.users.List(users.RoleStudent)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load stats")
			return
		}

		var resp statsResponse
		switch role {
		case users.RoleAdmin:
			resp = statsResponse{Enrollments: len(students), UpcomingDeadlines: 3}
		case users.RoleTeacher:
			resp = statsResponse{Enrollments: len(students), PendingSubmissions: 4, UpcomingDeadlines: 2}
		case users.RoleStudent:
			grade := 82.5
			resp = statsResponse{Enrollments: 5, PendingSubmissions: 1, AverageGrade: &grade, UpcomingDeadlines: 2}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// requireRole verifies the bearer token and, when roles are given, that its
// role is one of them
func (b *Backend) requireRole(next http.HandlerFunc, roles ...users.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := b.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if len(roles) > 0 && !id.HasRole(roles...) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyIdentity, id)))
	}
}

func (b *Backend) authenticate(r *http.Request) (users.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return users.Identity{}, apperrors.ErrUnauthorized
	}
	claims, err := jwt.Verify(parts[1], b.signer)
	if err != nil {
		return users.Identity{}, apperrors.Wrapf(apperrors.ErrUnauthorized, "%v", err)
	}
	id, _ := claims[jwt.ClaimID].(string)
	role, _ := claims[jwt.ClaimRole].(string)
	if id == "" || role == "" {
		return users.Identity{}, apperrors.ErrUnauthorized
	}
	return users.Identity{ID: id, Role: users.Role(role)}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
