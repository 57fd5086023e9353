package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/notate-dashboard/apiclient"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/rs/zerolog/log"
)

const (
	msgMissingCredentials = "Email and password are required"
	msgLoginFailed        = "Login failed. Check credentials."
	msgConnectionFailed   = "Connection failed. Try again later."
	msgInvalidToken       = "The server returned an unusable session"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// LoginPageHandler displays the login page. An authenticated session is sent
// to the role router instead.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if s.session.Snapshot().Authenticated() {
			redirectSuccess(w, r, routes.Dashboard)
			return
		}
		renderHTML(w, http.StatusOK, loginTmpl, LoginPageData{
			AppName: s.config.GetAppName(),
			Email:   r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler exchanges the credentials for a token, stores it
// through the session and hands over to the role router
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		fail := func(status int, msg string) {
			renderHTML(w, status, loginTmpl, LoginPageData{
				AppName: s.config.GetAppName(),
				Error:   msg,
				Email:   email,
			})
		}

		if email == "" || password == "" {
			fail(http.StatusBadRequest, msgMissingCredentials)
			return
		}

		raw, err := s.api.Login(r.Context(), email, password)
		if err != nil {
			log.Warn().Err(err).Str("email", email).Msg("login rejected")
			var apiErr *apiclient.APIError
			switch {
			case apperrors.As(err, &apiErr):
				fail(apiErr.Status, apiErr.Message)
			case apperrors.Is(err, apperrors.ErrBackend):
				fail(http.StatusBadGateway, msgLoginFailed)
			default:
				fail(http.StatusBadGateway, msgConnectionFailed)
			}
			return
		}

		st, err := s.session.SetToken(r.Context(), raw)
		if err != nil {
			log.Error().Err(err).Msg("store session token")
			fail(http.StatusInternalServerError, msgConnectionFailed)
			return
		}
		if !st.Authenticated() {
			// the token did not decode and the session already purged it
			fail(http.StatusBadGateway, msgInvalidToken)
			return
		}

		log.Info().Str("user", st.User.ID).Str("role", st.Role().String()).Msg("logged in")
		redirectSuccess(w, r, routes.Dashboard)
	}
}

// LogoutHandler ends the session. Open tabs are sent to the login page by the
// session's navigator; this request is redirected there directly.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout: token store was not cleared")
		}
		redirectSuccess(w, r, routes.Login)
	}
}
