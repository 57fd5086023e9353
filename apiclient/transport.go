package apiclient

import (
	"net/http"

	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// bearerTransport reads the token store on every request so a token rotated
// mid-session is used by the next call. Requests go out without an
// Authorization header when there is no token.
type bearerTransport struct {
	store token.Store
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, ok, err := t.store.Get(req.Context())
	if err != nil {
		log.Warn().Err(err).Msg("token store read failed, sending unauthenticated request")
	}
	if err != nil || !ok {
		return t.base.RoundTrip(req)
	}

	authed := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return authed.RoundTrip(req)
}
