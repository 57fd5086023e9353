package routing

import (
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/session"
)

// Landing dispatches the generic dashboard entry point to the landing page of
// the session's role. Unknown roles and missing users go to login.
func Landing(st session.State) Decision {
	if st.IsLoading {
		return pending
	}
	if st.User == nil {
		return redirectLogin
	}
	target, ok := routes.LandingFor(st.User.Role)
	if !ok {
		return redirectLogin
	}
	return Decision{Outcome: RedirectLanding, Target: target}
}
