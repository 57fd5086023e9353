package routing

import (
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/jrsteele09/notate-dashboard/users"
)

// Guard protects a subtree of screens. An empty AllowedRoles admits any
// authenticated user.
type Guard struct {
	AllowedRoles []users.Role
}

// RequireRoles returns a guard limited to roles
func RequireRoles(roles ...users.Role) Guard {
	return Guard{AllowedRoles: roles}
}

// Decide never redirects while the session is loading, whatever User holds.
// A resolved session without a user goes to login; an authenticated user whose
// role is not allowed goes to the generic dashboard instead.
func (g Guard) Decide(st session.State) Decision {
	if st.IsLoading {
		return pending
	}
	if st.User == nil {
		return redirectLogin
	}
	if len(g.AllowedRoles) > 0 && !st.User.HasRole(g.AllowedRoles...) {
		return redirectDashboard
	}
	return allow
}
