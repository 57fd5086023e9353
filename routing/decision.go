// Package routing decides where a session may go: the route guard, the
// role router and the sidebar menus.
package routing

import "github.com/jrsteele09/notate-dashboard/routes"

// Outcome is the result of a navigation decision
type Outcome int

const (
	// Pending means the session has not resolved yet: show a placeholder and
	// do not navigate.
	Pending Outcome = iota
	// Allow renders the protected content
	Allow
	// RedirectLogin is the outcome for a resolved session without a user
	RedirectLogin
	// RedirectDashboard is the outcome for a user whose role is not allowed
	RedirectDashboard
	// RedirectLanding sends a user to their role's landing page
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	case RedirectLanding:
		return "redirect-landing"
	default:
		return "unknown"
	}
}

// Decision pairs an outcome with its redirect target, if any
type Decision struct {
	Outcome Outcome
	Target  string
}

// Redirects reports whether the decision navigates away
func (d Decision) Redirects() bool {
	return d.Target != ""
}

var (
	pending           = Decision{Outcome: Pending}
	allow             = Decision{Outcome: Allow}
	redirectLogin     = Decision{Outcome: RedirectLogin, Target: routes.Login}
	redirectDashboard = Decision{Outcome: RedirectDashboard, Target: routes.Dashboard}
)
