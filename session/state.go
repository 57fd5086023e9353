package session

import "github.com/jrsteele09/notate-dashboard/users"

// State is the client side view of who is logged in. User is nil when logged
// out. While IsLoading is true the token has not been read yet and a nil User
// means nothing.
type State struct {
	User      *users.Identity `json:"user"`
	IsLoading bool            `json:"isLoading"`
}

// Authenticated reports a resolved, logged in session
func (s State) Authenticated() bool {
	return !s.IsLoading && s.User != nil
}

// Role returns the decoded role, or "" without a user
func (s State) Role() users.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (s State) equal(o State) bool {
	if s.IsLoading != o.IsLoading {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == nil && o.User == nil
	}
	return s.User.ID == o.User.ID && s.User.Role == o.User.Role && s.User.ExpiresAt.Equal(o.User.ExpiresAt)
}
