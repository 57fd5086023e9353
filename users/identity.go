package users

import "time"

// Identity is derived from the session token on every refresh. It is never
// persisted on its own and never validated against the backend.
type Identity struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"` // zero when the token has no exp claim
}

// HasRole reports whether the identity's role is in roles
func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
