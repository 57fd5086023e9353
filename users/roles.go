package users

// Role is the user category carried in the token's role claim. The set is
// closed; anything else decodes as an unrecognised Role and is routed to the
// default branch by callers.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists the recognised roles
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin}
}

// Valid reports whether r is one of the recognised roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a claim value into a Role, reporting whether it is recognised
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
