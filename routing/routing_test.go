package routing_test

import (
	"testing"

	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/routing"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn(role users.Role) session.State {
	return session.State{User: &users.Identity{ID: "u1", Role: role}}
}

func TestGuardPendingWhileLoading(t *testing.T) {
	guards := []routing.Guard{{}, routing.RequireRoles(users.RoleAdmin)}
	states := []session.State{
		{IsLoading: true},
		{IsLoading: true, User: &users.Identity{ID: "u1", Role: users.RoleStudent}},
	}
	for _, g := range guards {
		for _, st := range states {
			d := g.Decide(st)
			assert.Equal(t, routing.Pending, d.Outcome)
			assert.False(t, d.Redirects())
		}
	}
}

func TestGuardResolved(t *testing.T) {
	tests := []struct {
		name   string
		guard  routing.Guard
		state  session.State
		want   routing.Outcome
		target string
	}{
		{"logged out", routing.Guard{}, session.State{}, routing.RedirectLogin, routes.Login},
		{"any role", routing.Guard{}, loggedIn(users.RoleStudent), routing.Allow, ""},
		{"unknown role without allow list", routing.Guard{}, loggedIn("supervisor"), routing.Allow, ""},
		{"allowed", routing.RequireRoles(users.RoleTeacher, users.RoleAdmin), loggedIn(users.RoleAdmin), routing.Allow, ""},
		{"not allowed", routing.RequireRoles(users.RoleTeacher), loggedIn(users.RoleStudent), routing.RedirectDashboard, routes.Dashboard},
		{"logged out with allow list", routing.RequireRoles(users.RoleTeacher), session.State{}, routing.RedirectLogin, routes.Login},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.guard.Decide(tc.state)
			assert.Equal(t, tc.want, d.Outcome)
			assert.Equal(t, tc.target, d.Target)
		})
	}
}

func TestLanding(t *testing.T) {
	tests := map[users.Role]string{
		"admin":      "/dashboard/admin",
		"teacher":    "/dashboard/teacher",
		"student":    "/dashboard/student",
		"supervisor": "/login",
	}
	for role, want := range tests {
		d := routing.Landing(loggedIn(role))
		assert.Equal(t, want, d.Target, string(role))
	}

	assert.Equal(t, routing.Pending, routing.Landing(session.State{IsLoading: true}).Outcome)
	assert.Equal(t, routing.Pending, routing.Landing(session.State{IsLoading: true, User: &users.Identity{Role: users.RoleAdmin}}).Outcome)
	assert.Equal(t, routes.Login, routing.Landing(session.State{}).Target)
}

func TestMenuFor(t *testing.T) {
	admin := routing.MenuFor(users.RoleAdmin)
	require.Len(t, admin, 4)
	assert.Equal(t, []string{"Dashboard", "Users", "System Settings", "Reports"},
		[]string{admin[0].Title, admin[1].Title, admin[2].Title, admin[3].Title})
	assert.Equal(t, routes.AdminDashboard, admin[0].Href)

	teacher := routing.MenuFor(users.RoleTeacher)
	require.Len(t, teacher, 4)
	assert.Equal(t, []string{"Dashboard", "Subjects", "Assignments", "Gradebook"},
		[]string{teacher[0].Title, teacher[1].Title, teacher[2].Title, teacher[3].Title})

	student := routing.MenuFor(users.RoleStudent)
	require.Len(t, student, 2)
	assert.Equal(t, routes.StudentSubmissions, student[1].Href)

	assert.Empty(t, routing.MenuFor("supervisor"))
	assert.Empty(t, routing.MenuFor(""))
	assert.NotNil(t, routing.MenuFor(""))
}

func TestMenuForReturnsCopy(t *testing.T) {
	m := routing.MenuFor(users.RoleStudent)
	m[0].Title = "Hacked"
	assert.Equal(t, "Dashboard", routing.MenuFor(users.RoleStudent)[0].Title)
}

func TestMenuEntriesBelongToRole(t *testing.T) {
	for _, role := range users.Roles() {
		for _, e := range routing.MenuFor(role) {
			r, ok := routes.RoleOf(e.Href)
			require.True(t, ok, e.Href)
			assert.Equal(t, role, r)
		}
	}
}

func TestIsActive(t *testing.T) {
	e := routing.NavEntry{Href: routes.TeacherGradebook}
	assert.True(t, routing.IsActive(e, "/dashboard/teacher/gradebook"))
	assert.True(t, routing.IsActive(e, "/dashboard/teacher/gradebook/"))
	assert.False(t, routing.IsActive(e, "/dashboard/teacher"))
}
