package users_test

import (
	"testing"

	"github.com/jrsteele09/notate-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/notate-dashboard/users/repofake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range users.Roles() {
		parsed, ok := users.ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
	}

	parsed, ok := users.ParseRole("supervisor")
	assert.False(t, ok)
	assert.Equal(t, users.Role("supervisor"), parsed)

	_, ok = users.ParseRole("")
	assert.False(t, ok)
}

func TestIdentityHasRole(t *testing.T) {
	id := users.Identity{ID: "u1", Role: users.RoleTeacher}
	assert.True(t, id.HasRole(users.RoleAdmin, users.RoleTeacher))
	assert.False(t, id.HasRole(users.RoleStudent))
	assert.False(t, id.HasRole())
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)

	u := &users.User{Email: "a@b.c", PasswordHash: hash}
	assert.True(t, u.CheckPassword("Secret123"))
	assert.False(t, u.CheckPassword("secret123"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&users.User{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&users.User{Email: "ada@example.com"}).DisplayName())
}

func TestFakeRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, repo.Upsert(&users.User{Email: "T@school.test", Role: users.RoleTeacher}))
	require.NoError(t, repo.Upsert(&users.User{Email: "s@school.test", Role: users.RoleStudent}))

	u, err := repo.GetByEmail("t@school.test")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	byID, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	assert.Same(t, u, byID)

	students, err := repo.List(users.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 1)

	all, err := repo.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.GetByEmail("nobody@school.test")
	assert.Error(t, err)
}
