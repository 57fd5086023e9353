package devbackend

import (
	"fmt"

	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/rs/zerolog/log"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "notate123"

// SeedUsers are the accounts created by Seed, one per role
var SeedUsers = []users.User{
	{ID: "admin-1", Email: "admin@notate.test", FirstName: "Ada", LastName: "Admin", Role: users.RoleAdmin},
	{ID: "teacher-1", Email: "teacher@notate.test", FirstName: "Tom", LastName: "Teacher", Role: users.RoleTeacher},
	{ID: "student-1", Email: "student@notate.test", FirstName: "Sam", LastName: "Student", Role: users.RoleStudent},
	{ID: "student-2", Email: "student2@notate.test", FirstName: "Sue", LastName: "Student", Role: users.RoleStudent},
}

// Seed stores the seeded accounts in repo, skipping any that already exist
func Seed(repo users.UserRepo) error {
	hash, err := users.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("[devbackend Seed] failed to hash password: %w", err)
	}

	for _, u := range SeedUsers {
		if _, err := repo.GetByEmail(u.Email); err == nil {
			continue
		}
		u := u
		u.PasswordHash = hash
		if err := repo.Upsert(&u); err != nil {
			return fmt.Errorf("[devbackend Seed] failed to store %s: %w", u.Email, err)
		}
		log.Info().Str("email", u.Email).Str("role", u.Role.String()).Msg("seeded dev user")
	}
	return nil
}
