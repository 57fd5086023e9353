package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/notate-dashboard/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator mints session tokens carrying the id and role claims
type Creator struct {
	signer Signer
	expiry time.Duration
}

// NewCreator creates a new JWT creator. A zero expiry omits the exp claim.
func NewCreator(signer Signer, expiry time.Duration) *Creator {
	return &Creator{
		signer: signer,
		expiry: expiry,
	}
}

// CreateAccessToken creates the token returned by the login endpoint
func (c *Creator) CreateAccessToken(userID string, role users.Role) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		ClaimID:   userID,       // Notate user id
		ClaimRole: string(role), // student, teacher or admin
		"sub":     userID,       // Subject, mirrors id for standard tooling
		"iat":     now.Unix(),   // Issued At
		"jti":     uuid.NewString(),
	}
	if c.expiry > 0 {
		claims["exp"] = now.Add(c.expiry).Unix()
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}
