package jwt

import (
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/users"
)

const (
	ClaimRole = "role"
	ClaimID   = "id"
)

// DecodeError is returned for any token that cannot be turned into an
// Identity. It matches apperrors.ErrInvalidToken.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode token: %s: %v", e.Reason, e.Err)
	}
	return "decode token: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperrors.ErrInvalidToken}
	}
	return []error{apperrors.ErrInvalidToken, e.Err}
}

// Decoder parses the payload segment of a token without verifying it
type Decoder struct {
	parser *jwtlib.Parser
}

func NewDecoder() *Decoder {
	return &Decoder{parser: jwtlib.NewParser()}
}

// Decode returns the identity carried by raw. The role is returned verbatim,
// recognised or not; deciding what an unknown role means is up to the caller.
func (d *Decoder) Decode(raw string) (users.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return users.Identity{}, &DecodeError{Reason: "empty token"}
	}
	if n := strings.Count(raw, "."); n != 2 {
		return users.Identity{}, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", n+1)}
	}

	tok, _, err := d.parser.ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return users.Identity{}, &DecodeError{Reason: "malformed token", Err: err}
	}

	claims, ok := tok.Claims.(jwtlib.MapClaims)
	if !ok {
		return users.Identity{}, &DecodeError{Reason: "error extracting claims"}
	}

	role, ok := claims[ClaimRole].(string)
	if !ok || role == "" {
		return users.Identity{}, &DecodeError{Reason: "missing role claim", Err: apperrors.ErrMissingClaim}
	}

	id, _ := claims[ClaimID].(string)
	if id == "" {
		id, _ = claims.GetSubject()
	}
	if id == "" {
		return users.Identity{}, &DecodeError{Reason: "missing id claim", Err: apperrors.ErrMissingClaim}
	}

	identity := users.Identity{ID: id, Role: users.Role(role)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, nil
}

var defaultDecoder = NewDecoder()

// Decode uses a package level Decoder
func Decode(raw string) (users.Identity, error) {
	return defaultDecoder.Decode(raw)
}
