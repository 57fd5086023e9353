package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard
var (
	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("missing claim")

	// Token store errors
	ErrStoreUnavailable = errors.New("token store unavailable")
	ErrUnknownBackend   = errors.New("unknown token store backend")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Backend errors
	ErrBackend = errors.New("backend error")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
