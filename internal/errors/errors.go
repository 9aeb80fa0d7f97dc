package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authentication service
var (
	// SSO provider errors
	ErrProviderUnreachable = errors.New("sso provider unreachable")
	ErrUnexpectedResponse  = errors.New("unexpected sso provider response")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Authentication errors
	ErrUserNotFound = errors.New("user not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
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
