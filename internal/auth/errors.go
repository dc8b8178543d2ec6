// ABOUTME: Authentication error returned by the auth service
// ABOUTME: Carries the upstream detail message when the service sent one

package auth

import (
	"errors"

	"github.com/markalston/metadash/internal/client"
)

// AuthenticationError means credentials were rejected or the identity
// service could not be reached. No session state changed.
type AuthenticationError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Detail != "" {
		return "authentication failed: " + e.Detail
	}
	if e.Err != nil {
		return "authentication failed: " + e.Err.Error()
	}
	return "authentication failed"
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Unreachable reports whether the identity service never answered
func (e *AuthenticationError) Unreachable() bool {
	var connErr *client.ConnectionError
	return errors.As(e.Err, &connErr)
}

func newAuthenticationError(err error) *AuthenticationError {
	authErr := &AuthenticationError{Err: err}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		authErr.StatusCode = apiErr.StatusCode
		authErr.Detail = apiErr.Detail
	}
	return authErr
}
