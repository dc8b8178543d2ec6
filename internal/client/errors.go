// ABOUTME: Error types returned by the identity and metadata client
// ABOUTME: MetadataFetchError classifies failures the way the dashboard reports them

package client

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a protected call has no bearer token
var ErrMissingToken = errors.New("no authentication token found")

// APIError is a non-2xx response from the identity service
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity service returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("identity service returned status %d", e.StatusCode)
}

// ConnectionError means the request was sent but no response arrived
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to identity service at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FetchErrorKind classifies a failed metadata fetch
type FetchErrorKind int

const (
	// ServerError: the service answered with a non-2xx status
	ServerError FetchErrorKind = iota
	// NoResponse: the request was sent but nothing came back
	NoResponse
	// RequestSetup: the request could not be built
	RequestSetup
	// InvalidResponse: a 2xx body that could not be decoded
	InvalidResponse
)

func (k FetchErrorKind) String() string {
	switch k {
	case ServerError:
		return "server-error"
	case NoResponse:
		return "no-response"
	case RequestSetup:
		return "request-setup"
	case InvalidResponse:
		return "invalid-response"
	default:
		return "unknown"
	}
}

// MetadataFetchError is returned by Metadata when the fetch fails after a
// session exists. The session itself is left alone.
type MetadataFetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *MetadataFetchError) Error() string {
	switch e.Kind {
	case ServerError:
		return fmt.Sprintf("Server Error: %d - %s", e.StatusCode, e.Body)
	case NoResponse:
		return "No response received from server"
	case RequestSetup:
		return fmt.Sprintf("Request Setup Error: %v", e.Err)
	default:
		return fmt.Sprintf("Invalid Response: %v", e.Err)
	}
}

func (e *MetadataFetchError) Unwrap() error { return e.Err }
