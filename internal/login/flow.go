// ABOUTME: Login flow turning submitted credentials into a session or a message
// ABOUTME: Checks the break-glass credential before contacting the identity service

package login

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/markalston/metadash/internal/auth"
	"github.com/markalston/metadash/internal/guard"
	"github.com/markalston/metadash/internal/session"
)

// User-visible messages
const (
	MsgRequired   = "Username and password are required"
	MsgFailed     = "Login failed. Please check your credentials."
	MsgUnexpected = "An unexpected error occurred during login."
)

// Authenticator is the subset of the auth service the flow drives
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
	StartLocalSession(user session.User) error
}

// Result describes a successful submission
type Result struct {
	// Next is the route to navigate to
	Next       string
	BreakGlass bool
}

// Error carries the message to show beside the form
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Flow handles login form submissions
type Flow struct {
	auth       Authenticator
	breakGlass BreakGlass
}

// NewFlow creates a login flow. A zero BreakGlass disables break-glass entry.
func NewFlow(a Authenticator, bg BreakGlass) *Flow {
	return &Flow{auth: a, breakGlass: bg}
}

// Submit attempts a login. On failure it returns *Error and no session
// state has changed.
func (f *Flow) Submit(ctx context.Context, username, password string) (Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Result{}, &Error{Message: MsgRequired}
	}

	if f.breakGlass.Matches(username, password) {
		if err := f.auth.StartLocalSession(f.breakGlass.User()); err != nil {
			slog.Error("Break-glass session could not be stored", "error", err)
			return Result{}, &Error{Message: MsgUnexpected, Err: err}
		}
		return Result{Next: guard.RouteDashboard, BreakGlass: true}, nil
	}

	if err := f.auth.Login(ctx, username, password); err != nil {
		return Result{}, &Error{Message: Message(err), Err: err}
	}
	return Result{Next: guard.RouteDashboard}, nil
}

// Message derives the text shown for a failed login: the service's detail
// when present, else the connection failure, else a generic message.
func Message(err error) string {
	var authErr *auth.AuthenticationError
	if !errors.As(err, &authErr) {
		return MsgUnexpected
	}
	if authErr.Detail != "" {
		return authErr.Detail
	}
	if authErr.Unreachable() {
		return authErr.Err.Error()
	}
	return MsgFailed
}
