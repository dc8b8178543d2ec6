// ABOUTME: Auth service orchestrating token acquisition, decoding, and persistence
// ABOUTME: Keeps an in-memory mirror of the stored token and user

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/session"
	"github.com/markalston/metadash/internal/token"
)

// TokenRequester exchanges credentials for an access token
type TokenRequester interface {
	RequestToken(ctx context.Context, username, password string) (*client.TokenResponse, error)
}

// Service manages the client-side session. The store is the source of
// truth; the mirror is hydrated from it once by RestoreSession and kept in
// step by Login, Logout, and StartLocalSession.
type Service struct {
	requester TokenRequester
	store     *session.Store
	now       func() time.Time

	mu     sync.RWMutex
	token  string
	user   *session.User
	source session.Source
}

// NewService creates an auth service over the given requester and store
func NewService(requester TokenRequester, store *session.Store) *Service {
	return &Service{
		requester: requester,
		store:     store,
		now:       time.Now,
	}
}

// UserFromClaims derives the user identity from decoded claims
func UserFromClaims(claims *token.Claims) session.User {
	email := claims.Email
	if email == "" {
		email = claims.Subject + "@example.com"
	}
	return session.User{
		Username: claims.Subject,
		Email:    email,
		IsAdmin:  claims.IsSuperuser,
	}
}

// Login submits credentials to the identity service and, on success,
// persists the session in a single store write. Any failure returns
// *AuthenticationError and leaves the existing session untouched.
func (s *Service) Login(ctx context.Context, username, password string) error {
	resp, err := s.requester.RequestToken(ctx, username, password)
	if err != nil {
		slog.Warn("Login rejected", "username", username, "error", err)
		return newAuthenticationError(err)
	}

	claims, err := token.Decode(resp.AccessToken)
	if err != nil {
		slog.Warn("Identity service returned malformed token", "username", username, "error", err)
		return &AuthenticationError{Err: err}
	}
	if claims.Subject == "" {
		return &AuthenticationError{Err: fmt.Errorf("%w: missing sub claim", token.ErrMalformedToken)}
	}

	user := UserFromClaims(claims)
	if err := s.store.Write(session.AuthenticatedPatch(user, resp.AccessToken, session.SourceRemote)); err != nil {
		return &AuthenticationError{Err: err}
	}

	s.setMirror(resp.AccessToken, &user, session.SourceRemote)
	slog.Info("Login succeeded", "username", user.Username, "admin", user.IsAdmin, "token_prefix", tokenPrefix(resp.AccessToken))
	return nil
}

// StartLocalSession establishes an admin session without contacting the
// identity service. The token is unsigned and only meaningful locally.
func (s *Service) StartLocalSession(user session.User) error {
	if user.Username == "" {
		return fmt.Errorf("local session requires a username")
	}

	now := s.now()
	raw, err := token.Unsigned(&token.Claims{
		Subject:     user.Username,
		IssuedAt:    &now,
		Email:       user.Email,
		IsSuperuser: user.IsAdmin,
	})
	if err != nil {
		return fmt.Errorf("minting local token: %w", err)
	}

	if err := s.store.Write(session.AuthenticatedPatch(user, raw, session.SourceBreakGlass)); err != nil {
		return err
	}

	s.setMirror(raw, &user, session.SourceBreakGlass)
	slog.Warn("Break-glass session started", "username", user.Username)
	return nil
}

// Logout clears the store and the mirror. Safe to call in any state.
func (s *Service) Logout() error {
	s.setMirror("", nil, "")
	if err := s.store.Clear(); err != nil {
		return err
	}
	slog.Info("Logged out")
	return nil
}

// IsAuthenticated reads the store and reports whether it holds an
// authenticated session
func (s *Service) IsAuthenticated() bool {
	sess, err := s.store.Read()
	if err != nil {
		slog.Error("Failed to read session", "error", err)
		return false
	}
	return sess.State() == session.Authenticated
}

// CurrentUser returns the mirrored user, or nil when logged out
func (s *Service) CurrentUser() *session.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the mirrored raw token for bearer calls
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Source returns how the mirrored session was established
func (s *Service) Source() session.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Session returns the persisted session as currently stored
func (s *Service) Session() (session.Session, error) {
	return s.store.Read()
}

// RestoreSession hydrates the mirror from the store. It runs once at
// process start; a store without both token and user stays logged out.
func (s *Service) RestoreSession() error {
	sess, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	if sess.State() != session.Authenticated {
		switch {
		case sess.Empty():
			slog.Debug("No stored session")
		case sess.Degraded():
			slog.Warn("Stored session has legacy flags but no token or user; staying logged out",
				"legacy_authenticated", sess.LegacyAuthenticated, "role", sess.UserRole)
		default:
			slog.Warn("Stored session is incomplete; staying logged out",
				"has_token", sess.Token != "", "has_user", sess.User != nil)
		}
		s.setMirror("", nil, "")
		return nil
	}

	source := sess.Source
	if source == "" {
		source = session.SourceRemote
	}
	s.setMirror(sess.Token, sess.User, source)
	slog.Debug("Session restored", "username", sess.User.Username, "source", source)
	return nil
}

func (s *Service) setMirror(tok string, user *session.User, source session.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.user = user
	s.source = source
}

func tokenPrefix(tok string) string {
	if len(tok) <= 10 {
		return "..."
	}
	return tok[:10] + "..."
}
