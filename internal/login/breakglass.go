// ABOUTME: Break-glass credential for offline admin entry
// ABOUTME: Compares a configured username and bcrypt hash without any network call

package login

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/markalston/metadash/internal/session"
)

// BreakGlass is a locally configured admin credential. It is disabled
// unless both Username and Hash are set.
type BreakGlass struct {
	Username string
	Hash     []byte
	Email    string
}

// NewBreakGlass validates the configured hash. Empty inputs yield a
// disabled credential.
func NewBreakGlass(username, hash string) (BreakGlass, error) {
	if username == "" || hash == "" {
		return BreakGlass{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return BreakGlass{}, fmt.Errorf("invalid break-glass hash: %w", err)
	}
	return BreakGlass{Username: username, Hash: []byte(hash)}, nil
}

// Enabled reports whether the credential is configured
func (b BreakGlass) Enabled() bool {
	return b.Username != "" && len(b.Hash) > 0
}

// Matches reports whether the submitted credential is the break-glass one
func (b BreakGlass) Matches(username, password string) bool {
	if !b.Enabled() {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(b.Username)) != 1 {
		return false
	}
	err := bcrypt.CompareHashAndPassword(b.Hash, []byte(password))
	return err == nil
}

// User is the synthetic admin identity for a break-glass session
func (b BreakGlass) User() session.User {
	email := b.Email
	if email == "" {
		if strings.Contains(b.Username, "@") {
			email = b.Username
		} else {
			email = b.Username + "@example.com"
		}
	}
	return session.User{Username: b.Username, Email: email, IsAdmin: true}
}

// HashPassword produces a bcrypt hash suitable for METADASH_BREAKGLASS_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
