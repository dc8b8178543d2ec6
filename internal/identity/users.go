// ABOUTME: In-memory user directory for the development identity server
// ABOUTME: Parses name:password[:admin][:email] entries and stores bcrypt hashes

package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrUserNotFound is returned when no user matches a username or email
var ErrUserNotFound = errors.New("user not found")

// ErrBadPassword is returned when the password does not match
var ErrBadPassword = errors.New("incorrect password")

// Account is a user known to the development server
type Account struct {
	ID           int
	Username     string
	Email        string
	PasswordHash []byte
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
}

// Directory looks up accounts by username or email
type Directory struct {
	accounts []*Account
}

// ParseAccounts builds a directory from entries of the form
// name:password[:admin][:email]. Hashing uses cost, or bcrypt.DefaultCost
// when cost is zero.
func ParseAccounts(entries []string, cost int) (*Directory, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{}
	seen := map[string]bool{}
	now := time.Now().UTC()

	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("user entry %d: expected name:password[:admin][:email]", i+1)
		}

		acct := &Account{
			ID:        len(d.accounts) + 1,
			Username:  parts[0],
			Email:     parts[0] + "@example.com",
			IsActive:  true,
			CreatedAt: now,
		}
		for _, extra := range parts[2:] {
			switch {
			case extra == "admin":
				acct.IsSuperuser = true
			case strings.Contains(extra, "@"):
				acct.Email = extra
			case extra == "":
			default:
				return nil, fmt.Errorf("user entry %d: unknown field %q", i+1, extra)
			}
		}
		if seen[acct.Username] || seen[acct.Email] {
			return nil, fmt.Errorf("user entry %d: duplicate user %q", i+1, acct.Username)
		}
		seen[acct.Username] = true
		seen[acct.Email] = true

		hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), cost)
		if err != nil {
			return nil, fmt.Errorf("user entry %d: %w", i+1, err)
		}
		acct.PasswordHash = hash
		d.accounts = append(d.accounts, acct)
	}
	return d, nil
}

// Len returns the number of accounts
func (d *Directory) Len() int {
	return len(d.accounts)
}

// Lookup finds an account by username, then by email
func (d *Directory) Lookup(name string) (*Account, error) {
	for _, a := range d.accounts {
		if a.Username == name {
			return a, nil
		}
	}
	for _, a := range d.accounts {
		if a.Email == name {
			return a, nil
		}
	}
	return nil, ErrUserNotFound
}

// Authenticate checks the password for the named account
func (d *Directory) Authenticate(name, password string) (*Account, error) {
	a, err := d.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return a, nil
}
