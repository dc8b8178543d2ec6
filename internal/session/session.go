// ABOUTME: Session store holding the credential token and derived user
// ABOUTME: Reads collapse persisted keys into a LoggedOut or Authenticated session

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Persisted keys
const (
	KeyToken           = "token"
	KeyUser            = "user"
	KeyIsAuthenticated = "isAuthenticated"
	KeyUserRole        = "userRole"
	KeySource          = "source"
)

// Role values mirrored into the legacy userRole key
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the identity derived from a token's claims
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Role returns the legacy role name for the user
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Source records how a session was established
type Source string

const (
	SourceRemote     Source = "remote"
	SourceBreakGlass Source = "break-glass"
)

// State is the authoritative authentication state of a session
type State int

const (
	LoggedOut State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "logged-out"
}

// Session is the persisted tuple as read from the store. Absent fields
// are zero: an empty Token, a nil User.
type Session struct {
	Token               string
	User                *User
	LegacyAuthenticated bool
	UserRole            string
	Source              Source
}

// State reports Authenticated only when both token and user are present.
// The legacy flag and role never grant authentication.
func (s Session) State() State {
	if s.Token != "" && s.User != nil {
		return Authenticated
	}
	return LoggedOut
}

// Degraded reports a store holding legacy authentication keys without
// the token and user that justify them.
func (s Session) Degraded() bool {
	if s.State() == Authenticated {
		return false
	}
	return s.LegacyAuthenticated || s.UserRole != ""
}

// Empty reports whether no session key is present
func (s Session) Empty() bool {
	return s.Token == "" && s.User == nil && !s.LegacyAuthenticated && s.UserRole == "" && s.Source == ""
}

// Patch names the fields to merge into the store. Nil fields are left
// untouched.
type Patch struct {
	Token               *string
	User                *User
	LegacyAuthenticated *bool
	UserRole            *string
	Source              *Source
}

// AuthenticatedPatch builds the full write for an authenticated session,
// including the legacy mirror keys.
func AuthenticatedPatch(user User, token string, source Source) Patch {
	flag := true
	role := user.Role()
	return Patch{
		Token:               &token,
		User:                &user,
		LegacyAuthenticated: &flag,
		UserRole:            &role,
		Source:              &source,
	}
}

// Store reads and writes the session over a KV
type Store struct {
	kv KV
}

// NewStore creates a session store over kv
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Write merges the patch into the store in a single KV update
func (s *Store) Write(p Patch) error {
	set := map[string]string{}
	var del []string

	if p.Token != nil {
		set[KeyToken] = *p.Token
	}
	if p.User != nil {
		data, err := json.Marshal(p.User)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		set[KeyUser] = string(data)
	}
	if p.LegacyAuthenticated != nil {
		if *p.LegacyAuthenticated {
			set[KeyIsAuthenticated] = "true"
		} else {
			del = append(del, KeyIsAuthenticated)
		}
	}
	if p.UserRole != nil {
		set[KeyUserRole] = *p.UserRole
	}
	if p.Source != nil {
		set[KeySource] = string(*p.Source)
	}

	if len(set) > 0 {
		if err := s.kv.Set(set); err != nil {
			return fmt.Errorf("writing session: %w", err)
		}
	}
	if len(del) > 0 {
		if err := s.kv.Delete(del...); err != nil {
			return fmt.Errorf("writing session: %w", err)
		}
	}
	return nil
}

// Read returns the persisted session from a single snapshot of the KV.
// A user value that fails to parse is reported as absent.
func (s *Store) Read() (Session, error) {
	values, err := s.kv.All()
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	sess := Session{
		Token:               values[KeyToken],
		LegacyAuthenticated: values[KeyIsAuthenticated] == "true",
		UserRole:            values[KeyUserRole],
		Source:              Source(values[KeySource]),
	}
	if raw, ok := values[KeyUser]; ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			slog.Warn("Ignoring unparsable stored user", "error", err)
		} else {
			sess.User = &u
		}
	}
	return sess, nil
}

// Clear removes every session key
func (s *Store) Clear() error {
	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
