// ABOUTME: Tests for route guard decisions
// ABOUTME: Covers locked and unlocked sessions across every route

package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markalston/metadash/internal/auth"
	"github.com/markalston/metadash/internal/session"
)

type staticChecker bool

func (c staticChecker) IsAuthenticated() bool { return bool(c) }

type countingChecker struct {
	calls int
	auth  bool
}

func (c *countingChecker) IsAuthenticated() bool {
	c.calls++
	return c.auth
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		authed bool
		path   string
		target string
		state  State
	}{
		{"dashboard locked", false, "/dashboard", RouteLogin, Locked},
		{"dashboard unlocked", true, "/dashboard", RouteDashboard, Unlocked},
		{"root locked", false, "/", RouteLogin, Locked},
		{"root unlocked", true, "/", RouteDashboard, Unlocked},
		{"login locked", false, "/login", RouteLogin, Locked},
		{"login unlocked", true, "/login", RouteLogin, Unlocked},
		{"unknown locked", false, "/settings", RouteLogin, Locked},
		{"unknown unlocked", true, "/settings", RouteLogin, Unlocked},
		{"empty path", true, "", RouteDashboard, Unlocked},
		{"trailing slash", true, "/dashboard/", RouteDashboard, Unlocked},
		{"missing slash", true, "dashboard", RouteDashboard, Unlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(staticChecker(tt.authed)).Resolve(tt.path)
			assert.Equal(t, tt.target, d.Target)
			assert.Equal(t, tt.state, d.State)
		})
	}
}

func TestDecision_Flags(t *testing.T) {
	denied := New(staticChecker(false)).Resolve("/dashboard")
	assert.True(t, denied.Denied())
	assert.True(t, denied.Redirected())

	allowed := New(staticChecker(true)).Resolve("/dashboard")
	assert.False(t, allowed.Denied())
	assert.False(t, allowed.Redirected())

	root := New(staticChecker(true)).Resolve("/")
	assert.False(t, root.Denied())
	assert.True(t, root.Redirected())
}

func TestResolve_EvaluatesEveryTime(t *testing.T) {
	c := &countingChecker{}
	g := New(c)

	assert.Equal(t, RouteLogin, g.Resolve("/dashboard").Target)
	c.auth = true
	assert.Equal(t, RouteDashboard, g.Resolve("/dashboard").Target)
	assert.Equal(t, 2, c.calls)
}

func TestProtected(t *testing.T) {
	assert.True(t, Protected("/dashboard"))
	assert.False(t, Protected("/login"))
	assert.False(t, Protected("/"))
}

func TestResolve_WithAuthService(t *testing.T) {
	kv := session.NewMemoryKV()
	svc := auth.NewService(nil, session.NewStore(kv))
	g := New(svc)

	assert.Equal(t, Locked, g.Resolve("/dashboard").State, "empty store denies entry")

	assert.NoError(t, svc.StartLocalSession(session.User{Username: "ops", IsAdmin: true}))
	assert.Equal(t, RouteDashboard, g.Resolve("/dashboard").Target, "token present permits entry")

	assert.NoError(t, kv.Set(map[string]string{session.KeyToken: ""}))
	assert.Equal(t, RouteLogin, g.Resolve("/dashboard").Target)
}

func TestResolve_LegacyFlagDoesNotUnlock(t *testing.T) {
	kv := session.NewMemoryKV()
	assert.NoError(t, kv.Set(map[string]string{session.KeyIsAuthenticated: "true", session.KeyUserRole: "admin"}))
	g := New(auth.NewService(nil, session.NewStore(kv)))

	assert.Equal(t, RouteLogin, g.Resolve("/").Target)
	assert.Equal(t, RouteLogin, g.Resolve("/dashboard").Target)
}
