// ABOUTME: Tests for the login flow and break-glass credential
// ABOUTME: Exercises remote login, local admin entry, and message derivation

package login

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markalston/metadash/internal/auth"
	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/guard"
	"github.com/markalston/metadash/internal/session"
)

func breakGlassFor(t *testing.T, username, password string) BreakGlass {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	bg, err := NewBreakGlass(username, string(hash))
	require.NoError(t, err)
	return bg
}

func unreachableClient(t *testing.T) *client.Client {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	c := client.New(url, time.Second)
	t.Cleanup(c.Close)
	return c
}

type recordingAuth struct {
	loginErr   error
	localErr   error
	loginCalls int
	localUser  *session.User
}

func (r *recordingAuth) Login(context.Context, string, string) error {
	r.loginCalls++
	return r.loginErr
}

func (r *recordingAuth) StartLocalSession(u session.User) error {
	r.localUser = &u
	return r.localErr
}

func TestSubmit_BreakGlassWithUnreachableService(t *testing.T) {
	kv := session.NewMemoryKV()
	svc := auth.NewService(unreachableClient(t), session.NewStore(kv))
	flow := NewFlow(svc, breakGlassFor(t, "admin", "correct horse"))

	res, err := flow.Submit(context.Background(), "admin", "correct horse")
	require.NoError(t, err)

	assert.Equal(t, guard.RouteDashboard, res.Next)
	assert.True(t, res.BreakGlass)
	assert.True(t, svc.IsAuthenticated())

	user := svc.CurrentUser()
	require.NotNil(t, user, "break-glass session must carry an identity")
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, session.SourceBreakGlass, svc.Source())
	assert.Equal(t, guard.RouteDashboard, guard.New(svc).Resolve("/dashboard").Target)
}

func TestSubmit_BreakGlassNeverCallsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	c := client.New(server.URL, time.Second)
	defer c.Close()

	svc := auth.NewService(c, session.NewStore(session.NewMemoryKV()))
	flow := NewFlow(svc, breakGlassFor(t, "ops@corp.test", "s3cret"))

	_, err := flow.Submit(context.Background(), "ops@corp.test", "s3cret")
	require.NoError(t, err)
	assert.Zero(t, hits.Load())
	assert.Equal(t, "ops@corp.test", svc.CurrentUser().Email)
}

func TestSubmit_BreakGlassWrongPasswordFallsThrough(t *testing.T) {
	ra := &recordingAuth{loginErr: &auth.AuthenticationError{StatusCode: 401, Detail: "Incorrect username or password"}}
	flow := NewFlow(ra, breakGlassFor(t, "admin", "right"))

	_, err := flow.Submit(context.Background(), "admin", "wrong")

	var loginErr *Error
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "Incorrect username or password", loginErr.Message)
	assert.Equal(t, 1, ra.loginCalls)
	assert.Nil(t, ra.localUser)
}

func TestSubmit_LegacyBypassLiteralIsGone(t *testing.T) {
	kv := session.NewMemoryKV()
	svc := auth.NewService(unreachableClient(t), session.NewStore(kv))
	flow := NewFlow(svc, BreakGlass{})

	_, err := flow.Submit(context.Background(), "admin", "adminpassword")

	require.Error(t, err)
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())
	assert.Zero(t, kv.Len())
}

func TestSubmit_RemoteSuccess(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"alice"}`))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.TokenResponse{AccessToken: "h." + payload + ".s", TokenType: "bearer"})
	}))
	defer server.Close()
	c := client.New(server.URL, time.Second)
	defer c.Close()

	svc := auth.NewService(c, session.NewStore(session.NewMemoryKV()))
	res, err := NewFlow(svc, BreakGlass{}).Submit(context.Background(), "alice", "pw")
	require.NoError(t, err)

	assert.Equal(t, guard.RouteDashboard, res.Next)
	assert.False(t, res.BreakGlass)
	assert.Equal(t, "alice", svc.CurrentUser().Username)
}

func TestSubmit_RequiredFields(t *testing.T) {
	tests := []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"alice", ""},
	}
	for _, tt := range tests {
		ra := &recordingAuth{}
		_, err := NewFlow(ra, BreakGlass{}).Submit(context.Background(), tt.username, tt.password)

		var loginErr *Error
		require.ErrorAs(t, err, &loginErr)
		assert.Equal(t, MsgRequired, loginErr.Message)
		assert.Zero(t, ra.loginCalls)
	}
}

func TestSubmit_LocalSessionFailure(t *testing.T) {
	ra := &recordingAuth{localErr: errors.New("disk full")}
	_, err := NewFlow(ra, breakGlassFor(t, "admin", "pw")).Submit(context.Background(), "admin", "pw")

	var loginErr *Error
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, MsgUnexpected, loginErr.Message)
	assert.Zero(t, ra.loginCalls)
}

func TestMessage(t *testing.T) {
	connErr := &client.ConnectionError{URL: "http://localhost:8000", Err: errors.New("connection refused")}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &auth.AuthenticationError{Detail: "User not found: bob"}, "User not found: bob"},
		{"unreachable", &auth.AuthenticationError{Err: connErr}, connErr.Error()},
		{"malformed", &auth.AuthenticationError{Err: errors.New("malformed token")}, MsgFailed},
		{"other", errors.New("boom"), MsgUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestBreakGlass_Disabled(t *testing.T) {
	bg, err := NewBreakGlass("", "")
	require.NoError(t, err)
	assert.False(t, bg.Enabled())
	assert.False(t, bg.Matches("", ""))

	bg, err = NewBreakGlass("admin", "")
	require.NoError(t, err)
	assert.False(t, bg.Enabled())
}

func TestBreakGlass_InvalidHash(t *testing.T) {
	_, err := NewBreakGlass("admin", "plaintext")
	assert.Error(t, err)
}

func TestBreakGlass_Matches(t *testing.T) {
	bg := breakGlassFor(t, "admin", "pw")
	assert.True(t, bg.Matches("admin", "pw"))
	assert.False(t, bg.Matches("Admin", "pw"))
	assert.False(t, bg.Matches("admin", "PW"))
	assert.False(t, bg.Matches("admin@example.com", "pw"))
}

func TestBreakGlass_UserEmail(t *testing.T) {
	assert.Equal(t, "root@example.com", BreakGlass{Username: "root"}.User().Email)
	assert.Equal(t, "ops@corp.test", BreakGlass{Username: "ops@corp.test"}.User().Email)
	assert.Equal(t, "x@y.z", BreakGlass{Username: "root", Email: "x@y.z"}.User().Email)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
