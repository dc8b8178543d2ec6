// ABOUTME: Tests for the session context lifecycle
// ABOUTME: Verifies restore on open, break-glass wiring, and metadata with the session token

package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/config"
	"github.com/markalston/metadash/internal/guard"
	"github.com/markalston/metadash/internal/session"
)

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIURL:      apiURL,
		HTTPTimeout: 2 * time.Second,
		ConfigDir:   t.TempDir(),
		DevTokenTTL: time.Minute,
		LogFormat:   "text",
	}
}

func identityServer(t *testing.T) *httptest.Server {
	t.Helper()
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"alice"}`))
	tok := "h." + payload + ".s"

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.TokenResponse{AccessToken: tok, TokenType: "bearer"})
	})
	mux.HandleFunc("GET /api/auth/metadata", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+tok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(client.AppMetadata{User: &client.UserMetadata{Username: "alice"}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOpen_RestoresAcrossRestarts(t *testing.T) {
	server := identityServer(t)
	cfg := testConfig(t, server.URL)

	first, err := Open(cfg)
	require.NoError(t, err)
	_, err = first.Login.Submit(context.Background(), "alice", "pw")
	require.NoError(t, err)
	first.Close()

	second, err := Open(cfg)
	require.NoError(t, err)
	defer second.Close()

	require.NotNil(t, second.Auth.CurrentUser())
	assert.Equal(t, "alice", second.Auth.CurrentUser().Username)
	assert.Equal(t, guard.RouteDashboard, second.Guard.Resolve("/").Target)

	md, err := second.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", md.User.Username)
}

func TestOpen_BreakGlassFromConfig(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.BreakGlassUser = "ops"
	cfg.BreakGlassHash = string(hash)
	cfg.BreakGlassEmail = "ops@corp.test"

	a, err := OpenWithKV(cfg, session.NewMemoryKV())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Login.Submit(context.Background(), "ops", "pw")
	require.NoError(t, err)
	assert.True(t, res.BreakGlass)
	assert.Equal(t, "ops@corp.test", a.Auth.CurrentUser().Email)
}

func TestOpen_InvalidBreakGlassHash(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	cfg.BreakGlassUser = "ops"
	cfg.BreakGlassHash = "not-a-hash"

	_, err := OpenWithKV(cfg, session.NewMemoryKV())
	assert.Error(t, err)
}

func TestMetadata_WithoutSession(t *testing.T) {
	a, err := OpenWithKV(testConfig(t, "http://localhost:8000"), session.NewMemoryKV())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Metadata(context.Background())
	var fetchErr *client.MetadataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, client.RequestSetup, fetchErr.Kind)
}
