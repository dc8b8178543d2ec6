// ABOUTME: Shared fixtures for command tests
// ABOUTME: Isolates config per test and runs the development identity server

package cmd

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markalston/metadash/internal/config"
)

// setupEnv points configuration at a fresh directory and returns it
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("METADASH_CONFIG_DIR", dir)
	t.Setenv("METADASH_HTTP_TIMEOUT", "2s")
	t.Setenv("METADASH_LOG_LEVEL", "error")
	t.Setenv("METADASH_BREAKGLASS_USER", "")
	t.Setenv("METADASH_BREAKGLASS_HASH", "")

	t.Cleanup(func() {
		apiURL = ""
		configDir = ""
		jsonOutput = false
		withHealth = false
	})
	return dir
}

// devServer starts the identity server with alice (admin) and bob
func devServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		DevUsers:    []string{"alice:wonderland:admin:alice@corp.io", "bob:builder"},
		DevSecret:   "test-secret",
		DevTokenTTL: 10 * time.Minute,
	}
	srv, err := newDevServer(cfg)
	if err != nil {
		t.Fatalf("newDevServer: %v", err)
	}
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)
	return server
}
