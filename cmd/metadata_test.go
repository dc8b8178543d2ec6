// ABOUTME: Tests for the metadata and health commands
// ABOUTME: Verifies session gating, parallel health fetch, and output formats

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/session"
)

func TestMetadataCommand_NotLoggedIn(t *testing.T) {
	setupEnv(t)
	apiURL = "http://127.0.0.1:1"

	var buf bytes.Buffer
	exitCode := runMetadata(context.Background(), &buf)

	if exitCode != exitDenied {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "metadash login") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestMetadataCommand_Human(t *testing.T) {
	setupEnv(t)
	server := devServer(t)
	apiURL = server.URL

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "alice", "wonderland"); exitCode != exitOK {
		t.Fatalf("login failed: %s", buf.String())
	}

	buf.Reset()
	exitCode := runMetadata(context.Background(), &buf)

	if exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, want := range []string{"alice <alice@corp.io> [Admin]", "Health:      healthy", "Permissions: read, write"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output: %s", want, buf.String())
		}
	}
}

func TestMetadataCommand_WithHealthJSON(t *testing.T) {
	setupEnv(t)
	server := devServer(t)
	apiURL = server.URL

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "bob", "builder"); exitCode != exitOK {
		t.Fatalf("login failed: %s", buf.String())
	}

	buf.Reset()
	jsonOutput = true
	withHealth = true
	if exitCode := runMetadata(context.Background(), &buf); exitCode != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var out metadataOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Metadata == nil || out.Metadata.User == nil || out.Metadata.User.Username != "bob" {
		t.Errorf("expected bob's metadata, got %+v", out.Metadata)
	}
	if !out.Health.Healthy() {
		t.Errorf("expected health block, got %+v", out.Health)
	}
}

func TestMetadataCommand_BreakGlassTokenRejected(t *testing.T) {
	setupEnv(t)
	server := devServer(t)
	apiURL = server.URL

	// A local break-glass session carries an unsigned token the service refuses
	a, err := openApp()
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	if err := a.Auth.StartLocalSession(session.User{Username: "admin", IsAdmin: true}); err != nil {
		t.Fatalf("StartLocalSession: %v", err)
	}
	a.Close()

	var buf bytes.Buffer
	exitCode := runMetadata(context.Background(), &buf)

	if exitCode != exitDenied {
		t.Errorf("expected exit code 1, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Server Error: 401") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestFormatMetadataHuman_Empty(t *testing.T) {
	for _, meta := range []*client.AppMetadata{nil, {}} {
		if got := formatMetadataHuman(meta); got != "Unable to load metadata. Please try again later." {
			t.Errorf("unexpected output: %q", got)
		}
	}
}

func TestHealthCommand_Success(t *testing.T) {
	setupEnv(t)
	server := devServer(t)
	apiURL = server.URL

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Status:   healthy") {
		t.Errorf("expected healthy status in output: %s", buf.String())
	}
}

func TestHealthCommand_Unhealthy(t *testing.T) {
	setupEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.HealthResponse{Status: "degraded"})
	}))
	defer server.Close()
	apiURL = server.URL

	var buf bytes.Buffer
	if exitCode := runHealth(context.Background(), &buf); exitCode != exitError {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestHealthCommand_ConnectionError(t *testing.T) {
	setupEnv(t)
	apiURL = "http://127.0.0.1:1"

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != exitError {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("expected error in output: %s", buf.String())
	}
}

func TestFormatHealthJSON(t *testing.T) {
	output := formatHealthJSON("http://localhost:8000", &client.HealthResponse{Status: "healthy"})

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["service"] != "http://localhost:8000" {
		t.Errorf("expected service URL in JSON, got %v", parsed["service"])
	}
}
