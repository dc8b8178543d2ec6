// ABOUTME: Development identity server implementing the token, metadata, and health endpoints
// ABOUTME: Stateless: it keeps no sessions and only issues and verifies signed tokens

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/markalston/metadash/internal/client"
)

// Version is reported by the health and metadata endpoints
const Version = "0.1.0"

// ApplicationName is reported by the health and metadata endpoints
const ApplicationName = "metadash"

// Route defines an endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Options configures a Server
type Options struct {
	Environment string
	Debug       bool
	BuildTime   time.Time
	CORSOrigins []string
}

// Server serves the identity endpoints
type Server struct {
	dir    *Directory
	issuer *Issuer
	opts   Options
	now    func() time.Time
}

// NewServer creates a server over dir and issuer
func NewServer(dir *Directory, issuer *Issuer, opts Options) *Server {
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	if opts.BuildTime.IsZero() {
		opts.BuildTime = buildTime()
	}
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{dir: dir, issuer: issuer, opts: opts, now: time.Now}
}

// Routes returns all routes for registration.
func (s *Server) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/api/auth/token", Handler: s.Token},
		{Method: http.MethodGet, Path: "/api/auth/metadata", Handler: Chain(s.Metadata, RequireBearer(s.issuer, s.dir))},
		{Method: http.MethodGet, Path: "/health", Handler: s.Health},
	}
}

// Handler returns the routed, logged HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, rt := range s.Routes() {
		mux.HandleFunc(rt.Method+" "+rt.Path, Chain(rt.Handler, LogRequest))
	}
	return mux
}

// ListenAndServe runs the server on addr until ctx is canceled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Identity server listening", "addr", addr, "users", s.dir.Len(), "token_ttl", s.issuer.TTL().String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Identity server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Token exchanges form credentials for a signed access token
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	acct, err := s.dir.Authenticate(username, password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		slog.Warn("Login failed: unknown user", "username", username)
		writeDetail(w, http.StatusUnauthorized, "User not found: "+username)
		return
	case err != nil:
		slog.Warn("Login failed: bad password", "username", username)
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	signed, _, err := s.issuer.Mint(acct)
	if err != nil {
		slog.Error("Token minting failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "An unexpected error occurred during authentication")
		return
	}

	slog.Info("Access token created", "username", acct.Username)
	writeJSON(w, http.StatusOK, client.TokenResponse{AccessToken: signed, TokenType: "bearer"})
}

// Metadata returns the metadata aggregate for the bearer's account
func (s *Server) Metadata(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r.Context())
	if acct == nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	now := s.now().UTC()
	fresh, exp, err := s.issuer.Mint(acct)
	if err != nil {
		slog.Error("Token minting failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to build metadata")
		return
	}

	permissions := []string{"read"}
	if acct.IsSuperuser {
		permissions = []string{"read", "write"}
	}
	id := acct.ID

	writeJSON(w, http.StatusOK, client.AppMetadata{
		User: &client.UserMetadata{
			ID:          &id,
			Username:    acct.Username,
			Email:       acct.Email,
			IsActive:    acct.IsActive,
			IsSuperuser: acct.IsSuperuser,
			LastLogin:   &client.Timestamp{Time: now},
			CreatedAt:   &client.Timestamp{Time: acct.CreatedAt},
		},
		Health: s.health(),
		Application: &client.ApplicationMetadata{
			Name:           ApplicationName,
			Version:        Version,
			Environment:    s.opts.Environment,
			BuildTimestamp: client.Timestamp{Time: s.opts.BuildTime},
			Dependencies:   moduleDependencies(),
		},
		Auth: &client.AuthMetadata{
			TokenType:   "bearer",
			AccessToken: fresh,
			ExpiresAt:   &client.Timestamp{Time: exp},
			Permissions: permissions,
		},
	})
}

// Health reports service status and host diagnostics
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

func (s *Server) health() *client.HealthResponse {
	// No database backs the directory; it is always reachable.
	return &client.HealthResponse{
		Status:          "healthy",
		ApplicationName: ApplicationName,
		Version:         Version,
		DatabaseStatus:  "connected",
		Timestamp:       client.Timestamp{Time: s.now().UTC()},
		Environment: client.EnvironmentInfo{
			Debug:       fmt.Sprintf("%t", s.opts.Debug),
			CORSOrigins: s.opts.CORSOrigins,
		},
		SystemDiagnostics: systemDiagnostics(),
	}
}

// buildTime is the executable's modification time, or now when unknown
func buildTime() time.Time {
	exe, err := os.Executable()
	if err == nil {
		if fi, err := os.Stat(exe); err == nil {
			return fi.ModTime().UTC()
		}
	}
	return time.Now().UTC()
}

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeDetail writes a {"detail": message} error body
func writeDetail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, client.ErrorResponse{Detail: strings.TrimSpace(message)})
}
