// ABOUTME: Session context wiring the client, store, auth service, guard, and login flow
// ABOUTME: Open restores any persisted session once; Close releases network resources

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markalston/metadash/internal/auth"
	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/config"
	"github.com/markalston/metadash/internal/guard"
	"github.com/markalston/metadash/internal/login"
	"github.com/markalston/metadash/internal/session"
)

// App is the per-process session context shared by commands and the TUI
type App struct {
	Config *config.Config
	Client *client.Client
	Store  *session.Store
	Auth   *auth.Service
	Guard  *guard.Guard
	Login  *login.Flow
}

// Open builds the session context from cfg and restores the persisted
// session. It is the only place RestoreSession runs.
func Open(cfg *config.Config) (*App, error) {
	return OpenWithKV(cfg, session.NewFileKV(cfg.ConfigDir))
}

// OpenWithKV is Open over a caller-supplied KV
func OpenWithKV(cfg *config.Config, kv session.KV) (*App, error) {
	bg, err := login.NewBreakGlass(cfg.BreakGlassUser, cfg.BreakGlassHash)
	if err != nil {
		return nil, err
	}
	bg.Email = cfg.BreakGlassEmail
	if cfg.BreakGlassConfigured() {
		slog.Info("Break-glass credential configured", "username", bg.Username)
	}

	c := client.New(cfg.APIURL, cfg.HTTPTimeout)
	store := session.NewStore(kv)
	svc := auth.NewService(c, store)

	if err := svc.RestoreSession(); err != nil {
		c.Close()
		return nil, fmt.Errorf("opening session: %w", err)
	}

	return &App{
		Config: cfg,
		Client: c,
		Store:  store,
		Auth:   svc,
		Guard:  guard.New(svc),
		Login:  login.NewFlow(svc, bg),
	}, nil
}

// Metadata fetches the dashboard aggregate for the current session
func (a *App) Metadata(ctx context.Context) (*client.AppMetadata, error) {
	return a.Client.Metadata(ctx, a.Auth.Token())
}

// Close releases idle connections
func (a *App) Close() {
	a.Client.Close()
}
