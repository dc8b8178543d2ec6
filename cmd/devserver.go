// ABOUTME: Devserver command running the development identity service
// ABOUTME: Serves token, metadata, and health endpoints for local testing

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/config"
	"github.com/markalston/metadash/internal/identity"
	"github.com/markalston/metadash/internal/logger"
)

var devAddr string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the development identity service",
	Long: `Run a local identity service implementing the token, metadata, and health
endpoints.

Users come from METADASH_DEV_USERS, a comma separated list of
name:password[:admin][:email] entries. Tokens are signed with
METADASH_DEV_SECRET, or a random per-process secret when unset.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitOnCode(runDevServer(ctx, os.Stdout))
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devAddr, "addr", "", "Listen address (overrides METADASH_DEV_ADDR)")
	rootCmd.AddCommand(devserverCmd)
}

// runDevServer serves until ctx is canceled and returns exit code
func runDevServer(ctx context.Context, w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return printError(w, err)
	}
	logger.Init(w, cfg.LogLevel, cfg.LogFormat)

	server, err := newDevServer(cfg)
	if err != nil {
		return printError(w, err)
	}

	addr := cfg.DevAddr
	if devAddr != "" {
		addr = devAddr
	}
	if err := server.ListenAndServe(ctx, addr); err != nil {
		return printError(w, err)
	}
	return exitOK
}

// newDevServer builds the identity server from configuration
func newDevServer(cfg *config.Config) (*identity.Server, error) {
	dir, err := identity.ParseAccounts(cfg.DevUsers, 0)
	if err != nil {
		return nil, fmt.Errorf("parsing dev users: %w", err)
	}
	if dir.Len() == 0 {
		return nil, errors.New("no dev users configured; set METADASH_DEV_USERS (e.g. alice:wonderland:admin)")
	}

	secret := []byte(cfg.DevSecret)
	if len(secret) == 0 {
		secret, err = identity.RandomSecret()
		if err != nil {
			return nil, err
		}
		slog.Warn("METADASH_DEV_SECRET not set; tokens will not survive a restart")
	}

	issuer, err := identity.NewIssuer(secret, cfg.DevTokenTTL)
	if err != nil {
		return nil, err
	}

	return identity.NewServer(dir, issuer, identity.Options{
		Environment: cfg.Environment,
		Debug:       !cfg.IsProduction(),
	}), nil
}
