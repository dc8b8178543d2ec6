// ABOUTME: Dashboard command opening the full-screen terminal UI
// ABOUTME: Redirects logging to the debug log while the UI owns the terminal

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/app"
	"github.com/markalston/metadash/internal/logger"
	"github.com/markalston/metadash/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long:  `Open the full-screen dashboard. Without a stored session the login screen is shown first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runDashboard(ctx)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard runs the TUI until the user quits
func runDashboard(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closer, err := logger.InitFile(cfg.DebugLogPath(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("initializing debug log: %w", err)
	}
	defer closer.Close()

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("Dashboard started", "api_url", cfg.APIURL, "authenticated", a.Auth.IsAuthenticated())
	return tui.Run(ctx, a)
}
