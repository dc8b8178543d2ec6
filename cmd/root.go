// ABOUTME: Root command for the metadash CLI
// ABOUTME: Handles global flags, configuration loading, and exit codes

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/app"
	"github.com/markalston/metadash/internal/config"
	"github.com/markalston/metadash/internal/logger"
)

// Exit codes
const (
	exitOK     = 0
	exitDenied = 1 // authentication failed or no session
	exitError  = 2
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
)

// rootCmd is the base command. Without a subcommand it opens the dashboard.
var rootCmd = &cobra.Command{
	Use:   "metadash",
	Short: "Terminal client for the metadata dashboard",
	Long: `metadash signs in to an identity service, keeps the session on disk,
and shows the service's metadata dashboard in the terminal.

Environment Variables:
  METADASH_API_URL          Identity service URL (default: http://localhost:8000)
  METADASH_CONFIG_DIR       Session and log directory (default: ~/.config/metadash)
  METADASH_HTTP_TIMEOUT     Request timeout (default: 30s)
  METADASH_LOG_LEVEL        debug, info, warn, or error
  METADASH_BREAKGLASS_USER  Break-glass admin username
  METADASH_BREAKGLASS_HASH  bcrypt hash for the break-glass admin (see hash-password)`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runDashboard(ctx)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Identity service URL (overrides METADASH_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Session and log directory (overrides METADASH_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// loadConfig reads configuration and applies flag overrides, which take
// priority over the environment and defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads configuration, logs to stderr, and opens the session
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return app.Open(cfg)
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// exitOnCode terminates the process for non-zero codes
func exitOnCode(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}

// printError reports err and returns exitError
func printError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitError
}
