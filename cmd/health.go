// ABOUTME: Health command for the metadash CLI
// ABOUTME: Checks identity service connectivity without a session

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check identity service connectivity",
	Long:  `Check connectivity to the identity service and report its health block.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitOnCode(runHealth(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		return printError(w, err)
	}
	c := client.New(cfg.APIURL, cfg.HTTPTimeout)
	defer c.Close()

	resp, err := c.Health(ctx)
	if err != nil {
		return printError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(cfg.APIURL, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(cfg.APIURL, resp))
	}

	if !resp.Healthy() {
		return exitError
	}
	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	sys := resp.SystemDiagnostics
	return fmt.Sprintf(`Service:  %s
Name:     %s %s
Status:   %s
Database: %s
Runtime:  %s
OS:       %s %s (%s)
CPU:      %d cores, %.1f%% load
Memory:   %.1f%% used, %s available of %s`,
		url,
		resp.ApplicationName, resp.Version,
		resp.Status,
		resp.DatabaseStatus,
		sys.Runtime(),
		sys.OS.System, sys.OS.Release, sys.OS.Machine,
		sys.CPU.Cores, sys.CPU.UsagePercent,
		sys.Memory.PercentUsed, humanize.IBytes(uint64(sys.Memory.Available)), humanize.IBytes(uint64(sys.Memory.Total)))
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"service": url,
		"health":  resp,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
