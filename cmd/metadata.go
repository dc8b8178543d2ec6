// ABOUTME: Metadata command printing the dashboard aggregate
// ABOUTME: Requires a session; optionally fetches service health in parallel

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/guard"
)

var withHealth bool

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the metadata dashboard",
	Long:  `Fetch the metadata aggregate for the signed-in user. Requires a stored session.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitOnCode(runMetadata(ctx, os.Stdout))
	},
}

func init() {
	metadataCmd.Flags().BoolVar(&withHealth, "with-health", false, "Also fetch GET /health")
	rootCmd.AddCommand(metadataCmd)
}

// metadataOutput is the JSON shape printed by metadata
type metadataOutput struct {
	Metadata *client.AppMetadata    `json:"metadata"`
	Health   *client.HealthResponse `json:"health,omitempty"`
}

// runMetadata fetches the aggregate and returns exit code
func runMetadata(ctx context.Context, w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return printError(w, err)
	}
	defer a.Close()

	if d := a.Guard.Resolve(guard.RouteDashboard); d.Denied() {
		fmt.Fprintln(w, "Not logged in. Run 'metadash login' first.")
		return exitDenied
	}

	var out metadataOutput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, err := a.Metadata(gctx)
		out.Metadata = meta
		return err
	})
	if withHealth {
		g.Go(func() error {
			health, err := a.Client.Health(gctx)
			out.Health = health
			return err
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		var fetchErr *client.MetadataFetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusUnauthorized {
			return exitDenied
		}
		return exitError
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	fmt.Fprintln(w, formatMetadataHuman(out.Metadata))
	if out.Health != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatHealthHuman(a.Config.APIURL, out.Health))
	}
	return exitOK
}

// formatMetadataHuman formats the aggregate for human readability
func formatMetadataHuman(meta *client.AppMetadata) string {
	if meta == nil || (meta.User == nil && meta.Health == nil && meta.Application == nil && meta.Auth == nil) {
		return "Unable to load metadata. Please try again later."
	}

	var sb strings.Builder
	if u := meta.User; u != nil {
		role := "User"
		if u.IsSuperuser {
			role = "Admin"
		}
		fmt.Fprintf(&sb, "User:        %s <%s> [%s]\n", u.Username, u.Email, role)
	}
	if h := meta.Health; h != nil {
		fmt.Fprintf(&sb, "Health:      %s (database %s)\n", h.Status, h.DatabaseStatus)
		fmt.Fprintf(&sb, "Memory:      %.1f%% used\n", h.SystemDiagnostics.Memory.PercentUsed)
	}
	if app := meta.Application; app != nil {
		fmt.Fprintf(&sb, "Application: %s %s (%s)\n", app.Name, app.Version, app.Environment)
		if len(app.Dependencies) > 0 {
			fmt.Fprintf(&sb, "Depends on:  %s\n", strings.Join(app.Dependencies, ", "))
		}
	}
	if auth := meta.Auth; auth != nil {
		expires := "N/A"
		if auth.ExpiresAt != nil && !auth.ExpiresAt.IsZero() {
			expires = auth.ExpiresAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(&sb, "Token:       %s, expires %s\n", auth.TokenType, expires)
		fmt.Fprintf(&sb, "Permissions: %s\n", strings.Join(auth.Permissions, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}
