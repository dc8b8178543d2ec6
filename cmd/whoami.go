// ABOUTME: Whoami command showing the stored session
// ABOUTME: Exits 1 when no usable session is stored

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/session"
	"github.com/markalston/metadash/internal/token"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnCode(runWhoami(context.Background(), os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiOutput is the JSON shape printed by whoami
type whoamiOutput struct {
	Authenticated bool           `json:"authenticated"`
	Degraded      bool           `json:"degraded,omitempty"`
	Username      string         `json:"username,omitempty"`
	Email         string         `json:"email,omitempty"`
	Role          string         `json:"role,omitempty"`
	Source        session.Source `json:"source,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// runWhoami reports the current session and returns exit code
func runWhoami(_ context.Context, w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return printError(w, err)
	}
	defer a.Close()

	stored, err := a.Auth.Session()
	if err != nil {
		return printError(w, err)
	}

	out := whoamiOutput{Degraded: stored.Degraded()}
	user := a.Auth.CurrentUser()
	if a.Auth.IsAuthenticated() && user != nil {
		out.Authenticated = true
		out.Username = user.Username
		out.Email = user.Email
		out.Role = user.Role()
		out.Source = a.Auth.Source()
		if claims, err := token.Decode(a.Auth.Token()); err == nil && claims.ExpiresAt != nil {
			out.ExpiresAt = claims.ExpiresAt
		}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(out))
	}

	if !out.Authenticated {
		return exitDenied
	}
	return exitOK
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(out whoamiOutput) string {
	if !out.Authenticated {
		if out.Degraded {
			return "Not logged in (stored session is incomplete; run 'metadash login')"
		}
		return "Not logged in"
	}

	expires := "never"
	if out.ExpiresAt != nil {
		expires = fmt.Sprintf("%s (%s)", out.ExpiresAt.Local().Format(time.RFC1123), humanize.Time(*out.ExpiresAt))
	}

	return fmt.Sprintf(`Username: %s
Email:    %s
Role:     %s
Source:   %s
Expires:  %s`, out.Username, out.Email, out.Role, out.Source, expires)
}
