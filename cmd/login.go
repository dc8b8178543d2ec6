// ABOUTME: Login command exchanging credentials for a stored session
// ABOUTME: Prompts for missing credentials with a huh form

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/auth"
	"github.com/markalston/metadash/internal/login"
	"github.com/markalston/metadash/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the identity service and store the session for later commands.

Missing credentials are prompted for interactively. A configured break-glass
credential is checked first and works without the identity service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		username, password := loginUsername, loginPassword
		if username == "" || password == "" {
			var err error
			username, password, err = promptCredentials(username)
			if err != nil {
				return err
			}
		}

		exitOnCode(runLogin(ctx, os.Stdout, username, password))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

// promptCredentials asks for whatever the flags did not supply
func promptCredentials(username string) (string, string, error) {
	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("reading credentials: %w", err)
	}
	return username, password, nil
}

// loginOutput is the JSON shape printed on success
type loginOutput struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	IsAdmin  bool           `json:"is_admin"`
	Source   session.Source `json:"source"`
}

// runLogin submits the credentials and returns exit code
func runLogin(ctx context.Context, w io.Writer, username, password string) int {
	a, err := openApp()
	if err != nil {
		return printError(w, err)
	}
	defer a.Close()

	result, err := a.Login.Submit(ctx, username, password)
	if err != nil {
		message := login.Message(err)
		var loginErr *login.Error
		if errors.As(err, &loginErr) {
			message = loginErr.Message
		}
		fmt.Fprintf(w, "Login failed: %s\n", message)
		return loginExitCode(err)
	}

	user := a.Auth.CurrentUser()
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(loginOutput{
			Username: user.Username,
			Email:    user.Email,
			IsAdmin:  user.IsAdmin,
			Source:   a.Auth.Source(),
		}, "", "  ")
		fmt.Fprintln(w, string(data))
		return exitOK
	}

	fmt.Fprintf(w, "Logged in as %s (%s)\n", user.Username, user.Email)
	if result.BreakGlass {
		fmt.Fprintln(w, "Warning: break-glass session; the identity service was not consulted.")
	}
	return exitOK
}

// loginExitCode is exitError when the service could not be reached and
// exitDenied for everything the user can fix
func loginExitCode(err error) int {
	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) && authErr.Unreachable() {
		return exitError
	}
	var loginErr *login.Error
	if errors.As(err, &loginErr) && loginErr.Message == login.MsgUnexpected {
		return exitError
	}
	return exitDenied
}
