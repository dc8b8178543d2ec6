// ABOUTME: Logout command clearing the stored session
// ABOUTME: Succeeds whether or not a session existed

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnCode(runLogout(context.Background(), os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns exit code
func runLogout(_ context.Context, w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return printError(w, err)
	}
	defer a.Close()

	user := a.Auth.CurrentUser()
	if err := a.Auth.Logout(); err != nil {
		return printError(w, err)
	}

	if user != nil {
		fmt.Fprintf(w, "Logged out %s\n", user.Username)
	} else {
		fmt.Fprintln(w, "Logged out")
	}
	return exitOK
}
