// ABOUTME: Hash-password command producing a bcrypt hash for the break-glass credential
// ABOUTME: Reads the password from a prompt or from stdin with --stdin

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/metadash/internal/login"
)

var hashFromStdin bool

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for METADASH_BREAKGLASS_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if hashFromStdin {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && err != io.EOF {
				return fmt.Errorf("reading password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		} else {
			err := huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Run()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
		}

		exitOnCode(runHashPassword(os.Stdout, password))
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().BoolVar(&hashFromStdin, "stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(hashPasswordCmd)
}

// runHashPassword prints the hash and returns exit code
func runHashPassword(w io.Writer, password string) int {
	if password == "" {
		fmt.Fprintln(w, "Error: password is empty")
		return exitError
	}
	hash, err := login.HashPassword(password)
	if err != nil {
		return printError(w, err)
	}
	fmt.Fprintln(w, hash)
	return exitOK
}
