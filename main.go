// ABOUTME: Entry point for the metadash CLI
// ABOUTME: Terminal client for signing in and viewing the metadata dashboard

package main

import (
	"fmt"
	"os"

	"github.com/markalston/metadash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
