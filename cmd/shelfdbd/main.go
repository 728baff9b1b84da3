// cmd/shelfdbd/main.go
//
// shelfdbd is the HTTP server binary for shelfdb (SPEC_FULL §6.4).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "shelfdbd",
	Short: "shelfdb HTTP server",
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
