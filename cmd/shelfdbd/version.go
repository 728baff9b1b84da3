// cmd/shelfdbd/version.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shelfdbd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("shelfdbd version", version)
	},
}
