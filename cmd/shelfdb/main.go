// cmd/shelfdb/main.go
//
// shelfdb CLI - Interactive SQL shell for shelfdb databases.
//
// Usage:
//
//	shelfdb [data-dir]
//
// If no data directory is specified, opens a database in a new temporary
// directory.
// Use .help for available commands.
package main

import (
	"fmt"
	"os"

	"shelfdb/pkg/cli"
)

func main() {
	dbPath := ":memory:"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	repl, err := cli.NewREPL(dbPath, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer repl.Close()

	repl.Run()
}
