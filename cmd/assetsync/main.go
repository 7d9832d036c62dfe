// Package main provides the entry point for the assetsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
	"github.com/northfleet/assetsync/cmd/assetsync/cmd"
)

// version is populated by the release build.
var version = "dev"

func main() {
	application, err := app.New(version)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancel on SIGINT/SIGTERM so batch runs stop dispatching and drain.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	rootCmd := cmd.NewRootCommand(application)
	rootCmd.SetArgs(os.Args[1:])

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		app.ExitOnError(err)
	}
}
