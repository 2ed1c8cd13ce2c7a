// ABOUTME: CLI entrypoint for corkboard: the kanban board and decision map as a local web app, TUI, and MCP server.
// ABOUTME: Loads .env, installs signal handling, and runs the cobra command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389-research/corkboard/app"
)

var version = "dev"

func main() {
	if err := app.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
