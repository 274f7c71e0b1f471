package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/cli"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/commands"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "0.0.0-dev"
	commit       = "unknown"
	date         = "unknown"
)

func main() {
	version.Version = buildVersion
	version.Commit = commit
	version.Date = date

	cli.SetupVersion()

	cli.AddCommand(commands.NewVersionCommand(cli.Console))
	cli.AddCommand(commands.NewSyncCommand(cli.Console))
	cli.AddCommand(commands.NewListCommand(cli.Console))
	cli.AddCommand(commands.NewIconsCommand(cli.Console))

	// Cancellation stops in-flight fan-out units; the stored catalog is left as is.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // 128 + SIGINT
		}
		os.Exit(1)
	}
}
