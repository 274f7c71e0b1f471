package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
)

type listOptions struct {
	commonOptions
	format string
}

// NewListCommand creates the list command
func NewListCommand(console *output.Console) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the stored package catalog",
		Long: `Print the catalog from the last completed sync without contacting GitHub
or the NuGet feed.

Examples:
  nugetcatalog list
  nugetcatalog list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), console, opts)
		},
	}

	addCommonFlags(cmd, &opts.commonOptions)
	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatConsole, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q: expected console or json", format)
	}
}

func runList(ctx context.Context, console *output.Console, opts *listOptions) (err error) {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	start := time.Now()

	cfg, err := loadConfig(opts.commonOptions)
	if err != nil {
		return err
	}
	cfg.Icons.Enabled = false
	a, err := newApp(ctx, cfg, console.Err())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	packages := a.service.Packages(ctx)

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), output.NewCatalogOutput(a.repository(), packages, start))
	}

	if len(packages) == 0 {
		console.Info("No packages cataloged for %s. Run 'nugetcatalog sync' first.", a.repository())
		return nil
	}
	return output.WriteTable(console.Out(), packages)
}
