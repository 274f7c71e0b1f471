package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/catalog"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
)

type syncOptions struct {
	commonOptions
	force  bool
	format string
}

// NewSyncCommand creates the sync command
func NewSyncCommand(console *output.Console) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the stored package catalog",
		Long: `Scan the configured repository for project files, resolve every
PackageReference against the NuGet feed and store the resulting catalog.

When no catalog is stored yet the refresh runs in the foreground. Otherwise the
stored catalog is reported first and replaced once the refresh completes.

Examples:
  nugetcatalog sync
  nugetcatalog sync --force --format json
  nugetcatalog sync --config ./nugetcatalog.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), console, opts)
		},
	}

	addCommonFlags(cmd, &opts.commonOptions)
	cmd.Flags().BoolVar(&opts.force, "force", false, "Refresh in the foreground even when a catalog is stored")
	cmd.Flags().StringVar(&opts.format, "format", "console", "Output format: console or json")

	return cmd
}

func addCommonFlags(cmd *cobra.Command, opts *commonOptions) {
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Configuration file (defaults to ./nugetcatalog.toml, then the user config directory)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
}

func runSync(ctx context.Context, console *output.Console, opts *syncOptions) (err error) {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	start := time.Now()

	cfg, err := loadConfig(opts.commonOptions)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, console.Err())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var (
		mode   catalog.Mode
		result catalog.Catalog
	)
	if opts.force {
		mode = catalog.ModeBlocking
		console.Detail("Refreshing %s", a.repository())
		result = a.service.Refresh(ctx)
	} else {
		refresh := a.service.Initialize(ctx)
		mode = refresh.Mode()
		if mode == catalog.ModeDetached {
			console.Info("Stored catalog has %d packages; refreshing %s", len(a.service.Packages(ctx)), a.repository())
		}
		select {
		case <-refresh.Done():
			result = refresh.Catalog()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.service.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sync interrupted: %w", err)
	}

	if opts.format == formatJSON {
		out := output.NewCatalogOutput(a.repository(), result, start)
		out.Mode = mode.String()
		return output.WriteJSON(console.Out(), out)
	}

	for _, r := range result {
		console.Detail("  %s", r.Name)
	}
	console.Success("Cataloged %d packages from %s (%s, %s)",
		len(result), a.repository(), mode, time.Since(start).Round(time.Millisecond))
	if a.icons != nil {
		stats := a.icons.Stats()
		console.Detail("Icon cache: %d entries, %d bytes", stats.Entries, stats.SizeBytes)
	}
	return nil
}
