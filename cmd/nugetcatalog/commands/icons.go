package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/catalog"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
	"github.com/willibrandon/nugetcatalog/imagecache"
)

// NewIconsCommand creates the icons command
func NewIconsCommand(console *output.Console) *cobra.Command {
	opts := &commonOptions{}

	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Download every icon in the stored catalog",
		Long: `Fetch the icon of every stored package through the image cache and report
the ones that cannot be downloaded. Exits non-zero when any icon fails.

Examples:
  nugetcatalog icons
  nugetcatalog icons --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIcons(cmd.Context(), console, opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runIcons(ctx context.Context, console *output.Console, opts *commonOptions) (err error) {
	cfg, err := loadConfig(*opts)
	if err != nil {
		return err
	}
	cfg.Icons.Enabled = true
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
	uris := make([]string, len(packages))
	for i, r := range packages {
		uris[i] = r.IconURI
	}
	uris = catalog.Distinct(uris)
	if len(uris) == 0 {
		console.Info("No packages cataloged for %s. Run 'nugetcatalog sync' first.", a.repository())
		return nil
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	report := imagecache.ReportTo(ctx, a.reporter)
	a.icons.PrefetchAll(ctx, uris, func(uri string, err error) {
		report(uri, err)
		mu.Lock()
		failed = append(failed, uri)
		mu.Unlock()
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	sort.Strings(failed)
	for _, uri := range failed {
		console.Warning("icon unavailable: %s", uri)
	}
	stats := a.icons.Stats()
	console.Success("Fetched %d of %d icons (%d bytes)", len(uris)-len(failed), len(uris), stats.SizeBytes)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d icons could not be fetched", len(failed), len(uris))
	}
	return nil
}
