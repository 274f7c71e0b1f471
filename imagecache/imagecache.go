// Package imagecache downloads package icons ahead of display and keeps the
// bytes in a bounded in-memory LRU.
package imagecache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/nugetcatalog/cache"
	nugethttp "github.com/willibrandon/nugetcatalog/http"
	"github.com/willibrandon/nugetcatalog/observability"
)

// Config bounds the cache and the prefetch concurrency.
type Config struct {
	MaxEntries  int
	MaxBytes    int64
	TTL         time.Duration // zero keeps icons until evicted
	Concurrency int
}

// DefaultConfig returns limits suitable for a few hundred icons.
func DefaultConfig() Config {
	return Config{
		MaxEntries:  512,
		MaxBytes:    64 << 20,
		TTL:         24 * time.Hour,
		Concurrency: 8,
	}
}

// Cache holds icon bytes keyed by URI.
type Cache struct {
	httpClient *nugethttp.Client
	images     *cache.MemoryCache
	cfg        Config
}

// New creates an empty Cache.
func New(httpClient *nugethttp.Client, cfg Config) *Cache {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &Cache{
		httpClient: httpClient,
		images:     cache.NewMemoryCache("icons", cfg.MaxEntries, cfg.MaxBytes),
		cfg:        cfg,
	}
}

// Prefetch downloads uri into the cache unless it is already present.
func (c *Cache) Prefetch(ctx context.Context, uri string) error {
	if uri == "" {
		return fmt.Errorf("prefetch: empty icon URI")
	}
	if c.images.Contains(uri) {
		return nil
	}

	data, err := c.httpClient.GetBytes(ctx, uri)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", uri, err)
	}

	c.images.Set(uri, data, c.cfg.TTL)
	return nil
}

// PrefetchAll prefetches every URI with at most Config.Concurrency in flight.
// Individual failures go to report and do not stop the others.
func (c *Cache) PrefetchAll(ctx context.Context, uris []string, report func(uri string, err error)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for _, uri := range uris {
		g.Go(func() error {
			if err := c.Prefetch(gctx, uri); err != nil && report != nil {
				report(uri, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Get returns cached icon bytes.
func (c *Cache) Get(uri string) ([]byte, bool) {
	return c.images.Get(uri)
}

// Stats reports the cache's current size.
func (c *Cache) Stats() cache.Stats {
	return c.images.Stats()
}

// ReportTo adapts a Reporter for PrefetchAll.
func ReportTo(ctx context.Context, reporter *observability.Reporter) func(string, error) {
	return func(uri string, err error) {
		reporter.Report(ctx, err, map[string]string{
			observability.PropComponent: "imagecache",
			"IconUri":                   uri,
		})
	}
}
