package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/willibrandon/nugetcatalog/auth"
	"github.com/willibrandon/nugetcatalog/cache"
	"github.com/willibrandon/nugetcatalog/catalog"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/version"
	"github.com/willibrandon/nugetcatalog/config"
	"github.com/willibrandon/nugetcatalog/github"
	nugethttp "github.com/willibrandon/nugetcatalog/http"
	"github.com/willibrandon/nugetcatalog/imagecache"
	"github.com/willibrandon/nugetcatalog/observability"
	v3 "github.com/willibrandon/nugetcatalog/protocol/v3"
	"github.com/willibrandon/nugetcatalog/resilience"
)

// Registration responses are small JSON documents shared across packages
// within one run.
const (
	registrationCacheEntries = 1024
	registrationCacheBytes   = 32 << 20
)

// commonOptions are the flags shared by commands that load configuration.
type commonOptions struct {
	configFile string
	logLevel   string
}

// app is the object graph behind sync and list.
type app struct {
	cfg      *config.Config
	logger   observability.Logger
	reporter *observability.Reporter
	service  *catalog.Service
	store    cache.Store
	icons    *imagecache.Cache
	tracer   *sdktrace.TracerProvider
}

// loadConfig resolves the config file and applies command-line overrides.
func loadConfig(opts commonOptions) (*config.Config, error) {
	path := opts.configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

// newApp wires every collaborator of the catalog service from cfg. Logs go
// to logOutput.
func newApp(ctx context.Context, cfg *config.Config, logOutput io.Writer) (_ *app, err error) {
	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: observability.NewLogger(logOutput, level),
	}
	a.reporter = observability.NewReporter(a.logger)
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	if exporter := strings.ToLower(cfg.Tracing.Exporter); exporter != "" && exporter != "none" {
		tc := observability.DefaultTracerConfig()
		tc.ServiceVersion = version.Version
		tc.ExporterType = exporter
		tc.OTLPEndpoint = cfg.Tracing.Endpoint
		tc.SamplingRate = cfg.Tracing.SamplingRate
		if a.tracer, err = observability.SetupTracing(ctx, tc); err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := observability.StartMetricsServer(cfg.Metrics.Addr); err != nil {
				a.logger.Warn("Metrics server on {Addr} stopped: {Error}", cfg.Metrics.Addr, err)
			}
		}()
	}

	httpClient := newHTTPClient(cfg, a.logger, a.tracer != nil)

	githubAuth, err := auth.New(auth.Credentials{Token: cfg.GitHub.Token})
	if err != nil {
		return nil, err
	}
	repo, err := github.NewClient(httpClient, githubAuth, a.logger, github.Config{
		BaseURL:  cfg.GitHub.BaseURL,
		Owner:    cfg.GitHub.Owner,
		Repo:     cfg.GitHub.Repo,
		Ref:      cfg.GitHub.Ref,
		Patterns: cfg.GitHub.Patterns,
	})
	if err != nil {
		return nil, err
	}
	var locator catalog.Locator = repo
	if len(cfg.GitHub.Paths) > 0 {
		locator = github.StaticLocator(cfg.GitHub.Paths)
	}

	registryAuth, err := auth.New(cfg.Registry.Auth)
	if err != nil {
		return nil, err
	}
	metadata := v3.NewMetadataClient(httpClient, v3.NewServiceIndexClient(httpClient, registryAuth))
	metadata.SetResponseCache(cache.NewMemoryCache("registrations", registrationCacheEntries, registrationCacheBytes))
	registry := v3.NewRegistry(metadata, cfg.Registry.SourceURL)

	if a.store, err = cache.Open(cfg.Store); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if rs, ok := a.store.(*cache.RedisStore); ok {
		if err := rs.Ping(ctx); err != nil {
			return nil, err
		}
	}

	opts := catalog.Options{
		Locator:  locator,
		Files:    repo,
		Registry: registry,
		Store:    a.store,
		Reporter: a.reporter,
		Logger:   a.logger,
		Resolve: &catalog.ResolveOptions{
			IncludePrerelease: cfg.Registry.IncludePrerelease,
			IncludeUnlisted:   cfg.Registry.IncludeUnlisted,
		},
	}
	if cfg.Icons.Enabled {
		a.icons = imagecache.New(httpClient, imagecache.Config{
			MaxEntries:  cfg.Icons.MaxEntries,
			MaxBytes:    cfg.Icons.MaxBytes,
			TTL:         cfg.Icons.TTL,
			Concurrency: cfg.Icons.Concurrency,
		})
		opts.Icons = a.icons
	}

	if a.service, err = catalog.NewService(opts); err != nil {
		return nil, err
	}
	return a, nil
}

func newHTTPClient(cfg *config.Config, logger observability.Logger, tracing bool) *nugethttp.Client {
	hc := nugethttp.DefaultConfig()
	hc.Timeout = cfg.HTTP.Timeout
	hc.UserAgent = cfg.HTTP.UserAgent
	if hc.UserAgent == "" {
		hc.UserAgent = version.UserAgent()
	}
	hc.Transport.EnableHTTP3 = cfg.HTTP.HTTP3
	hc.RetryConfig.MaxRetries = cfg.HTTP.MaxRetries
	hc.Logger = logger
	hc.EnableTracing = tracing
	if cfg.HTTP.CircuitBreaker {
		breaker := resilience.DefaultCircuitBreakerConfig()
		hc.CircuitBreakerConfig = &breaker
	}
	if cfg.HTTP.RateLimit > 0 {
		hc.RateLimiterConfig = &resilience.LimiterConfig{
			RequestsPerSecond: cfg.HTTP.RateLimit,
			Burst:             max(cfg.HTTP.Burst, 1),
		}
	}
	return nugethttp.NewClient(hc)
}

// repository names the configured repository as owner/repo.
func (a *app) repository() string {
	return a.cfg.GitHub.Owner + "/" + a.cfg.GitHub.Repo
}

// Close waits for background work and releases the store and tracer.
func (a *app) Close(ctx context.Context) error {
	if a.service != nil {
		a.service.Wait()
	}
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.tracer != nil {
		errs = append(errs, observability.ShutdownTracing(ctx, a.tracer))
	}
	return errors.Join(errs...)
}
