// Package config loads nugetcatalog settings from defaults, an optional TOML
// file and NUGETCATALOG_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/willibrandon/nugetcatalog/auth"
	"github.com/willibrandon/nugetcatalog/cache"
	"github.com/willibrandon/nugetcatalog/observability"
)

// EnvPrefix prefixes every environment variable, e.g. NUGETCATALOG_GITHUB_TOKEN.
const EnvPrefix = "NUGETCATALOG"

// FileName is the configuration file looked up by FindConfigFile.
const FileName = "nugetcatalog.toml"

// Config holds all application configuration.
type Config struct {
	GitHub   GitHubConfig   `toml:"github"`
	Registry RegistryConfig `toml:"registry"`
	Store    cache.Config   `toml:"store"`
	HTTP     HTTPConfig     `toml:"http"`
	Icons    IconConfig     `toml:"icons"`
	Logging  LogConfig      `toml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
}

// GitHubConfig identifies the repository to catalog.
type GitHubConfig struct {
	BaseURL  string   `toml:"base_url" split_words:"true"`
	Owner    string   `toml:"owner"`
	Repo     string   `toml:"repo"`
	Ref      string   `toml:"ref"`
	Token    string   `toml:"token"`
	Patterns []string `toml:"patterns"`
	Paths    []string `toml:"paths"` // fixed project paths; skips tree listing
}

// RegistryConfig selects the NuGet feed and which versions count.
type RegistryConfig struct {
	SourceURL         string           `toml:"source_url" split_words:"true"`
	IncludePrerelease bool             `toml:"include_prerelease" split_words:"true"`
	IncludeUnlisted   bool             `toml:"include_unlisted" split_words:"true"`
	Auth              auth.Credentials `toml:"auth"`
}

// HTTPConfig tunes the shared outbound client.
type HTTPConfig struct {
	Timeout        time.Duration `toml:"timeout"`
	UserAgent      string        `toml:"user_agent" split_words:"true"`
	MaxRetries     int           `toml:"max_retries" split_words:"true"`
	HTTP3          bool          `toml:"http3"`
	RateLimit      float64       `toml:"rate_limit" split_words:"true"` // requests per second per host; 0 disables
	Burst          int           `toml:"burst"`
	CircuitBreaker bool          `toml:"circuit_breaker" split_words:"true"`
}

// IconConfig bounds the icon prefetch cache.
type IconConfig struct {
	Enabled     bool          `toml:"enabled"`
	MaxEntries  int           `toml:"max_entries" split_words:"true"`
	MaxBytes    int64         `toml:"max_bytes" split_words:"true"`
	TTL         time.Duration `toml:"ttl"`
	Concurrency int           `toml:"concurrency"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// TracingConfig selects the OpenTelemetry exporter.
type TracingConfig struct {
	Exporter     string  `toml:"exporter"`
	Endpoint     string  `toml:"endpoint"`
	SamplingRate float64 `toml:"sampling_rate" split_words:"true"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			BaseURL:  "https://api.github.com",
			Patterns: []string{"**/*.csproj"},
		},
		Registry: RegistryConfig{
			SourceURL:         "https://api.nuget.org/v3/index.json",
			IncludePrerelease: true,
			IncludeUnlisted:   true,
		},
		Store: cache.Config{
			Backend: cache.BackendFile,
			Dir:     DefaultStoreDir(),
		},
		HTTP: HTTPConfig{
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			RateLimit:      50,
			Burst:          100,
			CircuitBreaker: true,
		},
		Icons: IconConfig{
			Enabled:     true,
			MaxEntries:  512,
			MaxBytes:    64 << 20,
			TTL:         24 * time.Hour,
			Concurrency: 8,
		},
		Logging: LogConfig{Level: "info"},
		Tracing: TracingConfig{Exporter: "none", SamplingRate: 1.0},
	}
}

// DefaultStoreDir returns the per-user directory for the file store.
func DefaultStoreDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "nugetcatalog")
	}
	return filepath.Join(os.TempDir(), "nugetcatalog")
}

// DefaultConfigLocations returns the config file locations to search in
// precedence order.
func DefaultConfigLocations() []string {
	var locations []string
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, filepath.Join(cwd, FileName))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(dir, "nugetcatalog", FileName))
	}
	return locations
}

// FindConfigFile returns the first existing default location, or "".
func FindConfigFile() string {
	for _, loc := range DefaultConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Load applies, over Default, the TOML file at path (skipped when path is
// empty) and then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a catalog run.
func (c *Config) Validate() error {
	var errs []error

	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		errs = append(errs, errors.New("github.owner and github.repo are required"))
	}
	if c.Registry.SourceURL == "" {
		errs = append(errs, errors.New("registry.source_url is required"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.HTTP.MaxRetries < 0 {
		errs = append(errs, errors.New("http.max_retries must not be negative"))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit must not be negative"))
	}
	if c.Icons.Enabled && (c.Icons.MaxEntries <= 0 || c.Icons.MaxBytes <= 0) {
		errs = append(errs, errors.New("icons.max_entries and icons.max_bytes must be positive"))
	}
	if _, err := observability.ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Store.Backend) {
	case cache.BackendMemory:
	case cache.BackendFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file backend"))
		}
	case cache.BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend: %w: %q", cache.ErrUnknownBackend, c.Store.Backend))
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "", "none", "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint is required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unsupported %q (none, stdout, otlp)", c.Tracing.Exporter))
	}
	if _, err := auth.New(c.Registry.Auth); err != nil {
		errs = append(errs, fmt.Errorf("registry.auth: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
