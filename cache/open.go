package cache

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a Store backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// Open constructs the Store named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file backend requires a directory")
		}
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis backend requires an address")
		}
		return NewRedisStore(cfg.Redis), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
