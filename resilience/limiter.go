package resilience

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/willibrandon/nugetcatalog/observability"
)

// LimiterConfig configures the per-host token bucket.
type LimiterConfig struct {
	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64

	// Burst is the bucket capacity.
	Burst int
}

// DefaultLimiterConfig allows short bursts of fan-out while keeping well under
// the GitHub and nuget.org abuse thresholds.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		RequestsPerSecond: 50,
		Burst:             100,
	}
}

// HostLimiter manages separate rate limiters for each host.
type HostLimiter struct {
	config   LimiterConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a per-host rate limiter.
func NewHostLimiter(config LimiterConfig) *HostLimiter {
	return &HostLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	l, ok := hl.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(hl.config.RequestsPerSecond), hl.config.Burst)
		hl.limiters[host] = l
	}
	return l
}

// Allow reports whether a request to host may proceed now, consuming a token if so.
func (hl *HostLimiter) Allow(host string) bool {
	allowed := hl.limiter(host).Allow()
	observability.RateLimitRequestsTotal.WithLabelValues(host, strconv.FormatBool(allowed)).Inc()
	return allowed
}

// Wait blocks until a request to host may proceed or ctx is done.
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	err := hl.limiter(host).Wait(ctx)
	observability.RateLimitRequestsTotal.WithLabelValues(host, strconv.FormatBool(err == nil)).Inc()
	return err
}
