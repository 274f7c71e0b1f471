// Package resilience guards outbound HTTP hosts (GitHub, NuGet feeds, icon hosts)
// with per-host circuit breakers and rate limiters.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/willibrandon/nugetcatalog/observability"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	StateClosed   CircuitState = iota // Normal operation
	StateOpen                         // Failing, reject requests
	StateHalfOpen                     // Testing if service recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when circuit breaker is in Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds circuit breaker configuration.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures uint

	// Timeout is how long to stay Open before allowing a Half-Open probe.
	Timeout time.Duration

	// MaxHalfOpenRequests is max concurrent probes in Half-Open state.
	MaxHalfOpenRequests uint
}

// DefaultCircuitBreakerConfig returns default configuration.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         5,
		Timeout:             60 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

// CircuitBreaker implements the three-state circuit breaker pattern.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           CircuitState
	failures        uint
	lastFailureTime time.Time
	halfOpenActive  uint
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{config: config, state: StateClosed}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CanExecute checks if a request can proceed, moving Open to Half-Open once Timeout elapsed.
func (cb *CircuitBreaker) CanExecute() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(cb.lastFailureTime) < cb.config.Timeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.halfOpenActive = 0
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenActive >= cb.config.MaxHalfOpenRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenActive++
		return nil
	default:
		return ErrCircuitOpen
	}
}

// RecordSuccess records a successful operation.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenActive--
	}
	cb.state = StateClosed
	cb.failures = 0
}

// RecordFailure records a failed operation.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		// Any failure in half-open immediately reopens the circuit
		cb.halfOpenActive--
		cb.state = StateOpen
	}
}

// HTTPCircuitBreaker keeps one CircuitBreaker per host so a failing icon host
// cannot trip requests to the registry.
type HTTPCircuitBreaker struct {
	config   CircuitBreakerConfig
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewHTTPCircuitBreaker creates a new HTTP circuit breaker.
func NewHTTPCircuitBreaker(config CircuitBreakerConfig) *HTTPCircuitBreaker {
	return &HTTPCircuitBreaker{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

func (hcb *HTTPCircuitBreaker) getBreaker(host string) *CircuitBreaker {
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[host]
	hcb.mu.RUnlock()
	if exists {
		return breaker
	}

	hcb.mu.Lock()
	defer hcb.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists = hcb.breakers[host]; exists {
		return breaker
	}
	breaker = NewCircuitBreaker(hcb.config)
	hcb.breakers[host] = breaker
	return breaker
}

// HTTPOperation is a function that performs an HTTP operation.
type HTTPOperation func(ctx context.Context) (*http.Response, error)

// Execute runs op under the host's breaker. Transport errors and 5xx responses count as failures.
func (hcb *HTTPCircuitBreaker) Execute(ctx context.Context, host string, op HTTPOperation) (*http.Response, error) {
	breaker := hcb.getBreaker(host)
	defer func() {
		observability.CircuitBreakerState.WithLabelValues(host).Set(float64(breaker.State()))
	}()

	if err := breaker.CanExecute(); err != nil {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, err)
	}

	resp, err := op(ctx)
	if err != nil {
		breaker.RecordFailure()
		return nil, err
	}

	if resp.StatusCode >= 500 {
		breaker.RecordFailure()
		return resp, nil
	}

	breaker.RecordSuccess()
	return resp, nil
}

// GetState returns the state of the circuit breaker for a host.
func (hcb *HTTPCircuitBreaker) GetState(host string) CircuitState {
	hcb.mu.RLock()
	breaker, exists := hcb.breakers[host]
	hcb.mu.RUnlock()

	if !exists {
		return StateClosed
	}
	return breaker.State()
}
