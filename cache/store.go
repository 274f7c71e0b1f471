// Package cache provides the key/value stores that persist the package
// catalog across sessions, and the in-memory LRU used for icon bytes.
package cache

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store persists string values under string keys.
// Get reports a missing key as ("", false, nil).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
