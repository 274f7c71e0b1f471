package cache

import (
	"context"
	"sync"

	"github.com/willibrandon/nugetcatalog/observability"
)

// MemoryStore is a process-local Store. Values do not survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	recordLookup("memory", ok)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func recordLookup(store string, hit bool) {
	if hit {
		observability.CacheHitsTotal.WithLabelValues(store).Inc()
	} else {
		observability.CacheMissesTotal.WithLabelValues(store).Inc()
	}
}

var _ Store = (*MemoryStore)(nil)
