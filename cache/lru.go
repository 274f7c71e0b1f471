package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/willibrandon/nugetcatalog/observability"
)

// MemoryCache is a byte-value LRU cache bounded by entry count and total
// size, with per-entry TTL. A zero TTL never expires.
type MemoryCache struct {
	name       string
	maxEntries int
	maxSize    int64

	mu        sync.Mutex
	entries   map[string]*list.Element
	lruList   *list.List
	totalSize int64
}

type lruEntry struct {
	key    string
	value  []byte
	expiry time.Time
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expiry.IsZero() && now.After(e.expiry)
}

// NewMemoryCache creates an LRU cache. name labels its hit/miss metrics.
func NewMemoryCache(name string, maxEntries int, maxSize int64) *MemoryCache {
	return &MemoryCache{
		name:       name,
		maxEntries: maxEntries,
		maxSize:    maxSize,
		entries:    make(map[string]*list.Element),
		lruList:    list.New(),
	}
}

// Get returns a copy of the value for key if present and not expired.
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	elem, ok := mc.entries[key]
	if !ok {
		observability.CacheMissesTotal.WithLabelValues(mc.name).Inc()
		return nil, false
	}

	ent := elem.Value.(*lruEntry)
	if ent.expired(time.Now()) {
		mc.removeElement(elem)
		observability.CacheMissesTotal.WithLabelValues(mc.name).Inc()
		return nil, false
	}

	mc.lruList.MoveToFront(elem)
	observability.CacheHitsTotal.WithLabelValues(mc.name).Inc()

	value := make([]byte, len(ent.value))
	copy(value, ent.value)
	return value, true
}

// Contains reports whether key is cached without touching recency.
func (mc *MemoryCache) Contains(key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	elem, ok := mc.entries[key]
	return ok && !elem.Value.(*lruEntry).expired(time.Now())
}

// Set adds or replaces the value for key, evicting least recently used
// entries until both bounds hold.
func (mc *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var expiry time.Time
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}

	if elem, ok := mc.entries[key]; ok {
		ent := elem.Value.(*lruEntry)
		mc.totalSize += int64(len(value)) - int64(len(ent.value))
		ent.value = value
		ent.expiry = expiry
		mc.lruList.MoveToFront(elem)
	} else {
		mc.entries[key] = mc.lruList.PushFront(&lruEntry{key: key, value: value, expiry: expiry})
		mc.totalSize += int64(len(value))
	}

	for mc.lruList.Len() > 0 && (mc.lruList.Len() > mc.maxEntries || mc.totalSize > mc.maxSize) {
		mc.removeElement(mc.lruList.Back())
	}
}

// Delete removes key.
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if elem, ok := mc.entries[key]; ok {
		mc.removeElement(elem)
	}
}

// Stats returns the current entry count and total bytes.
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return Stats{Entries: len(mc.entries), SizeBytes: mc.totalSize}
}

// removeElement must be called with mu held.
func (mc *MemoryCache) removeElement(elem *list.Element) {
	ent := elem.Value.(*lruEntry)
	delete(mc.entries, ent.key)
	mc.lruList.Remove(elem)
	mc.totalSize -= int64(len(ent.value))
}

// Stats holds cache statistics.
type Stats struct {
	Entries   int
	SizeBytes int64
}
