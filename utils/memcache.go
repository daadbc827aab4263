package utils

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a process-local cache with per-entry expiry. Gin handlers run
// on multiple goroutines, so every access holds the mutex.
type TTLCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]cacheEntry
}

// NewTTLCache creates a cache whose entries expire after ttl
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Get returns the cached value, or nil/false when absent or expired.
// Expired entries are removed on read.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key with the cache's TTL
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.items[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Evict removes a single key
func (c *TTLCache) Evict(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes every entry
func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// BoundedLog keeps the most recent N entries, evicting the oldest first.
// Used as the in-memory governance audit trail; it is not durable and is
// lost on restart.
type BoundedLog struct {
	mu       sync.Mutex
	capacity int
	entries  []interface{}
}

// NewBoundedLog creates a log that retains at most capacity entries
func NewBoundedLog(capacity int) *BoundedLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &BoundedLog{capacity: capacity}
}

// Append adds an entry, evicting the oldest when full
func (l *BoundedLog) Append(entry interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Len returns the number of retained entries
func (l *BoundedLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns a copy of the retained entries, oldest first
func (l *BoundedLog) Snapshot() []interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]interface{}, len(l.entries))
	copy(out, l.entries)
	return out
}
