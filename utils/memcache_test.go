package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheSetGetEvict(t *testing.T) {
	cache := NewTTLCache(time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("k", 42)
	v, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	cache.Evict("k")
	_, ok = cache.Get("k")
	assert.False(t, ok)
}

func TestTTLCacheExpiry(t *testing.T) {
	cache := NewTTLCache(-time.Second) // already expired on write
	cache.Set("k", "v")

	_, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestBoundedLogEviction(t *testing.T) {
	log := NewBoundedLog(3)
	for i := 0; i < 5; i++ {
		log.Append(fmt.Sprintf("e%d", i))
	}

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, []interface{}{"e2", "e3", "e4"}, log.Snapshot())
}

func TestBoundedLogMinimumCapacity(t *testing.T) {
	log := NewBoundedLog(0)
	log.Append("a")
	log.Append("b")
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, []interface{}{"b"}, log.Snapshot())
}
