package objects

import (
	"sync"
)

// Cache memoizes object handles by hash, one cache instance per object kind.
//
// The construction function runs exactly once per hash, even under
// concurrent Get calls; every later request returns the identical handle.
// There is no eviction: the store is append-only and content-addressed, so
// a cached mapping can never go stale. The constructor must be cheap and
// non-blocking (handles defer their I/O until first data access), which is
// what lets a single lock give the exactly-once guarantee.
type Cache[H any] struct {
	mu      sync.Mutex
	build   func(ObjectHash) H
	entries map[ObjectHash]H
}

// NewCache creates a cache around the given handle constructor.
func NewCache[H any](build func(ObjectHash) H) *Cache[H] {
	return &Cache[H]{
		build:   build,
		entries: make(map[ObjectHash]H),
	}
}

// Get returns the handle for hash, constructing and memoizing it on first
// request.
func (c *Cache[H]) Get(hash ObjectHash) H {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.entries[hash]; ok {
		return h
	}
	h := c.build(hash)
	c.entries[hash] = h
	return h
}

// Len returns the number of memoized handles.
func (c *Cache[H]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
