package routing

import (
	"context"
	"sync"
)

// CoordinateCache memoizes per-address geocode results. It is keyed by the
// raw address string and bounded in size; it is independent of the TTL-based
// route cache.
type CoordinateCache interface {
	Get(ctx context.Context, address string) (LatLng, bool)
	Set(ctx context.Context, address string, coords LatLng)
}

// MemoryCoordinateCache is a bounded in-process CoordinateCache. Once the cap
// is reached the oldest entry is evicted.
type MemoryCoordinateCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]LatLng
	order   []string // insertion order, oldest first
}

// NewMemoryCoordinateCache creates a cache bounded to maxSize entries.
func NewMemoryCoordinateCache(maxSize int) *MemoryCoordinateCache {
	if maxSize <= 0 {
		maxSize = 150
	}
	return &MemoryCoordinateCache{
		maxSize: maxSize,
		entries: make(map[string]LatLng, maxSize),
	}
}

// Get returns the cached coordinates for an address.
func (c *MemoryCoordinateCache) Get(_ context.Context, address string) (LatLng, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coords, ok := c.entries[address]
	return coords, ok
}

// Set stores coordinates for an address, evicting the oldest entry at capacity.
func (c *MemoryCoordinateCache) Set(_ context.Context, address string, coords LatLng) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[address]; exists {
		c.entries[address] = coords
		return
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[address] = coords
	c.order = append(c.order, address)
}

// Len returns the current number of cached addresses.
func (c *MemoryCoordinateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
