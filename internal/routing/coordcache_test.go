package routing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCoordinateCache_GetSet(t *testing.T) {
	cache := NewMemoryCoordinateCache(3)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "12 Main St")
	assert.False(t, ok)

	cache.Set(ctx, "12 Main St", LatLng{Lat: 40.7, Lng: -74.0})

	coords, ok := cache.Get(ctx, "12 Main St")
	assert.True(t, ok)
	assert.Equal(t, LatLng{Lat: 40.7, Lng: -74.0}, coords)
}

func TestMemoryCoordinateCache_EvictsOldestFirst(t *testing.T) {
	cache := NewMemoryCoordinateCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cache.Set(ctx, fmt.Sprintf("addr-%d", i), LatLng{Lat: float64(i)})
	}
	assert.Equal(t, 3, cache.Len())

	cache.Set(ctx, "addr-3", LatLng{Lat: 3})

	assert.Equal(t, 3, cache.Len())
	_, ok := cache.Get(ctx, "addr-0")
	assert.False(t, ok, "oldest entry should be evicted")
	for i := 1; i <= 3; i++ {
		_, ok := cache.Get(ctx, fmt.Sprintf("addr-%d", i))
		assert.True(t, ok)
	}
}

func TestMemoryCoordinateCache_OverwriteDoesNotGrow(t *testing.T) {
	cache := NewMemoryCoordinateCache(2)
	ctx := context.Background()

	cache.Set(ctx, "a", LatLng{Lat: 1})
	cache.Set(ctx, "b", LatLng{Lat: 2})
	cache.Set(ctx, "a", LatLng{Lat: 9})

	assert.Equal(t, 2, cache.Len())
	coords, _ := cache.Get(ctx, "a")
	assert.Equal(t, 9.0, coords.Lat)

	// "a" kept its original slot, so "b" is still present after one more add.
	cache.Set(ctx, "c", LatLng{Lat: 3})
	_, ok := cache.Get(ctx, "b")
	assert.True(t, ok)
}
