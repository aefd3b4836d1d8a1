package routing

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// Clock supplies the current time. Injected so cache expiry is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	value     *RouteResult
	createdAt time.Time
}

// inflightCall is the shared pending result for one cache key. Callers that
// find one attach to its done channel instead of issuing a second provider
// call.
type inflightCall struct {
	done   chan struct{}
	result *RouteResult
	err    error
}

// Resolver turns a RouteQuery into a RouteResult while minimizing provider
// calls: live cache entries are returned without network cost, and at most
// one provider call per distinct key is outstanding at a time.
type Resolver struct {
	provider Provider
	coords   CoordinateCache
	clock    Clock
	ttl      time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]*inflightCall
}

// NewResolver creates a Resolver with the given provider, coordinate cache,
// clock and cache TTL.
func NewResolver(provider Provider, coords CoordinateCache, clock Clock, ttl time.Duration, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Resolver{
		provider: provider,
		coords:   coords,
		clock:    clock,
		ttl:      ttl,
		logger:   logger,
		cache:    make(map[string]cacheEntry),
		inflight: make(map[string]*inflightCall),
	}
}

// Resolve returns the route for the query. Missing pickup or dropoff is the
// single validation gate: it returns a validation error immediately with no
// cache write and no provider call. A live cached entry is returned without
// touching the provider. When another resolution for the same key is already
// in flight, the caller waits for that call's result (bounded by its own
// context) rather than issuing a duplicate.
func (r *Resolver) Resolve(ctx context.Context, query RouteQuery) (*RouteResult, error) {
	if strings.TrimSpace(query.Pickup) == "" || strings.TrimSpace(query.Dropoff) == "" {
		return nil, domain.NewValidationError("pickup and dropoff addresses are required")
	}

	key := query.CacheKey()

	r.mu.Lock()
	if entry, ok := r.cache[key]; ok {
		if r.clock.Now().Sub(entry.createdAt) < r.ttl {
			r.mu.Unlock()
			return entry.value, nil
		}
		delete(r.cache, key)
	}

	if call, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		return r.await(ctx, call)
	}

	call := &inflightCall{done: make(chan struct{})}
	r.inflight[key] = call
	r.mu.Unlock()

	result, err := r.fetch(ctx, query)

	r.mu.Lock()
	call.result = result
	call.err = err
	delete(r.inflight, key)
	if err == nil {
		// Only successful resolutions are cached; a failed directions call
		// must not poison the key.
		r.cache[key] = cacheEntry{value: result, createdAt: r.clock.Now()}
	}
	r.mu.Unlock()

	close(call.done)
	return result, err
}

// await blocks until the shared call completes or the caller's context ends.
func (r *Resolver) await(ctx context.Context, call *inflightCall) (*RouteResult, error) {
	select {
	case <-call.done:
		return call.result, call.err
	case <-ctx.Done():
		return nil, domain.NewTimeoutError("timed out waiting for route resolution").WithCause(ctx.Err())
	}
}

// fetch performs the provider round trips for a cache miss.
func (r *Resolver) fetch(ctx context.Context, query RouteQuery) (*RouteResult, error) {
	stops := query.ValidStops()

	legs, err := r.provider.Directions(ctx, query.Pickup, query.Dropoff, stops)
	if err != nil {
		return nil, domain.NewProviderError("failed to resolve route").WithCause(err)
	}

	result := &RouteResult{
		DistanceText:    legs.DistanceText,
		DurationText:    legs.DurationText,
		DistanceMiles:   float64(legs.DistanceMeters) / metersPerMile,
		DurationMinutes: legs.DurationSeconds/60 + stopDwellMinutes*len(stops),
		ValidStopCount:  len(stops),
	}

	// Waypoint geocoding is best-effort: a failed lookup just leaves that
	// field's coordinates empty.
	result.PickupCoords = r.geocode(ctx, query.Pickup)
	result.DropoffCoords = r.geocode(ctx, query.Dropoff)
	for _, stop := range stops {
		if coords := r.geocode(ctx, stop); coords != nil {
			result.StopCoords = append(result.StopCoords, *coords)
		}
	}

	return result, nil
}

// geocode looks an address up through the coordinate cache, falling back to
// the provider. Failures are logged, never fatal.
func (r *Resolver) geocode(ctx context.Context, address string) *LatLng {
	if r.coords != nil {
		if coords, ok := r.coords.Get(ctx, address); ok {
			return &coords
		}
	}

	coords, err := r.provider.Geocode(ctx, address)
	if err != nil {
		r.logger.Warn("geocode failed, omitting coordinates",
			zap.String("address", address),
			zap.Error(err),
		)
		return nil
	}

	if r.coords != nil {
		r.coords.Set(ctx, address, coords)
	}
	return &coords
}

// CachedResult returns the live cached result for a query, if present,
// without triggering any provider call.
func (r *Resolver) CachedResult(query RouteQuery) (*RouteResult, bool) {
	key := query.CacheKey()

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[key]
	if !ok || r.clock.Now().Sub(entry.createdAt) >= r.ttl {
		return nil, false
	}
	return entry.value, true
}

// Evict removes the cached entry for a query, if any.
func (r *Resolver) Evict(query RouteQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, query.CacheKey())
}
