package routing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubProvider counts calls and can block Directions until released.
type stubProvider struct {
	mu             sync.Mutex
	directionsN    int
	geocodeN       int
	directionsErr  error
	geocodeErr     error
	legs           RouteLegs
	blockDirection chan struct{}
}

func (p *stubProvider) Directions(ctx context.Context, pickup, dropoff string, stops []string) (RouteLegs, error) {
	p.mu.Lock()
	p.directionsN++
	block := p.blockDirection
	err := p.directionsErr
	legs := p.legs
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return RouteLegs{}, ctx.Err()
		}
	}
	if err != nil {
		return RouteLegs{}, err
	}
	return legs, nil
}

func (p *stubProvider) Geocode(ctx context.Context, address string) (LatLng, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.geocodeN++
	if p.geocodeErr != nil {
		return LatLng{}, p.geocodeErr
	}
	return LatLng{Lat: 40.64, Lng: -73.78}, nil
}

func (p *stubProvider) directionsCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.directionsN
}

func testLegs() RouteLegs {
	return RouteLegs{
		DistanceMeters:  16093, // ~10 miles
		DurationSeconds: 1800,
		DistanceText:    "10.0 mi",
		DurationText:    "30 mins",
	}
}

func newTestResolver(provider Provider, clock Clock, ttl time.Duration) *Resolver {
	return NewResolver(provider, NewMemoryCoordinateCache(10), clock, ttl, zap.NewNop())
}

func TestResolve_BlankPickupIsValidationErrorWithNoSideEffects(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	r := newTestResolver(provider, newFakeClock(), time.Minute)

	_, err := r.Resolve(context.Background(), RouteQuery{Pickup: "   ", Dropoff: "JFK Airport"})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Equal(t, 0, provider.directionsCalls())

	_, ok := r.CachedResult(RouteQuery{Pickup: "   ", Dropoff: "JFK Airport"})
	assert.False(t, ok)
}

func TestResolve_CacheHitSkipsProvider(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)
	query := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"}

	first, err := r.Resolve(context.Background(), query)
	require.NoError(t, err)

	second, err := r.Resolve(context.Background(), query)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, provider.directionsCalls())
}

func TestResolve_WhitespaceVariantsShareOneEntry(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)

	_, err := r.Resolve(context.Background(), RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport", Stops: []string{" ", ""}})
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), RouteQuery{Pickup: "  12 Main St ", Dropoff: "JFK Airport  "})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.directionsCalls())
}

func TestResolve_ExpiredEntryRefetches(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	clock := newFakeClock()
	r := newTestResolver(provider, clock, 10*time.Minute)
	query := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"}

	_, err := r.Resolve(context.Background(), query)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)

	_, ok := r.CachedResult(query)
	assert.False(t, ok, "expired entry must not be served")

	_, err = r.Resolve(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.directionsCalls())
}

func TestResolve_ConcurrentCallsCoalesce(t *testing.T) {
	release := make(chan struct{})
	provider := &stubProvider{legs: testLegs(), blockDirection: release}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)
	query := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"}

	var wg sync.WaitGroup
	results := make([]*RouteResult, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), query)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	// Let the goroutines pile onto the in-flight call, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, provider.directionsCalls())
	for _, res := range results[1:] {
		assert.Same(t, results[0], res)
	}
}

func TestResolve_WaiterTimesOutIndependently(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	provider := &stubProvider{legs: testLegs(), blockDirection: release}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)
	query := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"}

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = r.Resolve(context.Background(), query)
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, query)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTimeout))
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	provider := &stubProvider{directionsErr: errors.New("ZERO_RESULTS")}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)
	query := RouteQuery{Pickup: "nowhere", Dropoff: "JFK Airport"}

	_, err := r.Resolve(context.Background(), query)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeProvider))

	_, ok := r.CachedResult(query)
	assert.False(t, ok)

	_, err = r.Resolve(context.Background(), query)
	require.Error(t, err)
	assert.Equal(t, 2, provider.directionsCalls(), "failed key must be retried, not poisoned")
}

func TestResolve_GeocodeFailureDegradesGracefully(t *testing.T) {
	provider := &stubProvider{legs: testLegs(), geocodeErr: errors.New("quota exceeded")}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)

	res, err := r.Resolve(context.Background(), RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"})
	require.NoError(t, err)

	assert.Nil(t, res.PickupCoords)
	assert.Nil(t, res.DropoffCoords)
	assert.InDelta(t, 10.0, res.DistanceMiles, 0.01)
}

func TestResolve_StopDwellAddedPerValidStop(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)

	res, err := r.Resolve(context.Background(), RouteQuery{
		Pickup:  "12 Main St",
		Dropoff: "JFK Airport",
		Stops:   []string{"5 Oak Ave", "  ", "9 Elm St"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.ValidStopCount)
	// 30 transit minutes plus 15 dwell minutes per valid stop.
	assert.Equal(t, 60, res.DurationMinutes)
}

func TestEvict_RemovesEntry(t *testing.T) {
	provider := &stubProvider{legs: testLegs()}
	r := newTestResolver(provider, newFakeClock(), 10*time.Minute)
	query := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK Airport"}

	_, err := r.Resolve(context.Background(), query)
	require.NoError(t, err)

	r.Evict(query)

	_, ok := r.CachedResult(query)
	assert.False(t, ok)
}

func TestRouteQuery_CacheKey(t *testing.T) {
	a := RouteQuery{Pickup: " 12 Main St ", Dropoff: "JFK", Stops: []string{"", "5 Oak Ave", "  "}}
	b := RouteQuery{Pickup: "12 Main St", Dropoff: " JFK", Stops: []string{"5 Oak Ave"}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "12 Main St|5 Oak Ave|JFK", a.CacheKey())

	// Stop order is part of the identity.
	c := RouteQuery{Pickup: "12 Main St", Dropoff: "JFK", Stops: []string{"9 Elm St", "5 Oak Ave"}}
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}
