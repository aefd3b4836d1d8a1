package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/domain/booking"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
	"github.com/skylift-transfers/service-shuttle/internal/pricing"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

// stubRouteProvider serves fixed directions and geocode results.
type stubRouteProvider struct {
	mu            sync.Mutex
	directionsN   int
	legs          routing.RouteLegs
	directionsErr error
}

func (p *stubRouteProvider) Directions(ctx context.Context, pickup, dropoff string, stops []string) (routing.RouteLegs, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.directionsN++
	if p.directionsErr != nil {
		return routing.RouteLegs{}, p.directionsErr
	}
	return p.legs, nil
}

func (p *stubRouteProvider) Geocode(ctx context.Context, address string) (routing.LatLng, error) {
	return routing.LatLng{Lat: 40.64, Lng: -73.78}, nil
}

func (p *stubRouteProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.directionsN
}

func milesLegs(miles float64) routing.RouteLegs {
	return routing.RouteLegs{
		DistanceMeters:  int(miles * 1609.344),
		DurationSeconds: 1800,
		DistanceText:    "some distance",
		DurationText:    "30 mins",
	}
}

func pricingServer(t *testing.T, resp pricing.CalculateResponse) (*httptest.Server, *pricing.CalculateRequest) {
	t.Helper()
	var captured pricing.CalculateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func newRecalculator(provider routing.Provider, pricingURL string) (*FareRecalculator, *routing.Resolver) {
	resolver := routing.NewResolver(provider, routing.NewMemoryCoordinateCache(10), routing.SystemClock{}, 10*time.Minute, zap.NewNop())
	return NewFareRecalculator(resolver, pricing.NewClient(pricingURL), zap.NewNop()), resolver
}

func testTrip() booking.TripDetails {
	return booking.TripDetails{
		PickupAddress:  "12 Main St",
		DropoffAddress: "JFK Airport",
		Stops:          []string{"5 Oak Ave"},
		Passengers:     2,
		ChildSeats:     1,
		IsRoundTrip:    true,
		PaymentMethod:  fare.PaymentCash,
		VehicleTypeID:  "sedan",
	}
}

func TestRecalculate_MergesServerFieldsAndKeepsOperatorEdits(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(12)}
	server, captured := pricingServer(t, pricing.CalculateResponse{
		BasePrice:         30,
		DistancePrice:     24,
		StopsCharge:       5,
		ReturnTripPrice:   41,
		ChildSeatsCharge:  10,
		RoundTripDiscount: 10,
	})
	recalc, _ := newRecalculator(provider, server.URL)

	components := fare.Components{
		BasePrice:     999, // stale; must be overwritten
		GratuityFixed: 15,  // operator edit; must survive
		DiscountFixed: 5,
	}

	result, err := recalc.Recalculate(context.Background(), testTrip(), components)
	require.NoError(t, err)

	// Server-owned fields are replaced.
	assert.InDelta(t, 100.0, result.Components.BasePrice, 1e-9) // 30+24+5+41
	assert.InDelta(t, 10.0, result.Components.ChildSeatsCharge, 1e-9)
	assert.InDelta(t, 10.0, result.Components.RoundTripDiscount, 1e-9)

	// Operator-owned fields survive the merge.
	assert.InDelta(t, 15.0, result.Components.GratuityFixed, 1e-9)
	assert.InDelta(t, 5.0, result.Components.DiscountFixed, 1e-9)

	// 100 + 10 - 5 - 10 + 15 = 110
	assert.InDelta(t, 110.0, result.Breakdown.Total, 1e-9)

	// The pricing request carries the resolved route, not raw input.
	assert.InDelta(t, 12.0, captured.Miles, 0.01)
	assert.Equal(t, 1, captured.StopsCount)
	assert.True(t, captured.IsRoundTrip)
	assert.Equal(t, "cash", captured.PaymentMethod)
}

func TestRecalculate_RoundTripSplitsOutboundLeg(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(10)}
	server, _ := pricingServer(t, pricing.CalculateResponse{
		BasePrice:       60,
		DistancePrice:   30,
		StopsCharge:     10,
		ReturnTripPrice: 100,
		Subtotal:        200,
		PaymentDiscount: 20,
	})
	recalc, _ := newRecalculator(provider, server.URL)

	result, err := recalc.Recalculate(context.Background(), testTrip(), fare.Components{})
	require.NoError(t, err)

	// The outbound leg is 100 of the 200 subtotal, so it carries half of the
	// 20 payment discount.
	require.NotNil(t, result.OutboundLegPrice)
	assert.InDelta(t, 90.0, *result.OutboundLegPrice, 1e-9)
}

func TestRecalculate_OneWayTripHasNoLegSplit(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(10)}
	server, _ := pricingServer(t, pricing.CalculateResponse{BasePrice: 60, Subtotal: 60})
	recalc, _ := newRecalculator(provider, server.URL)

	trip := testTrip()
	trip.IsRoundTrip = false

	result, err := recalc.Recalculate(context.Background(), trip, fare.Components{})
	require.NoError(t, err)
	assert.Nil(t, result.OutboundLegPrice)
}

func TestRecalculate_RouteFailureReportsRouteStage(t *testing.T) {
	provider := &stubRouteProvider{directionsErr: errors.New("NOT_FOUND")}
	server, _ := pricingServer(t, pricing.CalculateResponse{})
	recalc, _ := newRecalculator(provider, server.URL)

	_, err := recalc.Recalculate(context.Background(), testTrip(), fare.Components{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRoute, stageErr.Stage)
	assert.True(t, domain.IsCode(err, domain.CodeProvider))
}

func TestRecalculate_ZeroDistanceIsRouteValidationFailure(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(0)}
	server, _ := pricingServer(t, pricing.CalculateResponse{})
	recalc, _ := newRecalculator(provider, server.URL)

	_, err := recalc.Recalculate(context.Background(), testTrip(), fare.Components{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRoute, stageErr.Stage)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestRecalculate_PricingFailureReportsPricingStage(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(8)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "no pricing area covers this route"})
	}))
	defer server.Close()
	recalc, _ := newRecalculator(provider, server.URL)

	_, err := recalc.Recalculate(context.Background(), testTrip(), fare.Components{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePricing, stageErr.Stage)

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "no pricing area covers this route", appErr.Message)
}

func TestRecalculate_ReusesCachedRoute(t *testing.T) {
	provider := &stubRouteProvider{legs: milesLegs(8)}
	server, _ := pricingServer(t, pricing.CalculateResponse{BasePrice: 40})
	recalc, resolver := newRecalculator(provider, server.URL)

	trip := testTrip()
	_, err := resolver.Resolve(context.Background(), routing.RouteQuery{
		Pickup:  trip.PickupAddress,
		Dropoff: trip.DropoffAddress,
		Stops:   trip.Stops,
	})
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls())

	_, err = recalc.Recalculate(context.Background(), trip, fare.Components{})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls(), "a live cached route must not trigger a second provider call")
}
