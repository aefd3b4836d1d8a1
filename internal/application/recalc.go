package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/domain/booking"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
	"github.com/skylift-transfers/service-shuttle/internal/pricing"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

// RecalcStage identifies which stage of a recalculation attempt failed.
type RecalcStage string

const (
	StageRoute   RecalcStage = "route"
	StagePricing RecalcStage = "pricing"
)

// StageError wraps a recalculation failure with the stage it occurred in, so
// the caller can tell a route fault from a pricing fault.
type StageError struct {
	Stage RecalcStage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("recalculation failed at %s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error.
func (e *StageError) Unwrap() error { return e.Err }

// RecalcResult carries the outcome of a successful recalculation: the
// resolved route, the raw pricing response, and the merged components with
// their derived breakdown. OutboundLegPrice is set only for round trips: the
// outbound leg priced with its pro-rata share of the payment-method discount.
type RecalcResult struct {
	Route            *routing.RouteResult
	Pricing          *pricing.CalculateResponse
	Components       fare.Components
	Breakdown        fare.Breakdown
	OutboundLegPrice *float64
}

// FareRecalculator drives a recalculation attempt through its stages:
// ensure a resolved route, call the remote pricing service, then merge the
// authoritative breakdown into the editable components.
type FareRecalculator struct {
	resolver  *routing.Resolver
	pricing   *pricing.Client
	logger    *zap.Logger
	routeWait time.Duration
}

// NewFareRecalculator creates a FareRecalculator. routeWait bounds how long
// a recalculation waits for route resolution (shared in-flight calls
// included) before reporting a distance-unavailable failure.
func NewFareRecalculator(resolver *routing.Resolver, pricingClient *pricing.Client, logger *zap.Logger) *FareRecalculator {
	return &FareRecalculator{
		resolver:  resolver,
		pricing:   pricingClient,
		logger:    logger,
		routeWait: 10 * time.Second,
	}
}

// Recalculate resolves the trip's route if needed, requests an authoritative
// breakdown from the pricing service, and merges it into the components.
// Server-computed fields (base price, stop and child-seat charges, round-trip
// discount) are overwritten; operator-entered surcharge and discount fields
// are left untouched. Failures report which stage failed.
func (r *FareRecalculator) Recalculate(ctx context.Context, trip booking.TripDetails, components fare.Components) (*RecalcResult, error) {
	route, err := r.ensureRoute(ctx, trip)
	if err != nil {
		return nil, &StageError{Stage: StageRoute, Err: err}
	}

	if route.DistanceMiles <= 0 || math.IsNaN(route.DistanceMiles) {
		return nil, &StageError{
			Stage: StageRoute,
			Err:   domain.NewValidationError("cannot calculate distance for this trip"),
		}
	}

	req := pricing.CalculateRequest{
		Pickup:          waypointFor(trip.PickupAddress, route.PickupCoords),
		Dropoff:         waypointFor(trip.DropoffAddress, route.DropoffCoords),
		Miles:           route.DistanceMiles,
		StopsCount:      route.ValidStopCount,
		ChildSeatsCount: trip.ChildSeats,
		IsRoundTrip:     trip.IsRoundTrip,
		VehicleTypeID:   trip.VehicleTypeID,
		PaymentMethod:   trip.PaymentMethod.String(),
	}

	resp, err := r.pricing.Calculate(ctx, req)
	if err != nil {
		r.logger.Warn("pricing calculation failed",
			zap.Float64("miles", route.DistanceMiles),
			zap.Error(err),
		)
		return nil, &StageError{Stage: StagePricing, Err: err}
	}

	merged := mergePricing(components, resp)
	result := &RecalcResult{
		Route:      route,
		Pricing:    resp,
		Components: merged,
		Breakdown:  fare.Compute(merged, trip.PaymentMethod),
	}
	if trip.IsRoundTrip {
		// The outbound leg is the combined subtotal minus the return
		// component; its share of any payment-method discount goes with it.
		leg := fare.SplitOutboundLeg(resp.Subtotal-resp.ReturnTripPrice, resp.Subtotal, resp.PaymentDiscount)
		result.OutboundLegPrice = &leg
	}
	return result, nil
}

// ensureRoute returns a live cached route for the trip or resolves one,
// waiting at most routeWait for an in-flight resolution of the same key.
func (r *FareRecalculator) ensureRoute(ctx context.Context, trip booking.TripDetails) (*routing.RouteResult, error) {
	query := routing.RouteQuery{
		Pickup:  trip.PickupAddress,
		Dropoff: trip.DropoffAddress,
		Stops:   trip.Stops,
	}

	if route, ok := r.resolver.CachedResult(query); ok {
		return route, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.routeWait)
	defer cancel()
	return r.resolver.Resolve(waitCtx, query)
}

// mergePricing overlays the server's authoritative fields onto the editable
// components. The pricing service folds distance, stop and return-trip
// charges into what the operator sees as the base price.
func mergePricing(components fare.Components, resp *pricing.CalculateResponse) fare.Components {
	merged := components
	merged.BasePrice = resp.BasePrice + resp.DistancePrice + resp.StopsCharge + resp.ReturnTripPrice
	merged.ChildSeatsCharge = resp.ChildSeatsCharge
	merged.RoundTripDiscount = resp.RoundTripDiscount
	return merged
}

func waypointFor(address string, coords *routing.LatLng) pricing.Waypoint {
	w := pricing.Waypoint{Address: address}
	if coords != nil {
		w.Lat = coords.Lat
		w.Lng = coords.Lng
	}
	return w
}
