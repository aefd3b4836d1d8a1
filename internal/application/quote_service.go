package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/domain/booking"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

// QuoteRequest describes a trip being priced in the booking wizard. The
// components carry any operator edits already made in the session; server
// fields inside them are overwritten on each recalculation.
type QuoteRequest struct {
	PickupAddress  string          `json:"pickup_address" binding:"required"`
	DropoffAddress string          `json:"dropoff_address" binding:"required"`
	Stops          []string        `json:"stops"`
	Passengers     int             `json:"passengers"`
	ChildSeats     int             `json:"child_seats"`
	IsRoundTrip    bool            `json:"is_round_trip"`
	PaymentMethod  string          `json:"payment_method" binding:"required"`
	VehicleTypeID  string          `json:"vehicle_type_id" binding:"required"`
	Components     fare.Components `json:"components"`
}

// QuoteDTO is the wizard's view of a priced trip. OutboundLegPrice is present
// only for round trips: what the outbound leg alone costs once the
// payment-method discount is split pro rata between the legs.
type QuoteDTO struct {
	Route            *routing.RouteResult `json:"route"`
	Components       fare.Components      `json:"components"`
	Breakdown        fare.Breakdown       `json:"breakdown"`
	OutboundLegPrice *float64             `json:"outbound_leg_price,omitempty"`
	AreaName         string               `json:"area_name,omitempty"`
	SurgeName        string               `json:"surge_name,omitempty"`
}

// QuoteService prices trips for the booking wizard. Quotes are ephemeral:
// nothing here touches the database.
type QuoteService struct {
	recalculator *FareRecalculator
	resolver     *routing.Resolver
	debouncer    *routing.Debouncer
	logger       *zap.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(recalculator *FareRecalculator, resolver *routing.Resolver, debouncer *routing.Debouncer, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		recalculator: recalculator,
		resolver:     resolver,
		debouncer:    debouncer,
		logger:       logger,
	}
}

// Quote resolves the route and prices the trip, carrying forward any operator
// edits present in the request's components.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteDTO, error) {
	method, err := fare.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	trip := booking.TripDetails{
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Stops:          req.Stops,
		Passengers:     req.Passengers,
		ChildSeats:     req.ChildSeats,
		IsRoundTrip:    req.IsRoundTrip,
		PaymentMethod:  method,
		VehicleTypeID:  req.VehicleTypeID,
	}

	result, err := s.recalculator.Recalculate(ctx, trip, req.Components)
	if err != nil {
		return nil, err
	}

	dto := &QuoteDTO{
		Route:            result.Route,
		Components:       result.Components,
		Breakdown:        result.Breakdown,
		OutboundLegPrice: result.OutboundLegPrice,
	}
	if result.Pricing != nil {
		dto.AreaName = result.Pricing.AreaName
		dto.SurgeName = result.Pricing.SurgeName
	}
	return dto, nil
}

// LocalQuote re-derives the breakdown from components already on hand. Used
// for edits that change no pricing input: component value edits and payment
// method switches never leave the process.
func (s *QuoteService) LocalQuote(components fare.Components, paymentMethod string) (*QuoteDTO, error) {
	method, err := fare.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	return &QuoteDTO{
		Components: components,
		Breakdown:  fare.Compute(components, method),
	}, nil
}

// PrefetchRoute warms the route cache for a wizard session after its quiet
// window elapses. Each session key rearms its own timer, so a typing burst
// yields a single resolution. The fetch is detached from the caller's request.
func (s *QuoteService) PrefetchRoute(sessionKey string, query routing.RouteQuery) {
	s.debouncer.Schedule(sessionKey, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if _, err := s.resolver.Resolve(ctx, query); err != nil {
			s.logger.Debug("route prefetch failed",
				zap.String("session", sessionKey),
				zap.Error(err),
			)
		}
	})
}

// CancelPrefetch drops any pending route prefetch for the session.
func (s *QuoteService) CancelPrefetch(sessionKey string) {
	s.debouncer.Cancel(sessionKey)
}
