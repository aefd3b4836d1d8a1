package booking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

func validTrip() TripDetails {
	return TripDetails{
		PickupAddress:  "12 Main St",
		DropoffAddress: "JFK Airport",
		Passengers:     2,
		ChildSeats:     1,
		PaymentMethod:  fare.PaymentCash,
		VehicleTypeID:  "sedan",
	}
}

func validContact() Contact {
	return Contact{Name: "Dana Reyes", Email: "dana@example.com", Phone: "+1 555 0100"}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(uuid.New(), validContact(), validTrip(), nil, fare.Components{BasePrice: 80}, "")
	require.NoError(t, err)
	return bk
}

func TestNewBooking_Defaults(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.True(t, strings.HasPrefix(bk.BookingNumber(), "SH-"))
	assert.Len(t, bk.BookingNumber(), 9)
	assert.Equal(t, int64(1), bk.Version())
	assert.Nil(t, bk.DriverID())

	// The breakdown is derived at creation from the components.
	assert.InDelta(t, 80.0, bk.FareBreakdown().Total, 1e-9)
}

func TestNewBooking_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TripDetails, *Contact) uuid.UUID
	}{
		{"missing customer", func(trip *TripDetails, c *Contact) uuid.UUID { return uuid.Nil }},
		{"missing contact name", func(trip *TripDetails, c *Contact) uuid.UUID {
			c.Name = ""
			return uuid.New()
		}},
		{"blank pickup", func(trip *TripDetails, c *Contact) uuid.UUID {
			trip.PickupAddress = "   "
			return uuid.New()
		}},
		{"blank dropoff", func(trip *TripDetails, c *Contact) uuid.UUID {
			trip.DropoffAddress = ""
			return uuid.New()
		}},
		{"zero passengers", func(trip *TripDetails, c *Contact) uuid.UUID {
			trip.Passengers = 0
			return uuid.New()
		}},
		{"negative child seats", func(trip *TripDetails, c *Contact) uuid.UUID {
			trip.ChildSeats = -1
			return uuid.New()
		}},
		{"invalid payment method", func(trip *TripDetails, c *Contact) uuid.UUID {
			trip.PaymentMethod = "barter"
			return uuid.New()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validTrip()
			contact := validContact()
			customerID := tt.mutate(&trip, &contact)

			_, err := NewBooking(customerID, contact, trip, nil, fare.Components{}, "")
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeValidation))
		})
	}
}

func TestBooking_Lifecycle(t *testing.T) {
	bk := newTestBooking(t)
	driverID, vehicleID := uuid.New(), uuid.New()

	require.NoError(t, bk.Confirm())
	assert.Equal(t, StatusConfirmed, bk.Status())

	require.NoError(t, bk.AssignDriver(driverID, vehicleID))
	assert.Equal(t, StatusAssigned, bk.Status())
	assert.Equal(t, driverID, *bk.DriverID())
	assert.Equal(t, vehicleID, *bk.VehicleID())

	require.NoError(t, bk.Start())
	assert.Equal(t, StatusInProgress, bk.Status())
	assert.NotNil(t, bk.StartedAt())

	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.NotNil(t, bk.CompletedAt())
}

func TestBooking_InvalidTransitionsConflict(t *testing.T) {
	bk := newTestBooking(t)

	// Cannot start or complete a pending booking.
	err := bk.Start()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))

	err = bk.Complete()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))

	// Cannot assign a driver before confirmation.
	err = bk.AssignDriver(uuid.New(), uuid.New())
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestBooking_CancelBeforeTerminal(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("customer changed plans"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "customer changed plans", bk.CancelNote())
	assert.NotNil(t, bk.CancelledAt())

	// A cancelled booking is terminal.
	err := bk.Confirm()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestBooking_CancelAfterCompletionRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.AssignDriver(uuid.New(), uuid.New()))
	require.NoError(t, bk.Start())
	require.NoError(t, bk.Complete())

	err := bk.Cancel("too late")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestBooking_ApplyFareRederivesBreakdown(t *testing.T) {
	bk := newTestBooking(t)

	bk.ApplyFare(fare.Components{BasePrice: 100, GratuityFixed: 20})

	assert.InDelta(t, 120.0, bk.FareBreakdown().Total, 1e-9)
	assert.InDelta(t, 100.0, bk.FareComponents().BasePrice, 1e-9)
}

func TestBooking_ChangePaymentMethodRecomputesLocally(t *testing.T) {
	bk, err := NewBooking(uuid.New(), validContact(), validTrip(), nil, fare.Components{
		BasePrice:            65,
		CreditCardFeePercent: 3,
		CreditCardFeeFixed:   1,
	}, "")
	require.NoError(t, err)
	require.InDelta(t, 65.0, bk.FareBreakdown().Total, 1e-9)

	require.NoError(t, bk.ChangePaymentMethod(fare.PaymentCreditCard))
	assert.InDelta(t, 67.95, bk.FareBreakdown().Total, 1e-9)

	// Switching back is lossless.
	require.NoError(t, bk.ChangePaymentMethod(fare.PaymentCash))
	assert.InDelta(t, 65.0, bk.FareBreakdown().Total, 1e-9)

	err = bk.ChangePaymentMethod("barter")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestBooking_BookingNumberExcludesAmbiguousChars(t *testing.T) {
	for i := 0; i < 50; i++ {
		bk := newTestBooking(t)
		suffix := strings.TrimPrefix(bk.BookingNumber(), "SH-")
		assert.NotContains(t, suffix, "O")
		assert.NotContains(t, suffix, "0")
		assert.NotContains(t, suffix, "I")
		assert.NotContains(t, suffix, "1")
	}
}
