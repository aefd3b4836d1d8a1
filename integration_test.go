//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylift-transfers/service-shuttle/internal/events"
)

// TestDispatchEvents_DriveBookingLifecycle verifies that trip lifecycle
// events published on dispatch.events move the booking through in_progress to
// completed, and that completion is announced on booking.events.
func TestDispatchEvents_DriveBookingLifecycle(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupShuttleStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a booking in "assigned" state.
	bookingID := uuid.New()
	customerID := uuid.New()
	driverID := uuid.New()
	vehicleID := uuid.New()
	seedBookingInAssignedState(t, infra.DB, bookingID, customerID, driverID, vehicleID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish TripStartedEvent.
	publishTestEvent(t, infra.KafkaBrokers, events.TopicDispatchEvents,
		"driver-app", events.TripStarted, events.TripStartedEvent{
			BookingID:  bookingID,
			DriverID:   driverID,
			OccurredAt: time.Now().UTC(),
		})

	// Assert: booking transitions to "in_progress" with started_at set.
	inProgress := waitForBookingStatus(t, infra.DB, bookingID, "in_progress", 15*time.Second)
	assert.NotNil(t, inProgress.StartedAt, "started_at should be set")

	// Publish TripCompletedEvent.
	publishTestEvent(t, infra.KafkaBrokers, events.TopicDispatchEvents,
		"driver-app", events.TripCompleted, events.TripCompletedEvent{
			BookingID:  bookingID,
			DriverID:   driverID,
			OccurredAt: time.Now().UTC(),
		})

	// Assert: booking transitions to "completed".
	completed := waitForBookingStatus(t, infra.DB, bookingID, "completed", 15*time.Second)
	assert.NotNil(t, completed.CompletedAt, "completed_at should be set")

	// Assert: BookingCompletedEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCompleted, 15*time.Second)

	var payload events.BookingCompletedEvent
	require.NoError(t, ce.ParseData(&payload))
	assert.Equal(t, bookingID, payload.BookingID)
	assert.Equal(t, driverID, payload.DriverID)
	assert.InDelta(t, 85.0, payload.Total, 1e-9)
}
