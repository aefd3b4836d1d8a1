package application

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/events"
	"github.com/skylift-transfers/service-shuttle/internal/platform/kafka"
)

// DispatchEventConsumer consumes trip lifecycle events reported by the driver
// app and advances the matching bookings. Malformed messages and unknown
// event types are logged and skipped, never retried.
type DispatchEventConsumer struct {
	consumer *kafka.Consumer
	bookings *BookingService
	logger   *zap.Logger
}

// NewDispatchEventConsumer creates a consumer for the dispatch.events topic.
func NewDispatchEventConsumer(brokers []string, groupID string, bookings *BookingService, logger *zap.Logger) *DispatchEventConsumer {
	return &DispatchEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, events.TopicDispatchEvents, logger),
		bookings: bookings,
		logger:   logger,
	}
}

// Start consumes until the context is cancelled.
func (c *DispatchEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("dispatch event consumer started",
		zap.String("topic", events.TopicDispatchEvents),
	)
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying reader.
func (c *DispatchEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DispatchEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var event kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("skipping malformed dispatch event",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	switch event.Type {
	case events.TripStarted:
		var payload events.TripStartedEvent
		if err := event.ParseData(&payload); err != nil {
			c.logger.Warn("skipping malformed trip started payload", zap.Error(err))
			return nil
		}
		if _, err := c.bookings.StartTrip(ctx, payload.BookingID); err != nil {
			return fmt.Errorf("failed to start trip for booking %s: %w", payload.BookingID, err)
		}
		c.logger.Info("trip started",
			zap.String("booking_id", payload.BookingID.String()),
			zap.String("driver_id", payload.DriverID.String()),
		)

	case events.TripCompleted:
		var payload events.TripCompletedEvent
		if err := event.ParseData(&payload); err != nil {
			c.logger.Warn("skipping malformed trip completed payload", zap.Error(err))
			return nil
		}
		if _, err := c.bookings.CompleteTrip(ctx, payload.BookingID); err != nil {
			return fmt.Errorf("failed to complete trip for booking %s: %w", payload.BookingID, err)
		}
		c.logger.Info("trip completed",
			zap.String("booking_id", payload.BookingID.String()),
			zap.String("driver_id", payload.DriverID.String()),
		)

	default:
		c.logger.Debug("ignoring dispatch event", zap.String("type", event.Type))
	}

	return nil
}
