//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skylift-transfers/service-shuttle/internal/application"
	"github.com/skylift-transfers/service-shuttle/internal/events"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/kafka"
	"github.com/skylift-transfers/service-shuttle/internal/pricing"
	"github.com/skylift-transfers/service-shuttle/internal/repository"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// shuttleStack holds wired-up shuttle service components.
type shuttleStack struct {
	Service         *application.BookingService
	Consumer        *application.DispatchEventConsumer
	CleanupProducer func()
}

// fixedRouteProvider serves a fixed route so no external maps call is needed.
type fixedRouteProvider struct{}

func (fixedRouteProvider) Directions(ctx context.Context, pickup, dropoff string, stops []string) (routing.RouteLegs, error) {
	return routing.RouteLegs{
		DistanceMeters:  22531,
		DurationSeconds: 2100,
		DistanceText:    "14.0 mi",
		DurationText:    "35 mins",
	}, nil
}

func (fixedRouteProvider) Geocode(ctx context.Context, address string) (routing.LatLng, error) {
	return routing.LatLng{Lat: 40.6413, Lng: -73.7781}, nil
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_shuttle",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_shuttle sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.DriverModel{},
		&repository.VehicleModel{},
		&repository.EmailTemplateModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, events.TopicBookingEvents, events.TopicDispatchEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupShuttleStack wires up the full shuttle service stack.
func setupShuttleStack(t *testing.T, db *gorm.DB, brokers []string) *shuttleStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	driverRepo := repository.NewGormDriverRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)

	resolver := routing.NewResolver(fixedRouteProvider{}, routing.NewMemoryCoordinateCache(10), routing.SystemClock{}, 10*time.Minute, logger)
	pricingClient := pricing.NewClient("http://127.0.0.1:1") // unused by trip lifecycle paths
	recalculator := application.NewFareRecalculator(resolver, pricingClient, logger)

	producer := kafka.NewProducer(brokers, logger)
	bookingSvc := application.NewBookingService(bookingRepo, driverRepo, vehicleRepo, recalculator, producer, logger)

	groupID := fmt.Sprintf("test-shuttle-%s", uuid.New().String()[:8])
	consumer := application.NewDispatchEventConsumer(brokers, groupID, bookingSvc, logger)

	return &shuttleStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedBookingInAssignedState inserts an assigned booking ready for dispatch events.
func seedBookingInAssignedState(t *testing.T, db *gorm.DB, bookingID, customerID, driverID, vehicleID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()

	contact, _ := json.Marshal(map[string]interface{}{
		"name": "Test Customer", "email": "test@example.com", "phone": "+1 555 0100",
	})
	trip, _ := json.Marshal(map[string]interface{}{
		"pickup_address":  "12 Main St",
		"dropoff_address": "JFK Airport",
		"passengers":      2,
		"child_seats":     0,
		"is_round_trip":   false,
		"payment_method":  "cash",
		"vehicle_type_id": "sedan",
	})
	components, _ := json.Marshal(fare.Components{BasePrice: 85})
	breakdown, _ := json.Marshal(fare.Compute(fare.Components{BasePrice: 85}, fare.PaymentCash))

	model := repository.BookingModel{
		ID:             bookingID,
		BookingNumber:  fmt.Sprintf("SH-INT%s", uuid.New().String()[:3]),
		CustomerID:     customerID,
		DriverID:       &driverID,
		VehicleID:      &vehicleID,
		Status:         "assigned",
		Contact:        contact,
		Trip:           trip,
		FareComponents: components,
		FareBreakdown:  breakdown,
		Notes:          "integration test",
		Version:        3,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to dial Kafka controller")
	defer func() { _ = controllerConn.Close() }()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(configs...), "failed to create topics")
}
