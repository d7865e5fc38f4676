//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// TestPaymentCaptured_ConfirmsBooking verifies that when a
// PaymentCapturedEvent is published to payment.events, the reservation
// service picks it up and transitions the pending booking to
// "confirmed".
func TestPaymentCaptured_ConfirmsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a request-to-book vehicle and create a pending hold through
	// the service so the coordinator's own path produces the row.
	hostID := uuid.New()
	renterID := uuid.New()
	vehicleID := seedVehicle(t, infra.DB, hostID, false)

	start := time.Now().UTC().AddDate(0, 0, 7)
	created, err := stack.Service.CreateBooking(context.Background(), renterID, application.CreateBookingInput{
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	require.Equal(t, "pending", created.Status)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish PaymentCapturedEvent.
	evt := reservation.PaymentCapturedEvent{
		PaymentID:  uuid.New(),
		BookingID:  created.ID,
		Amount:     created.TotalCents,
		Currency:   "ZMW",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, reservation.TopicPaymentEvents,
		"service-payment", reservation.EventPaymentCaptured, created.ID.String(), evt)

	// Assert: booking transitions to "confirmed".
	model := waitForBookingStatus(t, infra.DB, created.ID, "confirmed", 15*time.Second)
	assert.NotNil(t, model.ConfirmedAt, "confirmed_at should be set")
	assert.Equal(t, int64(2), model.Version)

	// Assert: confirmation event on reservation.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, reservation.TopicReservationEvents,
		reservation.EventBookingConfirmed, 15*time.Second)

	var confirmed reservation.BookingEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, created.ID, confirmed.BookingID)
	assert.Equal(t, vehicleID, confirmed.VehicleID)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, created.TotalCents, confirmed.TotalCents)
	assert.Equal(t, "ZMW", confirmed.Currency)
}

// TestConcurrentCreates_OneWinner verifies that racing holds for the
// same vehicle and window serialize on the vehicle row and exactly one
// succeeds.
func TestConcurrentCreates_OneWinner(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	vehicleID := seedVehicle(t, infra.DB, uuid.New(), true)
	start := time.Now().UTC().AddDate(0, 0, 7)

	const n = 10
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := stack.Service.CreateBooking(context.Background(), uuid.New(), application.CreateBookingInput{
				VehicleID: vehicleID,
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 3),
			})
			results <- err
		}()
	}

	successes := 0
	for i := 0; i < n; i++ {
		if err := <-results; err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent create may win")
}
