package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/domain/vehicle"
	"github.com/zemo-rentals/service-reservation/internal/kafka"
	"github.com/zemo-rentals/service-reservation/internal/repository"
)

// capturingPublisher records published events so tests can assert on the
// outbound stream without a broker.
type capturingPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	Topic string
	Key   string
	Type  string
}

func (p *capturingPublisher) PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Key: key, Type: event.Type})
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	bookings    *repository.MemoryBookingRepository
	vehicles    *repository.MemoryVehicleRepository
	extensions  *repository.MemoryExtensionRepository
	inspections *repository.MemoryInspectionRepository
	publisher   *capturingPublisher

	reservations *application.ReservationService
	extSvc       *application.ExtensionService
	inspSvc      *application.InspectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings:    repository.NewMemoryBookingRepository(),
		vehicles:    repository.NewMemoryVehicleRepository(),
		extensions:  repository.NewMemoryExtensionRepository(),
		inspections: repository.NewMemoryInspectionRepository(),
		publisher:   &capturingPublisher{},
	}
	log := zap.NewNop()
	f.reservations = application.NewReservationService(f.bookings, f.vehicles, nil, f.publisher, log)
	f.extSvc = application.NewExtensionService(f.bookings, f.extensions, nil, f.publisher, log)
	f.inspSvc = application.NewInspectionService(f.bookings, f.inspections, f.publisher, log)
	return f
}

func (f *fixture) seedVehicle(t *testing.T, instantBook bool) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.NewVehicle(uuid.New(), "Toyota", "Corolla", 2022, "BAC 1234", 25000, 100000, instantBook)
	require.NoError(t, err)
	f.vehicles.Add(v)
	return v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("request-to-book starts pending", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, false)
		renterID := uuid.New()

		dto, err := f.reservations.CreateBooking(ctx, renterID, application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, 3, dto.TotalDays)
		assert.Equal(t, int64(75000), dto.SubtotalCents)
		assert.Equal(t, int64(94500), dto.TotalCents)
		assert.Equal(t, int64(100000), dto.SecurityDepositCents)
		assert.Equal(t, v.HostID(), dto.HostID)
		assert.Contains(t, f.publisher.types(), reservation.EventBookingRequested)
		assert.NotContains(t, f.publisher.types(), reservation.EventBookingConfirmed)
	})

	t.Run("instant book confirms immediately", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, true)

		dto, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		assert.Equal(t, "confirmed", dto.Status)
		assert.NotNil(t, dto.ConfirmedAt)
		assert.Contains(t, f.publisher.types(), reservation.EventBookingConfirmed)
	})

	t.Run("overlapping window is a conflict", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, true)

		_, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 5),
		})
		require.NoError(t, err)

		_, err = f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 3),
			EndDate:   day(2026, 10, 7),
		})
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})

	t.Run("unlisted vehicle is rejected", func(t *testing.T) {
		f := newFixture(t)
		v := vehicle.Reconstruct(uuid.New(), uuid.New(), "Mazda", "Demio", 2019, "ABZ 9921",
			18000, 50000, vehicle.StatusMaintenance, false, true, time.Now().UTC(), time.Now().UTC())
		f.vehicles.Add(v)

		_, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		assert.True(t, domain.IsKind(err, domain.KindPreconditionFailed))
	})

	t.Run("unknown vehicle is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: uuid.New(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.seedVehicle(t, true)

	booked, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
		VehicleID: v.ID(),
		StartDate: day(2026, 10, 10),
		EndDate:   day(2026, 10, 15),
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
	}{
		{"inside the booked window", day(2026, 10, 11), day(2026, 10, 13), false},
		{"straddles the start", day(2026, 10, 8), day(2026, 10, 11), false},
		{"straddles the end", day(2026, 10, 14), day(2026, 10, 18), false},
		{"covers the whole window", day(2026, 10, 9), day(2026, 10, 16), false},
		{"ends on the start day", day(2026, 10, 7), day(2026, 10, 10), true},
		{"starts on the end day", day(2026, 10, 15), day(2026, 10, 18), true},
		{"far away", day(2026, 11, 1), day(2026, 11, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto, err := f.reservations.CheckAvailability(ctx, v.ID(), tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.available, dto.Available)
			if !tt.available {
				assert.Contains(t, dto.BlockerIDs, booked.ID)
			}
		})
	}

	t.Run("unlisted vehicle is unavailable without a date check", func(t *testing.T) {
		parked := vehicle.Reconstruct(uuid.New(), uuid.New(), "Mazda", "Demio", 2019, "ABZ 9921",
			18000, 50000, vehicle.StatusAvailable, false, false, time.Now().UTC(), time.Now().UTC())
		f.vehicles.Add(parked)

		dto, err := f.reservations.CheckAvailability(ctx, parked.ID(), day(2026, 11, 1), day(2026, 11, 3))
		require.NoError(t, err)
		assert.False(t, dto.Available)
		assert.Empty(t, dto.BlockerIDs)
	})
}

func TestConfirmBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("host confirms a pending booking", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, false)

		created, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		dto, err := f.reservations.ConfirmBooking(ctx, created.ID, v.HostID())
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
		assert.Contains(t, f.publisher.types(), reservation.EventBookingConfirmed)
	})

	t.Run("only the host may confirm", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, false)

		created, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		_, err = f.reservations.ConfirmBooking(ctx, created.ID, uuid.New())
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("payment capture confirms and repeats are idempotent", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, false)

		created, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		dto, err := f.reservations.ConfirmBookingFromPayment(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)

		again, err := f.reservations.ConfirmBookingFromPayment(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", again.Status)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("renter cancels and the window frees up", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, true)
		renterID := uuid.New()

		created, err := f.reservations.CreateBooking(ctx, renterID, application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		dto, err := f.reservations.CancelBooking(ctx, created.ID, renterID, "plans changed")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
		assert.Equal(t, "plans changed", dto.CancelReason)
		assert.Contains(t, f.publisher.types(), reservation.EventBookingCancelled)

		_, err = f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		assert.NoError(t, err)
	})

	t.Run("a stranger may not cancel", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, true)

		created, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: day(2026, 10, 1),
			EndDate:   day(2026, 10, 4),
		})
		require.NoError(t, err)

		_, err = f.reservations.CancelBooking(ctx, created.ID, uuid.New(), "")
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})
}

func TestGetBookingVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.seedVehicle(t, true)
	renterID := uuid.New()

	created, err := f.reservations.CreateBooking(ctx, renterID, application.CreateBookingInput{
		VehicleID: v.ID(),
		StartDate: day(2026, 10, 1),
		EndDate:   day(2026, 10, 4),
	})
	require.NoError(t, err)

	_, err = f.reservations.GetBooking(ctx, created.ID, renterID, false)
	assert.NoError(t, err)

	_, err = f.reservations.GetBooking(ctx, created.ID, v.HostID(), false)
	assert.NoError(t, err)

	_, err = f.reservations.GetBooking(ctx, created.ID, uuid.New(), false)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = f.reservations.GetBooking(ctx, created.ID, uuid.New(), true)
	assert.NoError(t, err, "admins see everything")

	byCode, err := f.reservations.GetBookingByCode(ctx, created.ConfirmationCode, renterID, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)
}

func TestExpireStalePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.seedVehicle(t, false)
	instant := f.seedVehicle(t, true)

	pending, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
		VehicleID: v.ID(),
		StartDate: day(2026, 10, 1),
		EndDate:   day(2026, 10, 4),
	})
	require.NoError(t, err)

	_, err = f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
		VehicleID: instant.ID(),
		StartDate: day(2026, 10, 1),
		EndDate:   day(2026, 10, 4),
	})
	require.NoError(t, err)

	// A cutoff in the future captures the hold created just above.
	expired, err := f.reservations.ExpireStalePending(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, expired, "only the pending hold expires")

	dto, err := f.reservations.GetBooking(ctx, pending.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, "expired", dto.Status)
	assert.Contains(t, f.publisher.types(), reservation.EventBookingExpired)

	// The expired hold no longer blocks the window.
	_, err = f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
		VehicleID: v.ID(),
		StartDate: day(2026, 10, 1),
		EndDate:   day(2026, 10, 4),
	})
	assert.NoError(t, err)
}

func TestGetQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.seedVehicle(t, true)

	dto, err := f.reservations.GetQuote(ctx, application.QuoteInput{
		VehicleID:             v.ID(),
		StartDate:             day(2026, 10, 1),
		EndDate:               day(2026, 10, 3),
		InsurancePremiumCents: 3000,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, dto.Days)
	assert.Equal(t, int64(50000), dto.SubtotalCents)
	assert.Equal(t, int64(5000), dto.ServiceFeeCents)
	assert.Equal(t, int64(8000), dto.TaxCents)
	assert.Equal(t, int64(3000), dto.InsuranceCents)
	assert.Equal(t, int64(66000), dto.TotalCents)
	assert.Equal(t, reservation.CurrencyZMW, dto.Currency)
}
