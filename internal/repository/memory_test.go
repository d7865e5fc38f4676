package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/repository"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func makeBooking(t *testing.T, vehicleID uuid.UUID, start, end time.Time) *reservation.Booking {
	t.Helper()
	dates := reservation.MustDateRange(start, end)
	quote, err := reservation.CalculateQuote(20000, dates, 0)
	require.NoError(t, err)

	b, err := reservation.NewBooking(reservation.NewBookingParams{
		VehicleID: vehicleID,
		RenterID:  uuid.New(),
		HostID:    uuid.New(),
		Dates:     dates,
		Quote:     quote,
	})
	require.NoError(t, err)
	return b
}

func TestMemoryBookingRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an overlapping window with blocker ids", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		first := makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))
		require.NoError(t, repo.Create(ctx, first))

		second := makeBooking(t, vehicleID, day(2026, 6, 3), day(2026, 6, 7))
		err := repo.Create(ctx, second)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindConflict))

		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		ids, ok := derr.Details["conflicting_booking_ids"].([]string)
		require.True(t, ok)
		assert.Contains(t, ids, first.ID().String())
	})

	t.Run("allows back-to-back bookings", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		require.NoError(t, repo.Create(ctx, makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))))
		require.NoError(t, repo.Create(ctx, makeBooking(t, vehicleID, day(2026, 6, 5), day(2026, 6, 9))))
	})

	t.Run("cancelled bookings never block", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		first := makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, first.Cancel("plans changed"))
		require.NoError(t, repo.Update(ctx, first))

		require.NoError(t, repo.Create(ctx, makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))))
	})

	t.Run("other vehicles never block", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()

		require.NoError(t, repo.Create(ctx, makeBooking(t, uuid.New(), day(2026, 6, 1), day(2026, 6, 5))))
		require.NoError(t, repo.Create(ctx, makeBooking(t, uuid.New(), day(2026, 6, 1), day(2026, 6, 5))))
	})
}

// Exactly one of N racing requests for the same window may win.
func TestMemoryBookingRepositoryConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryBookingRepository()
	vehicleID := uuid.New()

	const n = 50
	results := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		bk := makeBooking(t, vehicleID, day(2026, 7, 1), day(2026, 7, 5))
		wg.Add(1)
		go func(i int, bk *reservation.Booking) {
			defer wg.Done()
			<-start
			results[i] = repo.Create(ctx, bk)
		}(i, bk)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.True(t, domain.IsKind(err, domain.KindConflict))
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent create may win")
}

func TestMemoryBookingRepositoryExtend(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a taken delta window", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		bk := makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))
		require.NoError(t, repo.Create(ctx, bk))
		next := makeBooking(t, vehicleID, day(2026, 6, 6), day(2026, 6, 9))
		require.NoError(t, repo.Create(ctx, next))

		delta := reservation.MustDateRange(day(2026, 6, 5), day(2026, 6, 8))
		err := repo.Extend(ctx, bk, delta)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})

	t.Run("a rejected extend leaves the stored booking untouched", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		bk := makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))
		require.NoError(t, bk.Confirm())
		require.NoError(t, repo.Create(ctx, bk))
		next := makeBooking(t, vehicleID, day(2026, 6, 6), day(2026, 6, 9))
		require.NoError(t, repo.Create(ctx, next))

		// Mutate the caller's aggregate before the atomic re-check, the
		// way the approval flow does.
		deltaQuote, err := reservation.CalculateExtensionQuote(bk.DailyRateCents(), bk.EndDate(), day(2026, 6, 8))
		require.NoError(t, err)
		require.NoError(t, bk.ApplyExtension(day(2026, 6, 8), deltaQuote))
		bk.IncrementVersion()

		delta := reservation.MustDateRange(day(2026, 6, 5), day(2026, 6, 8))
		err = repo.Extend(ctx, bk, delta)
		require.True(t, domain.IsKind(err, domain.KindConflict))

		stored, err := repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)
		assert.True(t, stored.EndDate().Equal(day(2026, 6, 5)))
		assert.Equal(t, 4, stored.TotalDays())
		assert.Equal(t, int64(1), stored.Version())
	})

	t.Run("own booking does not block its extension", func(t *testing.T) {
		repo := repository.NewMemoryBookingRepository()
		vehicleID := uuid.New()

		bk := makeBooking(t, vehicleID, day(2026, 6, 1), day(2026, 6, 5))
		require.NoError(t, repo.Create(ctx, bk))

		delta := reservation.MustDateRange(day(2026, 6, 5), day(2026, 6, 8))
		require.NoError(t, repo.Extend(ctx, bk, delta))
	})
}

func TestMemoryBookingRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryBookingRepository()

	bk := makeBooking(t, uuid.New(), day(2026, 6, 1), day(2026, 6, 5))
	require.NoError(t, repo.Create(ctx, bk))

	t.Run("find by confirmation code", func(t *testing.T) {
		found, err := repo.FindByConfirmationCode(ctx, bk.ConfirmationCode())
		require.NoError(t, err)
		assert.Equal(t, bk.ID(), found.ID())

		_, err = repo.FindByConfirmationCode(ctx, "RV-UNKNOWN")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("renter listing paginates", func(t *testing.T) {
		items, total, err := repo.FindByRenterID(ctx, bk.RenterID(), 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
	})

	t.Run("host listing filters by status", func(t *testing.T) {
		pending := reservation.StatusPending
		items, total, err := repo.FindByHostID(ctx, bk.HostID(), &pending, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)

		completed := reservation.StatusCompleted
		_, total, err = repo.FindByHostID(ctx, bk.HostID(), &completed, 1, 20)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["pending"])
	})
}
