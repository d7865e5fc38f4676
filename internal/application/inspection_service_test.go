package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

func inspectionPhotos() []inspection.Photo {
	return []inspection.Photo{
		{URL: "https://cdn.example.com/1.jpg", Category: inspection.PhotoExteriorFront},
		{URL: "https://cdn.example.com/2.jpg", Category: inspection.PhotoExteriorRear},
		{URL: "https://cdn.example.com/3.jpg", Category: inspection.PhotoInterior},
		{URL: "https://cdn.example.com/4.jpg", Category: inspection.PhotoOdometer},
	}
}

// seedStartedBooking books an instant-book vehicle on a window that
// began yesterday, so the pickup gate on the start date is open.
func seedStartedBooking(t *testing.T, f *fixture, renterID uuid.UUID) (*application.BookingDTO, uuid.UUID) {
	t.Helper()
	v := f.seedVehicle(t, true)
	now := time.Now().UTC()
	dto, err := f.reservations.CreateBooking(context.Background(), renterID, application.CreateBookingInput{
		VehicleID: v.ID(),
		StartDate: now.AddDate(0, 0, -1),
		EndDate:   now.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Equal(t, "confirmed", dto.Status)
	return dto, v.HostID()
}

func pickupInput(bookingID uuid.UUID) application.SubmitInspectionInput {
	return application.SubmitInspectionInput{
		BookingID: bookingID,
		MileageKm: 42000,
		FuelLevel: 0.8,
		Photos:    inspectionPhotos(),
	}
}

func TestSubmitPickupInspection(t *testing.T) {
	ctx := context.Background()

	t.Run("recording pickup starts the trip", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := seedStartedBooking(t, f, uuid.New())

		outcome, err := f.inspSvc.SubmitPickupInspection(ctx, hostID, pickupInput(bk.ID))
		require.NoError(t, err)

		assert.Equal(t, "active", outcome.Booking.Status)
		assert.Equal(t, string(inspection.TypePickup), outcome.Inspection.Type)
		assert.Nil(t, outcome.Settlement)
		assert.Contains(t, f.publisher.types(), reservation.EventTripStarted)
	})

	t.Run("only the host records pickup", func(t *testing.T) {
		f := newFixture(t)
		renterID := uuid.New()
		bk, _ := seedStartedBooking(t, f, renterID)

		_, err := f.inspSvc.SubmitPickupInspection(ctx, renterID, pickupInput(bk.ID))
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("pending booking cannot start a trip", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, false)
		now := time.Now().UTC()

		bk, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: now.AddDate(0, 0, -1),
			EndDate:   now.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		_, err = f.inspSvc.SubmitPickupInspection(ctx, v.HostID(), pickupInput(bk.ID))
		assert.True(t, domain.IsKind(err, domain.KindPreconditionFailed))
	})

	t.Run("pickup cannot happen before the start date", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVehicle(t, true)
		now := time.Now().UTC()

		bk, err := f.reservations.CreateBooking(ctx, uuid.New(), application.CreateBookingInput{
			VehicleID: v.ID(),
			StartDate: now.AddDate(0, 0, 2),
			EndDate:   now.AddDate(0, 0, 5),
		})
		require.NoError(t, err)

		_, err = f.inspSvc.SubmitPickupInspection(ctx, v.HostID(), pickupInput(bk.ID))
		assert.True(t, domain.IsKind(err, domain.KindPreconditionFailed))
	})

	t.Run("a second pickup is refused", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := seedStartedBooking(t, f, uuid.New())

		_, err := f.inspSvc.SubmitPickupInspection(ctx, hostID, pickupInput(bk.ID))
		require.NoError(t, err)

		_, err = f.inspSvc.SubmitPickupInspection(ctx, hostID, pickupInput(bk.ID))
		assert.True(t, domain.IsKind(err, domain.KindPreconditionFailed))
	})
}

func TestSubmitReturnInspection(t *testing.T) {
	ctx := context.Background()

	startTrip := func(t *testing.T, f *fixture, renterID uuid.UUID) (*application.BookingDTO, uuid.UUID) {
		t.Helper()
		bk, hostID := seedStartedBooking(t, f, renterID)
		_, err := f.inspSvc.SubmitPickupInspection(ctx, hostID, pickupInput(bk.ID))
		require.NoError(t, err)
		return bk, hostID
	}

	t.Run("clean return completes the trip and refunds the deposit", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := startTrip(t, f, uuid.New())

		outcome, err := f.inspSvc.SubmitReturnInspection(ctx, hostID, application.SubmitInspectionInput{
			BookingID: bk.ID,
			MileageKm: 42100,
			FuelLevel: 0.8,
			Photos:    inspectionPhotos(),
		})
		require.NoError(t, err)

		assert.Equal(t, "completed", outcome.Booking.Status)
		require.NotNil(t, outcome.Settlement)
		assert.Equal(t, bk.SecurityDepositCents, outcome.Settlement.FinalReturnCents)
		assert.Zero(t, outcome.Settlement.AdjustmentCents)
		assert.Contains(t, f.publisher.types(), reservation.EventBookingCompleted)
		assert.Contains(t, f.publisher.types(), reservation.EventDepositSettlement)
	})

	t.Run("new damage is charged against the deposit", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := startTrip(t, f, uuid.New())

		outcome, err := f.inspSvc.SubmitReturnInspection(ctx, hostID, application.SubmitInspectionInput{
			BookingID: bk.ID,
			MileageKm: 42100,
			FuelLevel: 0.8,
			Photos:    inspectionPhotos(),
			Damages: []inspection.DamageItem{
				{Category: inspection.CategoryScratch, Severity: inspection.SeverityMinor, Location: "hood"},
			},
		})
		require.NoError(t, err)

		require.NotNil(t, outcome.Settlement)
		assert.Equal(t, int64(11250), outcome.Settlement.DamagePenaltyCents)
		assert.Equal(t, bk.SecurityDepositCents-11250, outcome.Settlement.FinalReturnCents)
		assert.Equal(t, 1, outcome.Inspection.NewDamageCount)
	})

	t.Run("return requires an active trip", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := seedStartedBooking(t, f, uuid.New())

		_, err := f.inspSvc.SubmitReturnInspection(ctx, hostID, application.SubmitInspectionInput{
			BookingID: bk.ID,
			MileageKm: 42100,
			FuelLevel: 0.8,
			Photos:    inspectionPhotos(),
		})
		assert.True(t, domain.IsKind(err, domain.KindPreconditionFailed))
	})

	t.Run("only the host records the return", func(t *testing.T) {
		f := newFixture(t)
		renterID := uuid.New()
		bk, _ := startTrip(t, f, renterID)

		_, err := f.inspSvc.SubmitReturnInspection(ctx, renterID, application.SubmitInspectionInput{
			BookingID: bk.ID,
			MileageKm: 42100,
			FuelLevel: 0.8,
			Photos:    inspectionPhotos(),
		})
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("odometer rollback is rejected", func(t *testing.T) {
		f := newFixture(t)
		bk, hostID := startTrip(t, f, uuid.New())

		_, err := f.inspSvc.SubmitReturnInspection(ctx, hostID, application.SubmitInspectionInput{
			BookingID: bk.ID,
			MileageKm: 41000,
			FuelLevel: 0.8,
			Photos:    inspectionPhotos(),
		})
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestGetInspectionsAndSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	renterID := uuid.New()
	bk, hostID := seedStartedBooking(t, f, renterID)

	_, err := f.inspSvc.SubmitPickupInspection(ctx, hostID, pickupInput(bk.ID))
	require.NoError(t, err)
	_, err = f.inspSvc.SubmitReturnInspection(ctx, hostID, application.SubmitInspectionInput{
		BookingID: bk.ID,
		MileageKm: 42300,
		FuelLevel: 0.8,
		Photos:    inspectionPhotos(),
	})
	require.NoError(t, err)

	t.Run("both checkpoints are listed in order", func(t *testing.T) {
		inspections, err := f.inspSvc.GetInspections(ctx, bk.ID, renterID, false)
		require.NoError(t, err)
		require.Len(t, inspections, 2)
		assert.Equal(t, string(inspection.TypePickup), inspections[0].Type)
		assert.Equal(t, string(inspection.TypeReturn), inspections[1].Type)
	})

	t.Run("settlement is recomputed from the stored inspections", func(t *testing.T) {
		s, err := f.inspSvc.GetSettlement(ctx, bk.ID, renterID, false)
		require.NoError(t, err)
		assert.Equal(t, bk.SecurityDepositCents, s.DepositCents)
		assert.Equal(t, bk.SecurityDepositCents, s.FinalReturnCents)
	})

	t.Run("strangers see nothing", func(t *testing.T) {
		_, err := f.inspSvc.GetInspections(ctx, bk.ID, uuid.New(), false)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))

		_, err = f.inspSvc.GetSettlement(ctx, bk.ID, uuid.New(), false)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})
}
