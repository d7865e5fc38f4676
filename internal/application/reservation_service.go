package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/cache"
	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/domain/vehicle"
	"github.com/zemo-rentals/service-reservation/internal/kafka"
	"github.com/zemo-rentals/service-reservation/internal/metrics"
)

const eventSource = "service-reservation"

// EventPublisher is the outbound event port. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// ReservationService orchestrates quoting, availability reads and the
// booking lifecycle.
type ReservationService struct {
	bookings reservation.BookingRepository
	vehicles vehicle.Repository
	cache    *cache.AvailabilityCache
	producer EventPublisher
	logger   *zap.Logger
}

// NewReservationService creates the booking application service. The
// availability cache is optional; pass nil to always hit the database.
func NewReservationService(
	bookings reservation.BookingRepository,
	vehicles vehicle.Repository,
	availabilityCache *cache.AvailabilityCache,
	producer EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		bookings: bookings,
		vehicles: vehicles,
		cache:    availabilityCache,
		producer: producer,
		logger:   logger,
	}
}

// QuoteInput is the request for pricing a prospective rental.
type QuoteInput struct {
	VehicleID             uuid.UUID
	StartDate             time.Time
	EndDate               time.Time
	InsurancePremiumCents int64
}

// GetQuote prices a prospective rental without reserving anything.
func (s *ReservationService) GetQuote(ctx context.Context, input QuoteInput) (*QuoteDTO, error) {
	v, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}

	dates, err := reservation.NewDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	quote, err := reservation.CalculateQuote(v.DailyRateCents(), dates, input.InsurancePremiumCents)
	if err != nil {
		return nil, err
	}
	return toQuoteDTO(quote), nil
}

// CheckAvailability answers whether a vehicle is free over a range.
// Advisory only: a positive answer can go stale the moment it is given,
// and creation re-checks atomically.
func (s *ReservationService) CheckAvailability(ctx context.Context, vehicleID uuid.UUID, startDate, endDate time.Time) (*AvailabilityDTO, error) {
	dates, err := reservation.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached := s.cache.Get(ctx, vehicleID, dates); cached != nil {
			metrics.IncAvailabilityCache("hit")
			return &AvailabilityDTO{
				VehicleID:  vehicleID,
				StartDate:  dates.Start.Format(dateLayout),
				EndDate:    dates.End.Format(dateLayout),
				Available:  cached.Available,
				BlockerIDs: cached.BlockerIDs,
			}, nil
		}
		metrics.IncAvailabilityCache("miss")
	}

	v, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.Bookable() {
		return &AvailabilityDTO{
			VehicleID: vehicleID,
			StartDate: dates.Start.Format(dateLayout),
			EndDate:   dates.End.Format(dateLayout),
			Available: false,
		}, nil
	}

	blockers, err := s.bookings.FindOverlapping(ctx, vehicleID, dates, nil)
	if err != nil {
		return nil, err
	}

	blockerIDs := make([]uuid.UUID, len(blockers))
	for i, b := range blockers {
		blockerIDs[i] = b.ID()
	}

	result := &AvailabilityDTO{
		VehicleID:  vehicleID,
		StartDate:  dates.Start.Format(dateLayout),
		EndDate:    dates.End.Format(dateLayout),
		Available:  len(blockers) == 0,
		BlockerIDs: blockerIDs,
	}
	if s.cache != nil {
		s.cache.Set(ctx, vehicleID, dates, cache.AvailabilityResult{
			Available:  result.Available,
			BlockerIDs: blockerIDs,
			ComputedAt: time.Now().UTC(),
		})
	}
	return result, nil
}

// CreateBookingInput is the request for reserving a vehicle.
type CreateBookingInput struct {
	VehicleID             uuid.UUID
	StartDate             time.Time
	EndDate               time.Time
	InsurancePremiumCents int64
	PickupLocation        string
	DropoffLocation       string
	SpecialRequests       string
}

// CreateBooking reserves a vehicle for a renter. Instant-book vehicles
// confirm immediately; everything else starts pending until payment is
// captured or the hold expires.
func (s *ReservationService) CreateBooking(ctx context.Context, renterID uuid.UUID, input CreateBookingInput) (*BookingDTO, error) {
	v, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.Bookable() {
		return nil, domain.NewPreconditionFailedError("vehicle is not accepting bookings")
	}

	dates, err := reservation.NewDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	quote, err := reservation.CalculateQuote(v.DailyRateCents(), dates, input.InsurancePremiumCents)
	if err != nil {
		return nil, err
	}

	bk, err := reservation.NewBooking(reservation.NewBookingParams{
		VehicleID:            v.ID(),
		RenterID:             renterID,
		HostID:               v.HostID(),
		Dates:                dates,
		Quote:                quote,
		SecurityDepositCents: v.SecurityDepositCents(),
		InstantBook:          v.InstantBook(),
		PickupLocation:       input.PickupLocation,
		DropoffLocation:      input.DropoffLocation,
		SpecialRequests:      input.SpecialRequests,
	})
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, bk); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated(string(bk.Status()))
	s.invalidateAvailability(ctx, bk.VehicleID())

	s.publishBookingEvent(ctx, reservation.EventBookingRequested, bk, "")
	if bk.Status() == reservation.StatusConfirmed {
		s.publishBookingEvent(ctx, reservation.EventBookingConfirmed, bk, "instant_book")
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("vehicle_id", bk.VehicleID().String()),
		zap.String("status", string(bk.Status())),
	)
	return toBookingDTO(bk), nil
}

// ConfirmBooking transitions a pending booking to confirmed on behalf
// of its host.
func (s *ReservationService) ConfirmBooking(ctx context.Context, bookingID, hostID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.HostID() != hostID {
		return nil, domain.NewForbiddenError("only the host can confirm this booking")
	}
	return s.confirm(ctx, bk, "host_accepted")
}

// ConfirmBookingFromPayment confirms a pending booking after the
// payment collaborator reports a captured charge.
func (s *ReservationService) ConfirmBookingFromPayment(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() == reservation.StatusConfirmed {
		// Payment events are at-least-once; a repeat is not an error.
		return toBookingDTO(bk), nil
	}
	return s.confirm(ctx, bk, "payment_captured")
}

func (s *ReservationService) confirm(ctx context.Context, bk *reservation.Booking, reason string) (*BookingDTO, error) {
	if err := bk.Confirm(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, reservation.EventBookingConfirmed, bk, reason)
	s.logger.Info("booking confirmed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reason", reason),
	)
	return toBookingDTO(bk), nil
}

// CancelBooking cancels a booking on behalf of its renter or host.
func (s *ReservationService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, bk.VehicleID())
	s.publishBookingEvent(ctx, reservation.EventBookingCancelled, bk, reason)
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("actor_id", actorID.String()),
	)
	return toBookingDTO(bk), nil
}

// GetBooking retrieves a booking visible to the given actor.
func (s *ReservationService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}
	return toBookingDTO(bk), nil
}

// GetBookingByCode retrieves a booking by its confirmation code.
func (s *ReservationService) GetBookingByCode(ctx context.Context, code string, actorID uuid.UUID, isAdmin bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !isAdmin && actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}
	return toBookingDTO(bk), nil
}

// ListRenterBookings retrieves a renter's bookings.
func (s *ReservationService) ListRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) (*domain.PaginatedResult[*BookingDTO], error) {
	bookings, total, err := s.bookings.FindByRenterID(ctx, renterID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListHostBookings retrieves bookings on a host's vehicles.
func (s *ReservationService) ListHostBookings(ctx context.Context, hostID uuid.UUID, status *reservation.BookingStatus, page, limit int) (*domain.PaginatedResult[*BookingDTO], error) {
	bookings, total, err := s.bookings.FindByHostID(ctx, hostID, status, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListAllBookings retrieves all bookings (admin).
func (s *ReservationService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[*BookingDTO], error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// BookingStats returns booking counts by status (admin).
func (s *ReservationService) BookingStats(ctx context.Context) (map[string]int64, error) {
	return s.bookings.CountByStatus(ctx)
}

// ExpireStalePending expires pending bookings older than the TTL and
// returns how many were expired. Called by the sweeper.
func (s *ReservationService) ExpireStalePending(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	stale, err := s.bookings.FindPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, bk := range stale {
		if err := bk.Expire(); err != nil {
			// Status changed between read and sweep; skip it.
			continue
		}
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			s.logger.Warn("failed to expire stale booking",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		expired++
		metrics.IncBookingExpired()
		s.invalidateAvailability(ctx, bk.VehicleID())
		s.publishBookingEvent(ctx, reservation.EventBookingExpired, bk, "pending_ttl_elapsed")
	}
	return expired, nil
}

func (s *ReservationService) invalidateAvailability(ctx context.Context, vehicleID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicleID)
	}
}

func (s *ReservationService) publishBookingEvent(ctx context.Context, eventType string, bk *reservation.Booking, reason string) {
	publish(ctx, s.producer, s.logger, eventType, bk.ID().String(), reservation.NewBookingEvent(bk, reason))
}
