package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/cache"
	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/metrics"
)

// ExtensionService negotiates moving a booking's end date out.
type ExtensionService struct {
	bookings   reservation.BookingRepository
	extensions reservation.ExtensionRepository
	cache      *cache.AvailabilityCache
	producer   EventPublisher
	logger     *zap.Logger
}

// NewExtensionService creates the extension application service.
func NewExtensionService(
	bookings reservation.BookingRepository,
	extensions reservation.ExtensionRepository,
	availabilityCache *cache.AvailabilityCache,
	producer EventPublisher,
	logger *zap.Logger,
) *ExtensionService {
	return &ExtensionService{
		bookings:   bookings,
		extensions: extensions,
		cache:      availabilityCache,
		producer:   producer,
		logger:     logger,
	}
}

// ProposeExtension opens an extension request on behalf of the renter.
// The delta window is pre-checked for a fast answer; the binding check
// happens again at approval time.
func (s *ExtensionService) ProposeExtension(ctx context.Context, bookingID, renterID uuid.UUID, newEndDate time.Time, reason string) (*ExtensionDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.extensions.FindOpenByBookingID(ctx, bookingID); err == nil && existing != nil {
		return nil, domain.NewAlreadyExistsError("an extension request is already open for this booking").
			WithDetail("extension_id", existing.ID().String())
	}

	delta, err := reservation.CalculateExtensionQuote(bk.DailyRateCents(), bk.EndDate(), newEndDate)
	if err != nil {
		return nil, err
	}

	ext, err := reservation.NewExtensionRequest(bk, renterID, newEndDate, delta, reason)
	if err != nil {
		return nil, err
	}

	bookingID2 := bk.ID()
	blockers, err := s.bookings.FindOverlapping(ctx, bk.VehicleID(), ext.DeltaRange(), &bookingID2)
	if err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		return nil, domain.NewConflictError("vehicle is already booked beyond the current end date")
	}

	if err := s.extensions.Save(ctx, ext); err != nil {
		return nil, err
	}

	metrics.IncExtensionOutcome("proposed")
	s.publishExtensionEvent(ctx, reservation.EventExtensionProposed, bk, ext)
	s.logger.Info("extension proposed",
		zap.String("extension_id", ext.ID().String()),
		zap.String("booking_id", bk.ID().String()),
		zap.Int("additional_days", ext.AdditionalDays()),
	)
	return toExtensionDTO(ext), nil
}

// ApproveExtension applies a proposed extension on behalf of the host.
// Availability over the delta window is re-validated atomically; if the
// window was taken since the proposal, the request is auto-rejected and
// the booking is left untouched.
func (s *ExtensionService) ApproveExtension(ctx context.Context, extensionID, hostID uuid.UUID, note string) (*ExtensionDTO, error) {
	ext, err := s.extensions.FindByID(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, ext.BookingID())
	if err != nil {
		return nil, err
	}
	if bk.HostID() != hostID {
		return nil, domain.NewForbiddenError("only the host can approve this extension")
	}
	if !ext.Status().IsOpen() {
		return nil, domain.NewInvalidTransitionError(string(ext.Status()), string(reservation.ExtensionApproved))
	}

	if err := bk.ApplyExtension(ext.NewEndDate(), ext.DeltaQuote()); err != nil {
		return nil, err
	}
	bk.IncrementVersion()

	if err := s.bookings.Extend(ctx, bk, ext.DeltaRange()); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return s.autoReject(ctx, ext, bk, hostID, err)
		}
		return nil, err
	}

	if err := ext.Approve(hostID, note); err != nil {
		return nil, err
	}
	if err := s.extensions.Update(ctx, ext); err != nil {
		return nil, err
	}

	metrics.IncExtensionOutcome("approved")
	s.invalidateAvailability(ctx, bk.VehicleID())
	s.publishExtensionEvent(ctx, reservation.EventExtensionApproved, bk, ext)
	s.logger.Info("extension approved",
		zap.String("extension_id", ext.ID().String()),
		zap.String("booking_id", bk.ID().String()),
	)
	return toExtensionDTO(ext), nil
}

// autoReject closes an approved-but-conflicting request. The approval
// found the delta window taken, so the host's answer no longer matters.
func (s *ExtensionService) autoReject(ctx context.Context, ext *reservation.ExtensionRequest, bk *reservation.Booking, hostID uuid.UUID, cause error) (*ExtensionDTO, error) {
	if err := ext.Reject(hostID, "window no longer available"); err != nil {
		return nil, err
	}
	if err := s.extensions.Update(ctx, ext); err != nil {
		return nil, err
	}

	metrics.IncExtensionOutcome("auto_rejected")
	s.publishExtensionEvent(ctx, reservation.EventExtensionRejected, bk, ext)
	s.logger.Info("extension auto-rejected on conflict",
		zap.String("extension_id", ext.ID().String()),
		zap.Error(cause),
	)
	return nil, cause
}

// RejectExtension closes a proposed request on behalf of the host.
func (s *ExtensionService) RejectExtension(ctx context.Context, extensionID, hostID uuid.UUID, note string) (*ExtensionDTO, error) {
	ext, err := s.extensions.FindByID(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, ext.BookingID())
	if err != nil {
		return nil, err
	}
	if bk.HostID() != hostID {
		return nil, domain.NewForbiddenError("only the host can reject this extension")
	}

	if err := ext.Reject(hostID, note); err != nil {
		return nil, err
	}
	if err := s.extensions.Update(ctx, ext); err != nil {
		return nil, err
	}

	metrics.IncExtensionOutcome("rejected")
	s.publishExtensionEvent(ctx, reservation.EventExtensionRejected, bk, ext)
	return toExtensionDTO(ext), nil
}

// ListExtensions retrieves the extension history of a booking.
func (s *ExtensionService) ListExtensions(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) ([]*ExtensionDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}

	exts, err := s.extensions.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]*ExtensionDTO, len(exts))
	for i, e := range exts {
		out[i] = toExtensionDTO(e)
	}
	return out, nil
}

// ExpireStaleProposals expires proposed requests older than the TTL and
// returns how many were expired. Called by the sweeper.
func (s *ExtensionService) ExpireStaleProposals(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	stale, err := s.extensions.FindOpenCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, ext := range stale {
		if err := ext.Expire(); err != nil {
			continue
		}
		if err := s.extensions.Update(ctx, ext); err != nil {
			s.logger.Warn("failed to expire stale extension request",
				zap.String("extension_id", ext.ID().String()),
				zap.Error(err),
			)
			continue
		}
		expired++
		metrics.IncExtensionOutcome("expired")
	}
	return expired, nil
}

func (s *ExtensionService) invalidateAvailability(ctx context.Context, vehicleID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, vehicleID)
	}
}

func (s *ExtensionService) publishExtensionEvent(ctx context.Context, eventType string, bk *reservation.Booking, ext *reservation.ExtensionRequest) {
	publish(ctx, s.producer, s.logger, eventType, bk.ID().String(), reservation.ExtensionEvent{
		ExtensionID:    ext.ID(),
		BookingID:      bk.ID(),
		RenterID:       bk.RenterID(),
		HostID:         bk.HostID(),
		NewEndDate:     ext.NewEndDate(),
		AdditionalDays: ext.AdditionalDays(),
		TotalCents:     ext.TotalCents(),
		Currency:       bk.Currency(),
		OccurredAt:     time.Now().UTC(),
	})
}
