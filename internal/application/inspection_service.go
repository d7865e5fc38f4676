package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// InspectionService records pickup and return inspections and drives
// the booking transitions they gate.
type InspectionService struct {
	bookings    reservation.BookingRepository
	inspections inspection.Repository
	producer    EventPublisher
	logger      *zap.Logger
}

// NewInspectionService creates the inspection application service.
func NewInspectionService(
	bookings reservation.BookingRepository,
	inspections inspection.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *InspectionService {
	return &InspectionService{
		bookings:    bookings,
		inspections: inspections,
		producer:    producer,
		logger:      logger,
	}
}

// SubmitInspectionInput is the inspector's raw submission.
type SubmitInspectionInput struct {
	BookingID uuid.UUID
	Type      inspection.InspectionType
	MileageKm int64
	FuelLevel float64
	Photos    []inspection.Photo
	Damages   []inspection.DamageItem
	Notes     string
}

// InspectionOutcome is the result of recording an inspection. The
// settlement is present only for return inspections.
type InspectionOutcome struct {
	Inspection *InspectionDTO `json:"inspection"`
	Booking    *BookingDTO    `json:"booking"`
	Settlement *SettlementDTO `json:"settlement,omitempty"`
}

// SubmitPickupInspection records the pickup condition and starts the
// trip. Only the host may submit, and only on a confirmed booking from
// its start date onward.
func (s *InspectionService) SubmitPickupInspection(ctx context.Context, inspectorID uuid.UUID, input SubmitInspectionInput) (*InspectionOutcome, error) {
	bk, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if inspectorID != bk.HostID() {
		return nil, domain.NewForbiddenError("only the host records the pickup inspection")
	}
	if bk.Status() != reservation.StatusConfirmed {
		return nil, domain.NewPreconditionFailedError("booking must be confirmed before pickup")
	}
	if time.Now().UTC().Before(bk.StartDate()) {
		return nil, domain.NewPreconditionFailedError("trip cannot start before the booking start date")
	}

	insp, err := inspection.NewInspection(inspection.NewInspectionParams{
		BookingID:      bk.ID(),
		InspectionType: inspection.TypePickup,
		InspectorID:    inspectorID,
		MileageKm:      input.MileageKm,
		FuelLevel:      input.FuelLevel,
		Photos:         input.Photos,
		Damages:        input.Damages,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.inspections.Save(ctx, insp); err != nil {
		return nil, err
	}

	if err := bk.BeginTrip(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, reservation.EventTripStarted, bk.ID().String(),
		reservation.NewBookingEvent(bk, ""))
	s.logger.Info("pickup inspection recorded",
		zap.String("booking_id", bk.ID().String()),
		zap.String("inspection_id", insp.ID().String()),
		zap.Float64("damage_score", insp.DamageScore()),
	)
	return &InspectionOutcome{
		Inspection: toInspectionDTO(insp),
		Booking:    toBookingDTO(bk),
	}, nil
}

// SubmitReturnInspection records the return condition, completes the
// trip and computes the deposit settlement against the pickup record.
func (s *InspectionService) SubmitReturnInspection(ctx context.Context, inspectorID uuid.UUID, input SubmitInspectionInput) (*InspectionOutcome, error) {
	bk, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if inspectorID != bk.HostID() {
		return nil, domain.NewForbiddenError("only the host records the return inspection")
	}
	if bk.Status() != reservation.StatusActive {
		return nil, domain.NewPreconditionFailedError("booking must have an active trip to return")
	}

	pickup, err := s.inspections.FindByBookingAndType(ctx, bk.ID(), inspection.TypePickup)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewPreconditionFailedError("no pickup inspection on record for this booking")
		}
		return nil, err
	}

	insp, err := inspection.NewInspection(inspection.NewInspectionParams{
		BookingID:      bk.ID(),
		InspectionType: inspection.TypeReturn,
		InspectorID:    inspectorID,
		MileageKm:      input.MileageKm,
		FuelLevel:      input.FuelLevel,
		Photos:         input.Photos,
		Damages:        input.Damages,
		Notes:          input.Notes,
		PriorDamages:   pickup.Damages(),
		PriorMileageKm: pickup.MileageKm(),
	})
	if err != nil {
		return nil, err
	}

	settlement, err := inspection.ComputeSettlement(bk.SecurityDepositCents(), bk.TotalDays(), pickup, insp)
	if err != nil {
		return nil, err
	}

	if err := s.inspections.Save(ctx, insp); err != nil {
		return nil, err
	}

	if err := bk.CompleteTrip(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	publish(ctx, s.producer, s.logger, reservation.EventBookingCompleted, bk.ID().String(),
		reservation.NewBookingEvent(bk, ""))
	publish(ctx, s.producer, s.logger, reservation.EventDepositSettlement, bk.ID().String(),
		reservation.DepositSettlementEvent{
			BookingID:        bk.ID(),
			RenterID:         bk.RenterID(),
			HostID:           bk.HostID(),
			DepositCents:     settlement.DepositCents,
			AdjustmentCents:  settlement.AdjustmentCents,
			FinalReturnCents: settlement.FinalReturnCents,
			AdjustmentReason: settlement.Reason,
			Currency:         bk.Currency(),
			OccurredAt:       time.Now().UTC(),
		})

	s.logger.Info("return inspection recorded",
		zap.String("booking_id", bk.ID().String()),
		zap.String("inspection_id", insp.ID().String()),
		zap.Int("new_damage_count", insp.NewDamageCount()),
		zap.Int64("final_deposit_return_cents", settlement.FinalReturnCents),
	)
	return &InspectionOutcome{
		Inspection: toInspectionDTO(insp),
		Booking:    toBookingDTO(bk),
		Settlement: toSettlementDTO(bk.ID(), settlement),
	}, nil
}

// GetInspections retrieves a booking's inspections with its settlement
// when both checkpoints exist.
func (s *InspectionService) GetInspections(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) ([]*InspectionDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}

	inspections, err := s.inspections.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]*InspectionDTO, len(inspections))
	for i, insp := range inspections {
		out[i] = toInspectionDTO(insp)
	}
	return out, nil
}

// GetSettlement recomputes the deposit settlement for a completed
// booking from its stored inspections.
func (s *InspectionService) GetSettlement(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*SettlementDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && actorID != bk.RenterID() && actorID != bk.HostID() {
		return nil, domain.NewForbiddenError("you are not a party to this booking")
	}

	pickup, err := s.inspections.FindByBookingAndType(ctx, bookingID, inspection.TypePickup)
	if err != nil {
		return nil, err
	}
	ret, err := s.inspections.FindByBookingAndType(ctx, bookingID, inspection.TypeReturn)
	if err != nil {
		return nil, err
	}

	settlement, err := inspection.ComputeSettlement(bk.SecurityDepositCents(), bk.TotalDays(), pickup, ret)
	if err != nil {
		return nil, err
	}
	return toSettlementDTO(bk.ID(), settlement), nil
}
