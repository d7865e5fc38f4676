package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConfirmationCode string    `gorm:"uniqueIndex;not null;size:20"`
	VehicleID        uuid.UUID `gorm:"type:uuid;index;not null"`
	RenterID         uuid.UUID `gorm:"type:uuid;index;not null"`
	HostID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Status           string    `gorm:"not null;size:20;index"`
	StartDate        time.Time `gorm:"not null;index"`
	EndDate          time.Time `gorm:"not null;index"`

	DailyRateCents       int64  `gorm:"not null"`
	SubtotalCents        int64  `gorm:"not null"`
	ServiceFeeCents      int64  `gorm:"not null"`
	TaxCents             int64  `gorm:"not null"`
	InsuranceCents       int64  `gorm:"not null"`
	TotalCents           int64  `gorm:"not null"`
	SecurityDepositCents int64  `gorm:"not null"`
	Currency             string `gorm:"not null;size:3;default:'ZMW'"`

	PickupLocation  string `gorm:"size:255"`
	DropoffLocation string `gorm:"size:255"`
	SpecialRequests string `gorm:"size:1000"`

	ConfirmedAt  *time.Time `gorm:""`
	CancelledAt  *time.Time `gorm:""`
	CompletedAt  *time.Time `gorm:""`
	CancelReason string     `gorm:"size:500"`

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// holdingStatusStrings is the blocking set as stored status values.
func holdingStatusStrings() []string {
	out := make([]string, len(reservation.HoldingStatuses))
	for i, s := range reservation.HoldingStatuses {
		out[i] = string(s)
	}
	return out
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByConfirmationCode retrieves a booking by its human-readable code.
func (r *GormBookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*reservation.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", code)
		}
		return nil, fmt.Errorf("failed to find booking by confirmation code: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRenterID retrieves bookings made by a renter with pagination.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*reservation.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("renter_id = ?", renterID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count renter bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find renter bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindByHostID retrieves bookings on a host's vehicles with pagination.
func (r *GormBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, status *reservation.BookingStatus, page, limit int) ([]*reservation.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where("host_id = ?", hostID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count host bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find host bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindOverlapping returns holding bookings whose range overlaps the
// given one. Half-open semantics: a booking ending the day another
// starts does not overlap it.
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange, excludeID *uuid.UUID) ([]*reservation.Booking, error) {
	models, err := findOverlappingTx(r.db.WithContext(ctx), vehicleID, dates, excludeID)
	if err != nil {
		return nil, err
	}

	bookings := make([]*reservation.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func findOverlappingTx(tx *gorm.DB, vehicleID uuid.UUID, dates reservation.DateRange, excludeID *uuid.UUID) ([]BookingModel, error) {
	query := tx.
		Where("vehicle_id = ?", vehicleID).
		Where("status IN ?", holdingStatusStrings()).
		Where("start_date < ? AND end_date > ?", dates.End, dates.Start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return models, nil
}

// Create atomically verifies the window is free and inserts the
// booking. The vehicle row is locked for the duration of the
// transaction so two racing creates serialize; the loser sees the
// winner's row when it re-runs the overlap check.
func (r *GormBookingRepository) Create(ctx context.Context, bk *reservation.Booking) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle VehicleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.VehicleID()).
			First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("vehicle", bk.VehicleID().String())
			}
			return fmt.Errorf("failed to lock vehicle row: %w", err)
		}

		blockers, err := findOverlappingTx(tx, bk.VehicleID(), bk.Dates(), nil)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			return conflictError(blockers)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil
	})
}

// Extend atomically re-verifies the delta window (excluding the booking
// itself) and persists the extended booking under optimistic locking.
func (r *GormBookingRepository) Extend(ctx context.Context, bk *reservation.Booking, delta reservation.DateRange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle VehicleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.VehicleID()).
			First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("vehicle", bk.VehicleID().String())
			}
			return fmt.Errorf("failed to lock vehicle row: %w", err)
		}

		id := bk.ID()
		blockers, err := findOverlappingTx(tx, bk.VehicleID(), delta, &id)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			return conflictError(blockers)
		}

		return updateBooking(tx, bk)
	})
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *reservation.Booking) error {
	return updateBooking(r.db.WithContext(ctx), bk)
}

func updateBooking(tx *gorm.DB, bk *reservation.Booking) error {
	model := toBookingModel(bk)

	expectedVersion := bk.Version() - 1
	result := tx.
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"start_date":        model.StartDate,
			"end_date":          model.EndDate,
			"subtotal_cents":    model.SubtotalCents,
			"service_fee_cents": model.ServiceFeeCents,
			"tax_cents":         model.TaxCents,
			"total_cents":       model.TotalCents,
			"confirmed_at":      model.ConfirmedAt,
			"cancelled_at":      model.CancelledAt,
			"completed_at":      model.CompletedAt,
			"cancel_reason":     model.CancelReason,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// FindPendingCreatedBefore returns pending bookings created before the cutoff.
func (r *GormBookingRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*reservation.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(reservation.StatusPending), cutoff).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale pending bookings: %w", err)
	}

	bookings := make([]*reservation.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*reservation.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func conflictError(blockers []BookingModel) error {
	ids := make([]string, len(blockers))
	for i, b := range blockers {
		ids[i] = b.ID.String()
	}
	return domain.NewConflictError("vehicle is already booked for the selected dates").
		WithDetail("conflicting_booking_ids", ids)
}

func toBookingModel(bk *reservation.Booking) *BookingModel {
	return &BookingModel{
		ID:                   bk.ID(),
		ConfirmationCode:     bk.ConfirmationCode(),
		VehicleID:            bk.VehicleID(),
		RenterID:             bk.RenterID(),
		HostID:               bk.HostID(),
		Status:               string(bk.Status()),
		StartDate:            bk.StartDate(),
		EndDate:              bk.EndDate(),
		DailyRateCents:       bk.DailyRateCents(),
		SubtotalCents:        bk.SubtotalCents(),
		ServiceFeeCents:      bk.ServiceFeeCents(),
		TaxCents:             bk.TaxCents(),
		InsuranceCents:       bk.InsuranceCents(),
		TotalCents:           bk.TotalCents(),
		SecurityDepositCents: bk.SecurityDepositCents(),
		Currency:             bk.Currency(),
		PickupLocation:       bk.PickupLocation(),
		DropoffLocation:      bk.DropoffLocation(),
		SpecialRequests:      bk.SpecialRequests(),
		ConfirmedAt:          bk.ConfirmedAt(),
		CancelledAt:          bk.CancelledAt(),
		CompletedAt:          bk.CompletedAt(),
		CancelReason:         bk.CancelReason(),
		Version:              bk.Version(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*reservation.Booking, error) {
	status, err := reservation.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	dates, err := reservation.NewDateRange(m.StartDate, m.EndDate)
	if err != nil {
		return nil, fmt.Errorf("stored booking %s has invalid dates: %w", m.ID, err)
	}

	return reservation.ReconstructBooking(reservation.ReconstructBookingParams{
		ID:                   m.ID,
		ConfirmationCode:     m.ConfirmationCode,
		VehicleID:            m.VehicleID,
		RenterID:             m.RenterID,
		HostID:               m.HostID,
		Status:               status,
		Dates:                dates,
		DailyRateCents:       m.DailyRateCents,
		SubtotalCents:        m.SubtotalCents,
		ServiceFeeCents:      m.ServiceFeeCents,
		TaxCents:             m.TaxCents,
		InsuranceCents:       m.InsuranceCents,
		TotalCents:           m.TotalCents,
		SecurityDepositCents: m.SecurityDepositCents,
		Currency:             m.Currency,
		PickupLocation:       m.PickupLocation,
		DropoffLocation:      m.DropoffLocation,
		SpecialRequests:      m.SpecialRequests,
		ConfirmedAt:          m.ConfirmedAt,
		CancelledAt:          m.CancelledAt,
		CompletedAt:          m.CompletedAt,
		CancelReason:         m.CancelReason,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*reservation.Booking, int64, error) {
	bookings := make([]*reservation.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
