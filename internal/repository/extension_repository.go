package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// ExtensionModel is the GORM model for the booking_extensions table.
type ExtensionModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID `gorm:"type:uuid;index;not null"`
	RequestedBy     uuid.UUID `gorm:"type:uuid;not null"`
	OriginalEndDate time.Time `gorm:"not null"`
	NewEndDate      time.Time `gorm:"not null"`
	AdditionalDays  int       `gorm:"not null"`

	SubtotalCents   int64 `gorm:"not null"`
	ServiceFeeCents int64 `gorm:"not null"`
	TaxCents        int64 `gorm:"not null"`
	TotalCents      int64 `gorm:"not null"`

	Status       string     `gorm:"not null;size:20;index"`
	Reason       string     `gorm:"size:500"`
	ResponseNote string     `gorm:"size:500"`
	RespondedBy  *uuid.UUID `gorm:"type:uuid"`
	RespondedAt  *time.Time `gorm:""`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ExtensionModel) TableName() string {
	return "booking_extensions"
}

// GormExtensionRepository is the GORM-based implementation of ExtensionRepository.
type GormExtensionRepository struct {
	db *gorm.DB
}

// NewGormExtensionRepository creates a new GormExtensionRepository.
func NewGormExtensionRepository(db *gorm.DB) *GormExtensionRepository {
	return &GormExtensionRepository{db: db}
}

// Save persists a new extension request.
func (r *GormExtensionRepository) Save(ctx context.Context, ext *reservation.ExtensionRequest) error {
	if err := r.db.WithContext(ctx).Create(toExtensionModel(ext)).Error; err != nil {
		return fmt.Errorf("failed to save extension request: %w", err)
	}
	return nil
}

// FindByID retrieves an extension request by id.
func (r *GormExtensionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.ExtensionRequest, error) {
	var model ExtensionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("extension request", id.String())
		}
		return nil, fmt.Errorf("failed to find extension request: %w", err)
	}
	return toDomainExtension(&model), nil
}

// FindByBookingID retrieves all extension requests for a booking.
func (r *GormExtensionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*reservation.ExtensionRequest, error) {
	var models []ExtensionModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find extension requests: %w", err)
	}

	exts := make([]*reservation.ExtensionRequest, len(models))
	for i, m := range models {
		exts[i] = toDomainExtension(&m)
	}
	return exts, nil
}

// FindOpenByBookingID retrieves the proposed request for a booking.
func (r *GormExtensionRepository) FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*reservation.ExtensionRequest, error) {
	var model ExtensionModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, string(reservation.ExtensionProposed)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("open extension request for booking", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find open extension request: %w", err)
	}
	return toDomainExtension(&model), nil
}

// Update persists a resolution of an extension request.
func (r *GormExtensionRepository) Update(ctx context.Context, ext *reservation.ExtensionRequest) error {
	model := toExtensionModel(ext)
	result := r.db.WithContext(ctx).
		Model(&ExtensionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"response_note": model.ResponseNote,
			"responded_by":  model.RespondedBy,
			"responded_at":  model.RespondedAt,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update extension request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("extension request", model.ID.String())
	}
	return nil
}

// FindOpenCreatedBefore returns proposed requests created before the cutoff.
func (r *GormExtensionRepository) FindOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]*reservation.ExtensionRequest, error) {
	var models []ExtensionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(reservation.ExtensionProposed), cutoff).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale extension requests: %w", err)
	}

	exts := make([]*reservation.ExtensionRequest, len(models))
	for i, m := range models {
		exts[i] = toDomainExtension(&m)
	}
	return exts, nil
}

// --- Conversion Helpers ---

func toExtensionModel(ext *reservation.ExtensionRequest) *ExtensionModel {
	return &ExtensionModel{
		ID:              ext.ID(),
		BookingID:       ext.BookingID(),
		RequestedBy:     ext.RequestedBy(),
		OriginalEndDate: ext.OriginalEndDate(),
		NewEndDate:      ext.NewEndDate(),
		AdditionalDays:  ext.AdditionalDays(),
		SubtotalCents:   ext.SubtotalCents(),
		ServiceFeeCents: ext.ServiceFeeCents(),
		TaxCents:        ext.TaxCents(),
		TotalCents:      ext.TotalCents(),
		Status:          string(ext.Status()),
		Reason:          ext.Reason(),
		ResponseNote:    ext.ResponseNote(),
		RespondedBy:     ext.RespondedBy(),
		RespondedAt:     ext.RespondedAt(),
		CreatedAt:       ext.CreatedAt(),
		UpdatedAt:       ext.UpdatedAt(),
	}
}

func toDomainExtension(m *ExtensionModel) *reservation.ExtensionRequest {
	return reservation.ReconstructExtension(reservation.ReconstructExtensionParams{
		ID:              m.ID,
		BookingID:       m.BookingID,
		RequestedBy:     m.RequestedBy,
		OriginalEndDate: m.OriginalEndDate,
		NewEndDate:      m.NewEndDate,
		AdditionalDays:  m.AdditionalDays,
		SubtotalCents:   m.SubtotalCents,
		ServiceFeeCents: m.ServiceFeeCents,
		TaxCents:        m.TaxCents,
		TotalCents:      m.TotalCents,
		Status:          reservation.ExtensionStatus(m.Status),
		Reason:          m.Reason,
		ResponseNote:    m.ResponseNote,
		RespondedBy:     m.RespondedBy,
		RespondedAt:     m.RespondedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	})
}
