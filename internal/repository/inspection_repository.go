package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
)

// InspectionModel is the GORM model for the inspections table. The
// unique index on (booking_id, inspection_type) enforces the
// one-inspection-per-checkpoint rule at the storage layer.
type InspectionModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inspections_booking_type"`
	InspectionType   string          `gorm:"not null;size:10;uniqueIndex:idx_inspections_booking_type"`
	InspectorID      uuid.UUID       `gorm:"type:uuid;not null"`
	MileageKm        int64           `gorm:"not null"`
	FuelLevelPercent int             `gorm:"not null"`
	Photos           json.RawMessage `gorm:"type:jsonb;not null"`
	Damages          json.RawMessage `gorm:"type:jsonb;not null"`
	Notes            string          `gorm:"size:1000"`

	DamageScore          float64 `gorm:"not null"`
	NewDamageCount       int     `gorm:"not null;default:0"`
	EstimatedRepairCents int64   `gorm:"not null;default:0"`
	OverallCondition     string  `gorm:"not null;size:20"`

	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InspectionModel) TableName() string {
	return "inspections"
}

// GormInspectionRepository is the GORM-based implementation of the
// inspection Repository.
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository.
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

// Save persists a new inspection. A duplicate (booking, type) pair
// surfaces as an already_exists error via the unique index.
func (r *GormInspectionRepository) Save(ctx context.Context, insp *inspection.Inspection) error {
	model, err := toInspectionModel(insp)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewAlreadyExistsError(
				fmt.Sprintf("a %s inspection already exists for this booking", insp.Type()))
		}
		return fmt.Errorf("failed to save inspection: %w", err)
	}
	return nil
}

// FindByID retrieves an inspection by id.
func (r *GormInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inspection.Inspection, error) {
	var model InspectionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("inspection", id.String())
		}
		return nil, fmt.Errorf("failed to find inspection: %w", err)
	}
	return toDomainInspection(&model)
}

// FindByBookingAndType retrieves the inspection of the given type.
func (r *GormInspectionRepository) FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, t inspection.InspectionType) (*inspection.Inspection, error) {
	var model InspectionModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND inspection_type = ?", bookingID, string(t)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("%s inspection for booking", t), bookingID.String())
		}
		return nil, fmt.Errorf("failed to find inspection: %w", err)
	}
	return toDomainInspection(&model)
}

// FindByBookingID retrieves all inspections recorded for a booking.
func (r *GormInspectionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*inspection.Inspection, error) {
	var models []InspectionModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find inspections: %w", err)
	}

	inspections := make([]*inspection.Inspection, len(models))
	for i, m := range models {
		insp, err := toDomainInspection(&m)
		if err != nil {
			return nil, err
		}
		inspections[i] = insp
	}
	return inspections, nil
}

// --- Conversion Helpers ---

func toInspectionModel(insp *inspection.Inspection) (*InspectionModel, error) {
	photosJSON, err := json.Marshal(insp.Photos())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}
	damagesJSON, err := json.Marshal(insp.Damages())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal damages: %w", err)
	}

	return &InspectionModel{
		ID:                   insp.ID(),
		BookingID:            insp.BookingID(),
		InspectionType:       string(insp.Type()),
		InspectorID:          insp.InspectorID(),
		MileageKm:            insp.MileageKm(),
		FuelLevelPercent:     insp.FuelLevelPercent(),
		Photos:               photosJSON,
		Damages:              damagesJSON,
		Notes:                insp.Notes(),
		DamageScore:          insp.DamageScore(),
		NewDamageCount:       insp.NewDamageCount(),
		EstimatedRepairCents: insp.EstimatedRepairCents(),
		OverallCondition:     string(insp.Condition()),
		CreatedAt:            insp.CreatedAt(),
	}, nil
}

func toDomainInspection(m *InspectionModel) (*inspection.Inspection, error) {
	var photos []inspection.Photo
	if err := json.Unmarshal(m.Photos, &photos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
	}
	var damages []inspection.DamageItem
	if err := json.Unmarshal(m.Damages, &damages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal damages: %w", err)
	}

	return inspection.Reconstruct(inspection.ReconstructParams{
		ID:                   m.ID,
		BookingID:            m.BookingID,
		InspectionType:       inspection.InspectionType(m.InspectionType),
		InspectorID:          m.InspectorID,
		MileageKm:            m.MileageKm,
		FuelLevelPercent:     m.FuelLevelPercent,
		Photos:               photos,
		Damages:              damages,
		Notes:                m.Notes,
		DamageScore:          m.DamageScore,
		NewDamageCount:       m.NewDamageCount,
		EstimatedRepairCents: m.EstimatedRepairCents,
		OverallCondition:     inspection.OverallCondition(m.OverallCondition),
		CreatedAt:            m.CreatedAt,
	}), nil
}
