package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/vehicle"
)

// VehicleModel is the GORM model for the vehicles table. The listing
// service owns the table; this service reads it and locks rows to
// serialize booking creation per vehicle.
type VehicleModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostID               uuid.UUID `gorm:"type:uuid;index;not null"`
	Make                 string    `gorm:"not null;size:100"`
	Model                string    `gorm:"not null;size:100"`
	Year                 int       `gorm:"not null"`
	PlateNumber          string    `gorm:"size:20"`
	DailyRateCents       int64     `gorm:"not null"`
	SecurityDepositCents int64     `gorm:"not null;default:0"`
	AvailabilityStatus   string    `gorm:"not null;size:20;default:'available'"`
	InstantBook          bool      `gorm:"not null;default:false"`
	IsActive             bool      `gorm:"not null;default:true"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based read side for vehicles.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model), nil
}

func toDomainVehicle(m *VehicleModel) *vehicle.Vehicle {
	return vehicle.Reconstruct(
		m.ID,
		m.HostID,
		m.Make,
		m.Model,
		m.Year,
		m.PlateNumber,
		m.DailyRateCents,
		m.SecurityDepositCents,
		vehicle.AvailabilityStatus(m.AvailabilityStatus),
		m.InstantBook,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
