package vehicle

import (
	"time"

	"github.com/google/uuid"
	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// AvailabilityStatus is the host-controlled listing flag, independent of
// any bookings on the vehicle.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusUnavailable AvailabilityStatus = "unavailable"
	StatusMaintenance AvailabilityStatus = "maintenance"
)

// IsValid returns true if the status is recognized.
func (s AvailabilityStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusUnavailable || s == StatusMaintenance
}

// Vehicle is a host's listed vehicle. The reservation engine reads
// vehicles for pricing and availability; it never mutates them.
type Vehicle struct {
	id                   uuid.UUID
	hostID               uuid.UUID
	make_                string
	model                string
	year                 int
	plateNumber          string
	dailyRateCents       int64
	securityDepositCents int64
	availabilityStatus   AvailabilityStatus
	instantBook          bool
	isActive             bool
	createdAt            time.Time
	updatedAt            time.Time
}

// NewVehicle creates a listed vehicle with validated fields.
func NewVehicle(hostID uuid.UUID, make, model string, year int, plateNumber string, dailyRateCents, securityDepositCents int64, instantBook bool) (*Vehicle, error) {
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if make == "" || model == "" {
		return nil, domain.NewValidationError("vehicle make and model are required")
	}
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive")
	}
	if securityDepositCents < 0 {
		return nil, domain.NewValidationError("security deposit cannot be negative")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:                   uuid.New(),
		hostID:               hostID,
		make_:                make,
		model:                model,
		year:                 year,
		plateNumber:          plateNumber,
		dailyRateCents:       dailyRateCents,
		securityDepositCents: securityDepositCents,
		availabilityStatus:   StatusAvailable,
		instantBook:          instantBook,
		isActive:             true,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(id, hostID uuid.UUID, make, model string, year int, plateNumber string, dailyRateCents, securityDepositCents int64, availabilityStatus AvailabilityStatus, instantBook, isActive bool, createdAt, updatedAt time.Time) *Vehicle {
	return &Vehicle{
		id:                   id,
		hostID:               hostID,
		make_:                make,
		model:                model,
		year:                 year,
		plateNumber:          plateNumber,
		dailyRateCents:       dailyRateCents,
		securityDepositCents: securityDepositCents,
		availabilityStatus:   availabilityStatus,
		instantBook:          instantBook,
		isActive:             isActive,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID                          { return v.id }
func (v *Vehicle) HostID() uuid.UUID                      { return v.hostID }
func (v *Vehicle) Make() string                           { return v.make_ }
func (v *Vehicle) Model() string                          { return v.model }
func (v *Vehicle) Year() int                              { return v.year }
func (v *Vehicle) PlateNumber() string                    { return v.plateNumber }
func (v *Vehicle) DailyRateCents() int64                  { return v.dailyRateCents }
func (v *Vehicle) SecurityDepositCents() int64            { return v.securityDepositCents }
func (v *Vehicle) AvailabilityStatus() AvailabilityStatus { return v.availabilityStatus }
func (v *Vehicle) InstantBook() bool                      { return v.instantBook }
func (v *Vehicle) IsActive() bool                         { return v.isActive }
func (v *Vehicle) CreatedAt() time.Time                   { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time                   { return v.updatedAt }

// Bookable reports whether the listing accepts new reservations at all.
// Date conflicts are a separate concern handled by the oracle.
func (v *Vehicle) Bookable() bool {
	return v.isActive && v.availabilityStatus == StatusAvailable
}
