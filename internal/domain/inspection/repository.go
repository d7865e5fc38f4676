package inspection

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for inspections. A
// booking carries at most one inspection per type; Save must refuse a
// duplicate (booking, type) pair with an already_exists error.
type Repository interface {
	// Save persists a new inspection.
	Save(ctx context.Context, insp *Inspection) error

	// FindByID retrieves an inspection by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Inspection, error)

	// FindByBookingAndType retrieves the inspection of the given type for
	// a booking, or a not_found error.
	FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, t InspectionType) (*Inspection, error)

	// FindByBookingID retrieves all inspections recorded for a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Inspection, error)
}
