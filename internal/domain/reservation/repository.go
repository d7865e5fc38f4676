package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking
// aggregates. Implementations must make Create an atomic
// check-then-insert: no interleaving of two Create calls for
// overlapping ranges on one vehicle may both succeed.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByConfirmationCode retrieves a booking by its human-readable code.
	FindByConfirmationCode(ctx context.Context, code string) (*Booking, error)

	// FindByRenterID retrieves bookings made by a renter with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostID retrieves bookings on a host's vehicles, optionally
	// filtered by status, with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, status *BookingStatus, page, limit int) ([]*Booking, int64, error)

	// FindOverlapping returns bookings in a holding status whose range
	// overlaps the given one, optionally excluding a booking by id (used
	// by the extension negotiator re-checking its own booking). This is
	// the read-side oracle; the authoritative evaluation happens again
	// inside Create and Extend.
	FindOverlapping(ctx context.Context, vehicleID uuid.UUID, dates DateRange, excludeID *uuid.UUID) ([]*Booking, error)

	// Create atomically verifies the vehicle is free over the booking's
	// range and inserts it. Returns a conflict error naming the blocking
	// booking(s) when the range is taken.
	Create(ctx context.Context, booking *Booking) error

	// Extend atomically re-verifies the delta window is free (excluding
	// the booking itself) and persists the extended booking. On conflict
	// the stored booking is left untouched.
	Extend(ctx context.Context, booking *Booking, delta DateRange) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// FindPendingCreatedBefore returns pending bookings created before the
	// cutoff, for the expiry sweeper.
	FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ExtensionRepository defines the persistence contract for extension requests.
type ExtensionRepository interface {
	// Save persists a new extension request.
	Save(ctx context.Context, ext *ExtensionRequest) error

	// FindByID retrieves an extension request by id.
	FindByID(ctx context.Context, id uuid.UUID) (*ExtensionRequest, error)

	// FindByBookingID retrieves all extension requests for a booking,
	// most recent first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*ExtensionRequest, error)

	// FindOpenByBookingID retrieves the proposed (unresolved) request for
	// a booking, if any.
	FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*ExtensionRequest, error)

	// Update persists a resolution of an extension request.
	Update(ctx context.Context, ext *ExtensionRequest) error

	// FindOpenCreatedBefore returns proposed requests created before the
	// cutoff, for the expiry sweeper.
	FindOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]*ExtensionRequest, error)
}
