package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/domain"
	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/domain/vehicle"
)

// MemoryBookingRepository is an in-memory BookingRepository for unit
// tests and local development. One mutex guards the whole store, so
// Create's check-then-insert is atomic exactly as the SQL
// implementation's vehicle row lock makes it. Reads and writes copy
// the aggregate, so a caller's mutation only reaches the store through
// a successful Create, Extend or Update, matching the SQL
// implementation's rollback behavior.
type MemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*reservation.Booking
}

// NewMemoryBookingRepository creates an empty in-memory repository.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[uuid.UUID]*reservation.Booking)}
}

func cloneBooking(bk *reservation.Booking) *reservation.Booking {
	cp := *bk
	return &cp
}

func cloneBookings(bks []*reservation.Booking) []*reservation.Booking {
	out := make([]*reservation.Booking, len(bks))
	for i, bk := range bks {
		out[i] = cloneBooking(bk)
	}
	return out
}

// FindByID retrieves a booking by id.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(bk), nil
}

// FindByConfirmationCode retrieves a booking by its code.
func (r *MemoryBookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*reservation.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.ConfirmationCode() == code {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", code)
}

// FindByRenterID retrieves a renter's bookings with pagination.
func (r *MemoryBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*reservation.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*reservation.Booking
	for _, bk := range r.bookings {
		if bk.RenterID() == renterID {
			matched = append(matched, bk)
		}
	}
	items, total, err := paginate(matched, page, limit)
	return cloneBookings(items), total, err
}

// FindByHostID retrieves a host's bookings with pagination.
func (r *MemoryBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, status *reservation.BookingStatus, page, limit int) ([]*reservation.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*reservation.Booking
	for _, bk := range r.bookings {
		if bk.HostID() != hostID {
			continue
		}
		if status != nil && bk.Status() != *status {
			continue
		}
		matched = append(matched, bk)
	}
	items, total, err := paginate(matched, page, limit)
	return cloneBookings(items), total, err
}

// FindOverlapping returns holding bookings overlapping the range.
func (r *MemoryBookingRepository) FindOverlapping(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange, excludeID *uuid.UUID) ([]*reservation.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneBookings(r.overlappingLocked(vehicleID, dates, excludeID)), nil
}

func (r *MemoryBookingRepository) overlappingLocked(vehicleID uuid.UUID, dates reservation.DateRange, excludeID *uuid.UUID) []*reservation.Booking {
	var blockers []*reservation.Booking
	for _, bk := range r.bookings {
		if bk.VehicleID() != vehicleID {
			continue
		}
		if excludeID != nil && bk.ID() == *excludeID {
			continue
		}
		if !bk.Status().HoldsInventory() {
			continue
		}
		if bk.Dates().Overlaps(dates) {
			blockers = append(blockers, bk)
		}
	}
	return blockers
}

// Create atomically checks the window and inserts the booking.
func (r *MemoryBookingRepository) Create(ctx context.Context, bk *reservation.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if blockers := r.overlappingLocked(bk.VehicleID(), bk.Dates(), nil); len(blockers) > 0 {
		ids := make([]string, len(blockers))
		for i, b := range blockers {
			ids[i] = b.ID().String()
		}
		return domain.NewConflictError("vehicle is already booked for the selected dates").
			WithDetail("conflicting_booking_ids", ids)
	}

	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// Extend atomically re-checks the delta window and stores the booking.
func (r *MemoryBookingRepository) Extend(ctx context.Context, bk *reservation.Booking, delta reservation.DateRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := bk.ID()
	if blockers := r.overlappingLocked(bk.VehicleID(), delta, &id); len(blockers) > 0 {
		ids := make([]string, len(blockers))
		for i, b := range blockers {
			ids[i] = b.ID().String()
		}
		return domain.NewConflictError("vehicle is already booked for the extension window").
			WithDetail("conflicting_booking_ids", ids)
	}

	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// Update stores the booking.
func (r *MemoryBookingRepository) Update(ctx context.Context, bk *reservation.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// FindPendingCreatedBefore returns pending bookings older than the cutoff.
func (r *MemoryBookingRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*reservation.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*reservation.Booking
	for _, bk := range r.bookings {
		if bk.Status() == reservation.StatusPending && bk.CreatedAt().Before(cutoff) {
			matched = append(matched, cloneBooking(bk))
		}
	}
	return matched, nil
}

// ListAll retrieves all bookings with pagination.
func (r *MemoryBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*reservation.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*reservation.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, bk)
	}
	items, total, err := paginate(all, page, limit)
	return cloneBookings(items), total, err
}

// CountByStatus returns booking counts grouped by status.
func (r *MemoryBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func paginate(items []*reservation.Booking, page, limit int) ([]*reservation.Booking, int64, error) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt().After(items[j].CreatedAt())
	})
	total := int64(len(items))
	start := (page - 1) * limit
	if start >= len(items) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

// MemoryExtensionRepository is an in-memory ExtensionRepository.
type MemoryExtensionRepository struct {
	mu         sync.Mutex
	extensions map[uuid.UUID]*reservation.ExtensionRequest
}

// NewMemoryExtensionRepository creates an empty in-memory repository.
func NewMemoryExtensionRepository() *MemoryExtensionRepository {
	return &MemoryExtensionRepository{extensions: make(map[uuid.UUID]*reservation.ExtensionRequest)}
}

// Save persists a new extension request.
func (r *MemoryExtensionRepository) Save(ctx context.Context, ext *reservation.ExtensionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[ext.ID()] = ext
	return nil
}

// FindByID retrieves an extension request by id.
func (r *MemoryExtensionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext, ok := r.extensions[id]
	if !ok {
		return nil, domain.NewNotFoundError("extension request", id.String())
	}
	return ext, nil
}

// FindByBookingID retrieves all extension requests for a booking.
func (r *MemoryExtensionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*reservation.ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*reservation.ExtensionRequest
	for _, ext := range r.extensions {
		if ext.BookingID() == bookingID {
			matched = append(matched, ext)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	return matched, nil
}

// FindOpenByBookingID retrieves the proposed request for a booking.
func (r *MemoryExtensionRepository) FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*reservation.ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range r.extensions {
		if ext.BookingID() == bookingID && ext.Status().IsOpen() {
			return ext, nil
		}
	}
	return nil, domain.NewNotFoundError("open extension request for booking", bookingID.String())
}

// Update persists a resolution of an extension request.
func (r *MemoryExtensionRepository) Update(ctx context.Context, ext *reservation.ExtensionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.extensions[ext.ID()]; !ok {
		return domain.NewNotFoundError("extension request", ext.ID().String())
	}
	r.extensions[ext.ID()] = ext
	return nil
}

// FindOpenCreatedBefore returns proposed requests older than the cutoff.
func (r *MemoryExtensionRepository) FindOpenCreatedBefore(ctx context.Context, cutoff time.Time) ([]*reservation.ExtensionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*reservation.ExtensionRequest
	for _, ext := range r.extensions {
		if ext.Status().IsOpen() && ext.CreatedAt().Before(cutoff) {
			matched = append(matched, ext)
		}
	}
	return matched, nil
}

// MemoryInspectionRepository is an in-memory inspection Repository.
type MemoryInspectionRepository struct {
	mu          sync.Mutex
	inspections map[uuid.UUID]*inspection.Inspection
}

// NewMemoryInspectionRepository creates an empty in-memory repository.
func NewMemoryInspectionRepository() *MemoryInspectionRepository {
	return &MemoryInspectionRepository{inspections: make(map[uuid.UUID]*inspection.Inspection)}
}

// Save persists a new inspection, refusing a duplicate (booking, type).
func (r *MemoryInspectionRepository) Save(ctx context.Context, insp *inspection.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.inspections {
		if existing.BookingID() == insp.BookingID() && existing.Type() == insp.Type() {
			return domain.NewAlreadyExistsError(
				fmt.Sprintf("a %s inspection already exists for this booking", insp.Type()))
		}
	}
	r.inspections[insp.ID()] = insp
	return nil
}

// FindByID retrieves an inspection by id.
func (r *MemoryInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inspection.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	insp, ok := r.inspections[id]
	if !ok {
		return nil, domain.NewNotFoundError("inspection", id.String())
	}
	return insp, nil
}

// FindByBookingAndType retrieves the inspection of the given type.
func (r *MemoryInspectionRepository) FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, t inspection.InspectionType) (*inspection.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, insp := range r.inspections {
		if insp.BookingID() == bookingID && insp.Type() == t {
			return insp, nil
		}
	}
	return nil, domain.NewNotFoundError(string(t)+" inspection for booking", bookingID.String())
}

// FindByBookingID retrieves all inspections for a booking.
func (r *MemoryInspectionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*inspection.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*inspection.Inspection
	for _, insp := range r.inspections {
		if insp.BookingID() == bookingID {
			matched = append(matched, insp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().Before(matched[j].CreatedAt())
	})
	return matched, nil
}

// MemoryVehicleRepository is an in-memory vehicle read side.
type MemoryVehicleRepository struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*vehicle.Vehicle
}

// NewMemoryVehicleRepository creates an empty in-memory repository.
func NewMemoryVehicleRepository() *MemoryVehicleRepository {
	return &MemoryVehicleRepository{vehicles: make(map[uuid.UUID]*vehicle.Vehicle)}
}

// Add seeds a vehicle into the store.
func (r *MemoryVehicleRepository) Add(v *vehicle.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID()] = v
}

// FindByID retrieves a vehicle by id.
func (r *MemoryVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return v, nil
}
