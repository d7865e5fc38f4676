package reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// CurrencyZMW is the platform currency (Zambian kwacha). Amounts are cents.
const CurrencyZMW = "ZMW"

const confirmationCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the reservation domain.
type Booking struct {
	id               uuid.UUID
	confirmationCode string
	vehicleID        uuid.UUID
	renterID         uuid.UUID
	hostID           uuid.UUID
	status           BookingStatus
	dates            DateRange

	dailyRateCents       int64
	subtotalCents        int64
	serviceFeeCents      int64
	taxCents             int64
	insuranceCents       int64
	totalCents           int64
	securityDepositCents int64
	currency             string

	pickupLocation  string
	dropoffLocation string
	specialRequests string

	confirmedAt *time.Time
	cancelledAt *time.Time
	completedAt *time.Time
	cancelReason string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// GenerateConfirmationCode creates a code in the format "RV-XXXXXX" from
// an alphabet without lookalike characters.
func GenerateConfirmationCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(confirmationCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		result[i] = confirmationCodeChars[n.Int64()]
	}
	return "RV-" + string(result), nil
}

// NewBookingParams holds the inputs for creating a Booking aggregate.
type NewBookingParams struct {
	VehicleID            uuid.UUID
	RenterID             uuid.UUID
	HostID               uuid.UUID
	Dates                DateRange
	Quote                Quote
	SecurityDepositCents int64
	InstantBook          bool
	ConfirmationCode     string
	PickupLocation       string
	DropoffLocation      string
	SpecialRequests      string
}

// NewBooking creates a new Booking aggregate. The initial status is
// pending, or confirmed directly for instant-book vehicles.
func NewBooking(p NewBookingParams) (*Booking, error) {
	if p.VehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if p.RenterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if p.HostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if p.RenterID == p.HostID {
		return nil, domain.NewForbiddenError("you cannot book your own vehicle")
	}
	if p.Quote.Days != p.Dates.Days() {
		return nil, domain.NewValidationError("quote does not match the requested date range")
	}
	if p.SecurityDepositCents < 0 {
		return nil, domain.NewValidationError("security deposit cannot be negative")
	}

	code := p.ConfirmationCode
	if code == "" {
		var err error
		code, err = GenerateConfirmationCode()
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	b := &Booking{
		id:                   uuid.New(),
		confirmationCode:     code,
		vehicleID:            p.VehicleID,
		renterID:             p.RenterID,
		hostID:               p.HostID,
		status:               StatusPending,
		dates:                p.Dates,
		dailyRateCents:       p.Quote.DailyRateCents,
		subtotalCents:        p.Quote.SubtotalCents,
		serviceFeeCents:      p.Quote.ServiceFeeCents,
		taxCents:             p.Quote.TaxCents,
		insuranceCents:       p.Quote.InsuranceCents,
		totalCents:           p.Quote.TotalCents,
		securityDepositCents: p.SecurityDepositCents,
		currency:             CurrencyZMW,
		pickupLocation:       p.PickupLocation,
		dropoffLocation:      p.DropoffLocation,
		specialRequests:      p.SpecialRequests,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}
	if p.InstantBook {
		b.status = StatusConfirmed
		b.confirmedAt = &now
	}
	return b, nil
}

// ReconstructBookingParams carries persisted state back into the aggregate.
type ReconstructBookingParams struct {
	ID               uuid.UUID
	ConfirmationCode string
	VehicleID        uuid.UUID
	RenterID         uuid.UUID
	HostID           uuid.UUID
	Status           BookingStatus
	Dates            DateRange

	DailyRateCents       int64
	SubtotalCents        int64
	ServiceFeeCents      int64
	TaxCents             int64
	InsuranceCents       int64
	TotalCents           int64
	SecurityDepositCents int64
	Currency             string

	PickupLocation  string
	DropoffLocation string
	SpecialRequests string

	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CompletedAt  *time.Time
	CancelReason string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(p ReconstructBookingParams) *Booking {
	return &Booking{
		id:                   p.ID,
		confirmationCode:     p.ConfirmationCode,
		vehicleID:            p.VehicleID,
		renterID:             p.RenterID,
		hostID:               p.HostID,
		status:               p.Status,
		dates:                p.Dates,
		dailyRateCents:       p.DailyRateCents,
		subtotalCents:        p.SubtotalCents,
		serviceFeeCents:      p.ServiceFeeCents,
		taxCents:             p.TaxCents,
		insuranceCents:       p.InsuranceCents,
		totalCents:           p.TotalCents,
		securityDepositCents: p.SecurityDepositCents,
		currency:             p.Currency,
		pickupLocation:       p.PickupLocation,
		dropoffLocation:      p.DropoffLocation,
		specialRequests:      p.SpecialRequests,
		confirmedAt:          p.ConfirmedAt,
		cancelledAt:          p.CancelledAt,
		completedAt:          p.CompletedAt,
		cancelReason:         p.CancelReason,
		version:              p.Version,
		createdAt:            p.CreatedAt,
		updatedAt:            p.UpdatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID               { return b.id }
func (b *Booking) ConfirmationCode() string    { return b.confirmationCode }
func (b *Booking) VehicleID() uuid.UUID        { return b.vehicleID }
func (b *Booking) RenterID() uuid.UUID         { return b.renterID }
func (b *Booking) HostID() uuid.UUID           { return b.hostID }
func (b *Booking) Status() BookingStatus       { return b.status }
func (b *Booking) Dates() DateRange            { return b.dates }
func (b *Booking) StartDate() time.Time        { return b.dates.Start }
func (b *Booking) EndDate() time.Time          { return b.dates.End }
func (b *Booking) DailyRateCents() int64       { return b.dailyRateCents }
func (b *Booking) SubtotalCents() int64        { return b.subtotalCents }
func (b *Booking) ServiceFeeCents() int64      { return b.serviceFeeCents }
func (b *Booking) TaxCents() int64             { return b.taxCents }
func (b *Booking) InsuranceCents() int64       { return b.insuranceCents }
func (b *Booking) TotalCents() int64           { return b.totalCents }
func (b *Booking) SecurityDepositCents() int64 { return b.securityDepositCents }
func (b *Booking) Currency() string            { return b.currency }
func (b *Booking) PickupLocation() string      { return b.pickupLocation }
func (b *Booking) DropoffLocation() string     { return b.dropoffLocation }
func (b *Booking) SpecialRequests() string     { return b.specialRequests }
func (b *Booking) ConfirmedAt() *time.Time     { return b.confirmedAt }
func (b *Booking) CancelledAt() *time.Time     { return b.cancelledAt }
func (b *Booking) CompletedAt() *time.Time     { return b.completedAt }
func (b *Booking) CancelReason() string        { return b.cancelReason }
func (b *Booking) Version() int64              { return b.version }
func (b *Booking) CreatedAt() time.Time        { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time        { return b.updatedAt }

// TotalDays returns the number of rental days currently booked.
func (b *Booking) TotalDays() int { return b.dates.Days() }

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// BeginTrip transitions the booking from confirmed to active. The
// caller must have recorded a pickup inspection first.
func (b *Booking) BeginTrip() error {
	if !b.status.CanTransitionTo(StatusActive) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusActive))
	}
	b.status = StatusActive
	b.updatedAt = time.Now().UTC()
	return nil
}

// CompleteTrip transitions the booking from active to completed. The
// caller must have recorded a return inspection first.
func (b *Booking) CompleteTrip() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled. Not permitted once the
// trip is active or later.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Expire transitions a pending booking that timed out without host
// action to the terminal expired state.
func (b *Booking) Expire() error {
	if !b.status.CanTransitionTo(StatusExpired) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusExpired))
	}
	b.status = StatusExpired
	b.updatedAt = time.Now().UTC()
	return nil
}

// ApplyExtension moves the end date out and folds the priced delta into
// the cost fields. Only the negotiator calls this, after re-validating
// availability over the delta window.
func (b *Booking) ApplyExtension(newEnd time.Time, delta Quote) error {
	if b.status != StatusConfirmed && b.status != StatusActive {
		return domain.NewInvalidTransitionError(string(b.status), "extended")
	}
	extended, err := NewDateRange(b.dates.Start, newEnd)
	if err != nil {
		return err
	}
	if !extended.End.After(b.dates.End) {
		return domain.NewValidationError("new end date must be after current end date")
	}
	b.dates = extended
	b.subtotalCents += delta.SubtotalCents
	b.serviceFeeCents += delta.ServiceFeeCents
	b.taxCents += delta.TaxCents
	b.totalCents += delta.TotalCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
