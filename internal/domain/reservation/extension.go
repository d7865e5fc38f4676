package reservation

import (
	"time"

	"github.com/google/uuid"
	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// ExtensionStatus represents the state of an extension request.
type ExtensionStatus string

const (
	ExtensionProposed ExtensionStatus = "proposed"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
	ExtensionExpired  ExtensionStatus = "expired"
)

// IsOpen reports whether the request still awaits resolution.
func (s ExtensionStatus) IsOpen() bool { return s == ExtensionProposed }

// ExtensionRequest proposes moving a booking's end date out. Once
// approved it is applied to the booking and becomes immutable history.
type ExtensionRequest struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	requestedBy     uuid.UUID
	originalEndDate time.Time
	newEndDate      time.Time
	additionalDays  int

	subtotalCents   int64
	serviceFeeCents int64
	taxCents        int64
	totalCents      int64

	status       ExtensionStatus
	reason       string
	responseNote string
	respondedBy  *uuid.UUID
	respondedAt  *time.Time

	createdAt time.Time
	updatedAt time.Time
}

// NewExtensionRequest proposes extending the given booking to newEnd.
// The delta quote must cover exactly [booking.EndDate, newEnd).
func NewExtensionRequest(b *Booking, requestedBy uuid.UUID, newEnd time.Time, delta Quote, reason string) (*ExtensionRequest, error) {
	if b.Status() != StatusConfirmed && b.Status() != StatusActive {
		return nil, domain.NewInvalidTransitionError(string(b.Status()), "extension_proposed")
	}
	if requestedBy != b.RenterID() {
		return nil, domain.NewForbiddenError("only the renter can request an extension")
	}
	end := truncateToDay(newEnd)
	if !end.After(b.EndDate()) {
		return nil, domain.NewValidationError("new end date must be after current end date")
	}

	now := time.Now().UTC()
	return &ExtensionRequest{
		id:              uuid.New(),
		bookingID:       b.ID(),
		requestedBy:     requestedBy,
		originalEndDate: b.EndDate(),
		newEndDate:      end,
		additionalDays:  delta.Days,
		subtotalCents:   delta.SubtotalCents,
		serviceFeeCents: delta.ServiceFeeCents,
		taxCents:        delta.TaxCents,
		totalCents:      delta.TotalCents,
		status:          ExtensionProposed,
		reason:          reason,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructExtensionParams carries persisted state back into the aggregate.
type ReconstructExtensionParams struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	RequestedBy     uuid.UUID
	OriginalEndDate time.Time
	NewEndDate      time.Time
	AdditionalDays  int
	SubtotalCents   int64
	ServiceFeeCents int64
	TaxCents        int64
	TotalCents      int64
	Status          ExtensionStatus
	Reason          string
	ResponseNote    string
	RespondedBy     *uuid.UUID
	RespondedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructExtension rebuilds an ExtensionRequest from persistence data.
func ReconstructExtension(p ReconstructExtensionParams) *ExtensionRequest {
	return &ExtensionRequest{
		id:              p.ID,
		bookingID:       p.BookingID,
		requestedBy:     p.RequestedBy,
		originalEndDate: p.OriginalEndDate,
		newEndDate:      p.NewEndDate,
		additionalDays:  p.AdditionalDays,
		subtotalCents:   p.SubtotalCents,
		serviceFeeCents: p.ServiceFeeCents,
		taxCents:        p.TaxCents,
		totalCents:      p.TotalCents,
		status:          p.Status,
		reason:          p.Reason,
		responseNote:    p.ResponseNote,
		respondedBy:     p.RespondedBy,
		respondedAt:     p.RespondedAt,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

// --- Getters ---

func (e *ExtensionRequest) ID() uuid.UUID              { return e.id }
func (e *ExtensionRequest) BookingID() uuid.UUID       { return e.bookingID }
func (e *ExtensionRequest) RequestedBy() uuid.UUID     { return e.requestedBy }
func (e *ExtensionRequest) OriginalEndDate() time.Time { return e.originalEndDate }
func (e *ExtensionRequest) NewEndDate() time.Time      { return e.newEndDate }
func (e *ExtensionRequest) AdditionalDays() int        { return e.additionalDays }
func (e *ExtensionRequest) SubtotalCents() int64       { return e.subtotalCents }
func (e *ExtensionRequest) ServiceFeeCents() int64     { return e.serviceFeeCents }
func (e *ExtensionRequest) TaxCents() int64            { return e.taxCents }
func (e *ExtensionRequest) TotalCents() int64          { return e.totalCents }
func (e *ExtensionRequest) Status() ExtensionStatus    { return e.status }
func (e *ExtensionRequest) Reason() string             { return e.reason }
func (e *ExtensionRequest) ResponseNote() string       { return e.responseNote }
func (e *ExtensionRequest) RespondedBy() *uuid.UUID    { return e.respondedBy }
func (e *ExtensionRequest) RespondedAt() *time.Time    { return e.respondedAt }
func (e *ExtensionRequest) CreatedAt() time.Time       { return e.createdAt }
func (e *ExtensionRequest) UpdatedAt() time.Time       { return e.updatedAt }

// DeltaQuote returns the priced delta this request was proposed with.
func (e *ExtensionRequest) DeltaQuote() Quote {
	return Quote{
		Days:            e.additionalDays,
		SubtotalCents:   e.subtotalCents,
		ServiceFeeCents: e.serviceFeeCents,
		TaxCents:        e.taxCents,
		TotalCents:      e.totalCents,
	}
}

// DeltaRange is the window [originalEnd, newEnd) that must be free for
// the extension to be applied.
func (e *ExtensionRequest) DeltaRange() DateRange {
	return DateRange{Start: e.originalEndDate, End: e.newEndDate}
}

// Approve marks the request approved. Availability over the delta
// window must be re-validated by the caller first.
func (e *ExtensionRequest) Approve(respondedBy uuid.UUID, note string) error {
	return e.resolve(ExtensionApproved, respondedBy, note)
}

// Reject closes the request without touching the booking.
func (e *ExtensionRequest) Reject(respondedBy uuid.UUID, note string) error {
	return e.resolve(ExtensionRejected, respondedBy, note)
}

// Expire closes a request the host never answered.
func (e *ExtensionRequest) Expire() error {
	if !e.status.IsOpen() {
		return domain.NewInvalidTransitionError(string(e.status), string(ExtensionExpired))
	}
	e.status = ExtensionExpired
	e.updatedAt = time.Now().UTC()
	return nil
}

func (e *ExtensionRequest) resolve(target ExtensionStatus, respondedBy uuid.UUID, note string) error {
	if !e.status.IsOpen() {
		return domain.NewInvalidTransitionError(string(e.status), string(target))
	}
	now := time.Now().UTC()
	e.status = target
	e.respondedBy = &respondedBy
	e.responseNote = note
	e.respondedAt = &now
	e.updatedAt = now
	return nil
}
