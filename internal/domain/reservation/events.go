package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics the reservation engine publishes to and consumes from.
const (
	TopicReservationEvents = "reservation.events"
	TopicPaymentEvents     = "payment.events"
)

// Event types carried in the CloudEvent envelope.
const (
	EventBookingRequested  = "reservation.booking.requested"
	EventBookingConfirmed  = "reservation.booking.confirmed"
	EventBookingCancelled  = "reservation.booking.cancelled"
	EventBookingExpired    = "reservation.booking.expired"
	EventTripStarted       = "reservation.booking.trip_started"
	EventBookingCompleted  = "reservation.booking.completed"
	EventExtensionProposed = "reservation.extension.requested"
	EventExtensionApproved = "reservation.extension.approved"
	EventExtensionRejected = "reservation.extension.rejected"
	EventDepositSettlement = "reservation.deposit.settlement_computed"

	// Consumed from the payment collaborator.
	EventPaymentCaptured = "payment.captured"
	EventPaymentRefunded = "payment.refunded"
)

// BookingEvent is the payload for booking lifecycle events.
type BookingEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	RenterID         uuid.UUID `json:"renter_id"`
	HostID           uuid.UUID `json:"host_id"`
	Status           string    `json:"status"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TotalCents       int64     `json:"total_cents"`
	DepositCents     int64     `json:"deposit_cents"`
	Currency         string    `json:"currency"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ExtensionEvent is the payload for extension lifecycle events.
type ExtensionEvent struct {
	ExtensionID    uuid.UUID `json:"extension_id"`
	BookingID      uuid.UUID `json:"booking_id"`
	RenterID       uuid.UUID `json:"renter_id"`
	HostID         uuid.UUID `json:"host_id"`
	NewEndDate     time.Time `json:"new_end_date"`
	AdditionalDays int       `json:"additional_days"`
	TotalCents     int64     `json:"total_cents"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// DepositSettlementEvent tells the payment collaborator how much of the
// security deposit to release after the return inspection.
type DepositSettlementEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	RenterID         uuid.UUID `json:"renter_id"`
	HostID           uuid.UUID `json:"host_id"`
	DepositCents     int64     `json:"deposit_cents"`
	AdjustmentCents  int64     `json:"adjustment_cents"`
	FinalReturnCents int64     `json:"final_return_cents"`
	AdjustmentReason string    `json:"adjustment_reason,omitempty"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is consumed from the payment collaborator; a
// captured charge confirms the pending booking it references.
type PaymentCapturedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     int64     `json:"amount_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent builds the common booking payload from an aggregate.
func NewBookingEvent(b *Booking, reason string) BookingEvent {
	return BookingEvent{
		BookingID:        b.ID(),
		ConfirmationCode: b.ConfirmationCode(),
		VehicleID:        b.VehicleID(),
		RenterID:         b.RenterID(),
		HostID:           b.HostID(),
		Status:           string(b.Status()),
		StartDate:        b.StartDate(),
		EndDate:          b.EndDate(),
		TotalCents:       b.TotalCents(),
		DepositCents:     b.SecurityDepositCents(),
		Currency:         b.Currency(),
		Reason:           reason,
		OccurredAt:       time.Now().UTC(),
	}
}
