package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// BookingDTO is the transport representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	VehicleID        uuid.UUID `json:"vehicle_id"`
	RenterID         uuid.UUID `json:"renter_id"`
	HostID           uuid.UUID `json:"host_id"`
	Status           string    `json:"status"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	TotalDays        int       `json:"total_days"`

	DailyRateCents       int64  `json:"daily_rate_cents"`
	SubtotalCents        int64  `json:"subtotal_cents"`
	ServiceFeeCents      int64  `json:"service_fee_cents"`
	TaxCents             int64  `json:"tax_cents"`
	InsuranceCents       int64  `json:"insurance_cents"`
	TotalCents           int64  `json:"total_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	Currency             string `json:"currency"`

	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`

	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteDTO is the transport representation of a price quote.
type QuoteDTO struct {
	Days            int    `json:"days"`
	DailyRateCents  int64  `json:"daily_rate_cents"`
	SubtotalCents   int64  `json:"subtotal_cents"`
	ServiceFeeCents int64  `json:"service_fee_cents"`
	TaxCents        int64  `json:"tax_cents"`
	InsuranceCents  int64  `json:"insurance_cents"`
	TotalCents      int64  `json:"total_cents"`
	Currency        string `json:"currency"`
}

// AvailabilityDTO is the oracle's answer for one query.
type AvailabilityDTO struct {
	VehicleID  uuid.UUID   `json:"vehicle_id"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	Available  bool        `json:"available"`
	BlockerIDs []uuid.UUID `json:"blocker_ids,omitempty"`
}

// ExtensionDTO is the transport representation of an extension request.
type ExtensionDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingID       uuid.UUID  `json:"booking_id"`
	RequestedBy     uuid.UUID  `json:"requested_by"`
	OriginalEndDate string     `json:"original_end_date"`
	NewEndDate      string     `json:"new_end_date"`
	AdditionalDays  int        `json:"additional_days"`
	SubtotalCents   int64      `json:"subtotal_cents"`
	ServiceFeeCents int64      `json:"service_fee_cents"`
	TaxCents        int64      `json:"tax_cents"`
	TotalCents      int64      `json:"total_cents"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	ResponseNote    string     `json:"response_note,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// InspectionDTO is the transport representation of an inspection.
type InspectionDTO struct {
	ID                   uuid.UUID               `json:"id"`
	BookingID            uuid.UUID               `json:"booking_id"`
	Type                 string                  `json:"type"`
	InspectorID          uuid.UUID               `json:"inspector_id"`
	MileageKm            int64                   `json:"mileage_km"`
	FuelLevel            float64                 `json:"fuel_level"`
	Photos               []inspection.Photo      `json:"photos"`
	Damages              []inspection.DamageItem `json:"damages"`
	Notes                string                  `json:"notes,omitempty"`
	DamageScore          float64                 `json:"damage_score"`
	NewDamageCount       int                     `json:"new_damage_count"`
	EstimatedRepairCents int64                   `json:"estimated_repair_cents"`
	OverallCondition     string                  `json:"overall_condition"`
	CreatedAt            time.Time               `json:"created_at"`
}

// SettlementDTO is the transport representation of a deposit settlement.
type SettlementDTO struct {
	BookingID           uuid.UUID `json:"booking_id"`
	DepositCents        int64     `json:"deposit_cents"`
	MileagePenaltyCents int64     `json:"mileage_penalty_cents"`
	FuelPenaltyCents    int64     `json:"fuel_penalty_cents"`
	DamagePenaltyCents  int64     `json:"damage_penalty_cents"`
	AdjustmentCents     int64     `json:"adjustment_cents"`
	FinalReturnCents    int64     `json:"final_return_cents"`
	Reason              string    `json:"reason,omitempty"`
	Currency            string    `json:"currency"`
}

const dateLayout = "2006-01-02"

func toBookingDTO(b *reservation.Booking) *BookingDTO {
	return &BookingDTO{
		ID:                   b.ID(),
		ConfirmationCode:     b.ConfirmationCode(),
		VehicleID:            b.VehicleID(),
		RenterID:             b.RenterID(),
		HostID:               b.HostID(),
		Status:               string(b.Status()),
		StartDate:            b.StartDate().Format(dateLayout),
		EndDate:              b.EndDate().Format(dateLayout),
		TotalDays:            b.TotalDays(),
		DailyRateCents:       b.DailyRateCents(),
		SubtotalCents:        b.SubtotalCents(),
		ServiceFeeCents:      b.ServiceFeeCents(),
		TaxCents:             b.TaxCents(),
		InsuranceCents:       b.InsuranceCents(),
		TotalCents:           b.TotalCents(),
		SecurityDepositCents: b.SecurityDepositCents(),
		Currency:             b.Currency(),
		PickupLocation:       b.PickupLocation(),
		DropoffLocation:      b.DropoffLocation(),
		SpecialRequests:      b.SpecialRequests(),
		ConfirmedAt:          b.ConfirmedAt(),
		CancelledAt:          b.CancelledAt(),
		CompletedAt:          b.CompletedAt(),
		CancelReason:         b.CancelReason(),
		CreatedAt:            b.CreatedAt(),
		UpdatedAt:            b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*reservation.Booking) []*BookingDTO {
	out := make([]*BookingDTO, len(bookings))
	for i, b := range bookings {
		out[i] = toBookingDTO(b)
	}
	return out
}

func toQuoteDTO(q reservation.Quote) *QuoteDTO {
	return &QuoteDTO{
		Days:            q.Days,
		DailyRateCents:  q.DailyRateCents,
		SubtotalCents:   q.SubtotalCents,
		ServiceFeeCents: q.ServiceFeeCents,
		TaxCents:        q.TaxCents,
		InsuranceCents:  q.InsuranceCents,
		TotalCents:      q.TotalCents,
		Currency:        reservation.CurrencyZMW,
	}
}

func toExtensionDTO(e *reservation.ExtensionRequest) *ExtensionDTO {
	return &ExtensionDTO{
		ID:              e.ID(),
		BookingID:       e.BookingID(),
		RequestedBy:     e.RequestedBy(),
		OriginalEndDate: e.OriginalEndDate().Format(dateLayout),
		NewEndDate:      e.NewEndDate().Format(dateLayout),
		AdditionalDays:  e.AdditionalDays(),
		SubtotalCents:   e.SubtotalCents(),
		ServiceFeeCents: e.ServiceFeeCents(),
		TaxCents:        e.TaxCents(),
		TotalCents:      e.TotalCents(),
		Status:          string(e.Status()),
		Reason:          e.Reason(),
		ResponseNote:    e.ResponseNote(),
		RespondedAt:     e.RespondedAt(),
		CreatedAt:       e.CreatedAt(),
	}
}

func toInspectionDTO(i *inspection.Inspection) *InspectionDTO {
	return &InspectionDTO{
		ID:                   i.ID(),
		BookingID:            i.BookingID(),
		Type:                 string(i.Type()),
		InspectorID:          i.InspectorID(),
		MileageKm:            i.MileageKm(),
		FuelLevel:            i.FuelLevelFraction(),
		Photos:               i.Photos(),
		Damages:              i.Damages(),
		Notes:                i.Notes(),
		DamageScore:          i.DamageScore(),
		NewDamageCount:       i.NewDamageCount(),
		EstimatedRepairCents: i.EstimatedRepairCents(),
		OverallCondition:     string(i.Condition()),
		CreatedAt:            i.CreatedAt(),
	}
}

func toSettlementDTO(bookingID uuid.UUID, s inspection.Settlement) *SettlementDTO {
	return &SettlementDTO{
		BookingID:           bookingID,
		DepositCents:        s.DepositCents,
		MileagePenaltyCents: s.MileagePenaltyCents,
		FuelPenaltyCents:    s.FuelPenaltyCents,
		DamagePenaltyCents:  s.DamagePenaltyCents,
		AdjustmentCents:     s.AdjustmentCents,
		FinalReturnCents:    s.FinalReturnCents,
		Reason:              s.Reason,
		Currency:            reservation.CurrencyZMW,
	}
}
