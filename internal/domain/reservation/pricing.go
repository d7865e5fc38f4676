package reservation

import (
	"time"

	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// Platform pricing policy. Percentages apply to the rental subtotal;
// rounding happens once per output field, never between steps.
const (
	ServiceFeePercent = 10
	TaxPercent        = 16
)

// Quote is an itemized rental cost. All monetary amounts are ZMW cents.
type Quote struct {
	Days            int   `json:"days"`
	DailyRateCents  int64 `json:"daily_rate_cents"`
	SubtotalCents   int64 `json:"subtotal_cents"`
	ServiceFeeCents int64 `json:"service_fee_cents"`
	TaxCents        int64 `json:"tax_cents"`
	InsuranceCents  int64 `json:"insurance_cents"`
	TotalCents      int64 `json:"total_cents"`
}

// CalculateQuote prices a rental over the given range. Pure and
// deterministic: same inputs always yield the same quote.
func CalculateQuote(dailyRateCents int64, dates DateRange, insurancePremiumCents int64) (Quote, error) {
	if dailyRateCents <= 0 {
		return Quote{}, domain.NewValidationError("daily rate must be positive")
	}
	if insurancePremiumCents < 0 {
		return Quote{}, domain.NewValidationError("insurance premium cannot be negative")
	}
	days := dates.Days()
	if days <= 0 {
		return Quote{}, domain.NewValidationError("rental must cover at least one day")
	}

	subtotal := dailyRateCents * int64(days)
	fee := percentOf(subtotal, ServiceFeePercent)
	tax := percentOf(subtotal, TaxPercent)

	return Quote{
		Days:            days,
		DailyRateCents:  dailyRateCents,
		SubtotalCents:   subtotal,
		ServiceFeeCents: fee,
		TaxCents:        tax,
		InsuranceCents:  insurancePremiumCents,
		TotalCents:      subtotal + fee + tax + insurancePremiumCents,
	}, nil
}

// CalculateExtensionQuote prices only the delta days [oldEnd, newEnd)
// added by an extension, at the booking's snapshotted daily rate.
func CalculateExtensionQuote(dailyRateCents int64, oldEnd, newEnd time.Time) (Quote, error) {
	delta, err := NewDateRange(oldEnd, newEnd)
	if err != nil {
		return Quote{}, domain.NewValidationError("new end date must be after current end date")
	}
	return CalculateQuote(dailyRateCents, delta, 0)
}

// percentOf computes pct% of amount in cents, rounding half-up.
func percentOf(amountCents int64, pct int64) int64 {
	return (amountCents*pct + 50) / 100
}
