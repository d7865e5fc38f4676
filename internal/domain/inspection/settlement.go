package inspection

import (
	"fmt"
	"strings"

	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// Deposit settlement tariffs.
const (
	// MileageAllowanceKmPerDay is the included distance per rental day.
	MileageAllowanceKmPerDay = 300
	// ExcessMileageCentsPerKm charges each kilometre over the allowance.
	ExcessMileageCentsPerKm = 50
	// FuelShortfallCentsPerPoint charges each percentage point the fuel
	// level dropped below the pickup reading.
	FuelShortfallCentsPerPoint = 100
)

// Settlement is the deposit reconciliation computed after the return
// inspection.
type Settlement struct {
	DepositCents        int64  `json:"deposit_cents"`
	MileagePenaltyCents int64  `json:"mileage_penalty_cents"`
	FuelPenaltyCents    int64  `json:"fuel_penalty_cents"`
	DamagePenaltyCents  int64  `json:"damage_penalty_cents"`
	AdjustmentCents     int64  `json:"adjustment_cents"`
	FinalReturnCents    int64  `json:"final_return_cents"`
	Reason              string `json:"reason,omitempty"`
}

// ComputeSettlement reconciles the security deposit from the pickup and
// return inspections. The final return amount never goes negative; any
// shortfall beyond the deposit is a receivables problem, not a booking
// concern.
func ComputeSettlement(depositCents int64, rentalDays int, pickup, ret *Inspection) (Settlement, error) {
	if pickup == nil || ret == nil {
		return Settlement{}, domain.NewPreconditionFailedError("settlement requires both pickup and return inspections")
	}
	if pickup.Type() != TypePickup || ret.Type() != TypeReturn {
		return Settlement{}, domain.NewValidationError("inspections passed in the wrong order")
	}
	if rentalDays < 1 {
		return Settlement{}, domain.NewValidationError("rental days must be at least 1")
	}

	s := Settlement{DepositCents: depositCents}
	var reasons []string

	drivenKm := ret.MileageKm() - pickup.MileageKm()
	allowanceKm := int64(rentalDays) * MileageAllowanceKmPerDay
	if excess := drivenKm - allowanceKm; excess > 0 {
		s.MileagePenaltyCents = excess * ExcessMileageCentsPerKm
		reasons = append(reasons, fmt.Sprintf("%d km over the %d km allowance", excess, allowanceKm))
	}

	if shortfall := pickup.FuelLevelPercent() - ret.FuelLevelPercent(); shortfall > 0 {
		s.FuelPenaltyCents = int64(shortfall) * FuelShortfallCentsPerPoint
		reasons = append(reasons, fmt.Sprintf("fuel returned %d points below pickup", shortfall))
	}

	if ret.NewDamageCount() > 0 {
		s.DamagePenaltyCents = ret.EstimatedRepairCents()
		reasons = append(reasons, fmt.Sprintf("%d new damage item(s)", ret.NewDamageCount()))
	}

	s.AdjustmentCents = s.MileagePenaltyCents + s.FuelPenaltyCents + s.DamagePenaltyCents
	s.FinalReturnCents = depositCents - s.AdjustmentCents
	if s.FinalReturnCents < 0 {
		s.FinalReturnCents = 0
	}
	s.Reason = strings.Join(reasons, "; ")
	return s, nil
}
