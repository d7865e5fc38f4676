package inspection

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// InspectionType distinguishes the two checkpoints of a trip.
type InspectionType string

const (
	TypePickup InspectionType = "PICKUP"
	TypeReturn InspectionType = "RETURN"
)

// IsValid returns true if the type is recognized.
func (t InspectionType) IsValid() bool {
	return t == TypePickup || t == TypeReturn
}

// OverallCondition is derived from the damage score, never supplied by
// the caller.
type OverallCondition string

const (
	ConditionExcellent OverallCondition = "EXCELLENT"
	ConditionGood      OverallCondition = "GOOD"
	ConditionFair      OverallCondition = "FAIR"
	ConditionPoor      OverallCondition = "POOR"
	ConditionDamaged   OverallCondition = "DAMAGED"
)

// conditionForScore maps a damage score to the condition grade.
func conditionForScore(score float64) OverallCondition {
	switch {
	case score == 0:
		return ConditionExcellent
	case score <= 2:
		return ConditionGood
	case score <= 5:
		return ConditionFair
	case score <= 10:
		return ConditionPoor
	default:
		return ConditionDamaged
	}
}

// MinPhotos is the least photographic evidence an inspection must carry.
const MinPhotos = 4

// PhotoCategory is where on the vehicle a photo was taken.
type PhotoCategory string

const (
	PhotoExteriorFront PhotoCategory = "exterior_front"
	PhotoExteriorRear  PhotoCategory = "exterior_rear"
	PhotoExteriorLeft  PhotoCategory = "exterior_left"
	PhotoExteriorRight PhotoCategory = "exterior_right"
	PhotoInterior      PhotoCategory = "interior"
	PhotoDashboard     PhotoCategory = "dashboard"
	PhotoDamageDetail  PhotoCategory = "damage_detail"
	PhotoFuelGauge     PhotoCategory = "fuel_gauge"
	PhotoOdometer      PhotoCategory = "odometer"
)

// IsValid returns true if the photo category is recognized.
func (c PhotoCategory) IsValid() bool {
	switch c {
	case PhotoExteriorFront, PhotoExteriorRear, PhotoExteriorLeft, PhotoExteriorRight,
		PhotoInterior, PhotoDashboard, PhotoDamageDetail, PhotoFuelGauge, PhotoOdometer:
		return true
	}
	return false
}

// Photo is one piece of photographic evidence on an inspection.
type Photo struct {
	URL         string        `json:"url"`
	Category    PhotoCategory `json:"category"`
	Description string        `json:"description,omitempty"`
}

// Validate checks the photo fields.
func (p Photo) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("photo URL is required")
	}
	if !p.Category.IsValid() {
		return fmt.Errorf("unknown photo category: %s", p.Category)
	}
	return nil
}

// Inspection is the condition record captured at pickup or return. The
// damage score, repair estimate and overall condition are computed at
// construction and never accepted from input.
type Inspection struct {
	id                   uuid.UUID
	bookingID            uuid.UUID
	inspectionType       InspectionType
	inspectorID          uuid.UUID
	mileageKm            int64
	fuelLevelPercent     int
	photos               []Photo
	damages              []DamageItem
	notes                string
	damageScore          float64
	newDamageCount       int
	estimatedRepairCents int64
	overallCondition     OverallCondition
	createdAt            time.Time
}

// NewInspectionParams carries the raw inspector input.
type NewInspectionParams struct {
	BookingID      uuid.UUID
	InspectionType InspectionType
	InspectorID    uuid.UUID
	MileageKm      int64
	// FuelLevel is a fraction in [0, 1] as reported by the client.
	FuelLevel float64
	Photos    []Photo
	Damages   []DamageItem
	Notes     string
	// PriorDamages is the pickup inspection's damage list, required when
	// InspectionType is RETURN so new damage can be told from pre-existing.
	PriorDamages []DamageItem
	// PriorMileageKm is the pickup odometer reading, enforced as a floor
	// on RETURN inspections.
	PriorMileageKm int64
}

// NewInspection validates the inspector's input and derives the damage
// assessment.
func NewInspection(p NewInspectionParams) (*Inspection, error) {
	if p.BookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if !p.InspectionType.IsValid() {
		return nil, domain.NewValidationError("inspection type must be PICKUP or RETURN")
	}
	if p.InspectorID == uuid.Nil {
		return nil, domain.NewValidationError("inspector ID is required")
	}
	if p.MileageKm <= 0 {
		return nil, domain.NewValidationError("mileage must be positive")
	}
	if p.FuelLevel < 0 || p.FuelLevel > 1 {
		return nil, domain.NewValidationError("fuel level must be between 0 and 1")
	}
	if len(p.Photos) < MinPhotos {
		return nil, domain.NewValidationError(fmt.Sprintf("at least %d photos are required", MinPhotos))
	}
	for _, ph := range p.Photos {
		if err := ph.Validate(); err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
	}
	for _, d := range p.Damages {
		if err := d.Validate(); err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
	}
	if p.InspectionType == TypeReturn && p.MileageKm < p.PriorMileageKm {
		return nil, domain.NewValidationError("return mileage cannot be less than pickup mileage").
			WithDetail("pickup_mileage_km", p.PriorMileageKm).
			WithDetail("return_mileage_km", p.MileageKm)
	}

	var prior []DamageItem
	if p.InspectionType == TypeReturn {
		prior = p.PriorDamages
		if prior == nil {
			prior = []DamageItem{}
		}
	}
	assessment := AssessDamages(p.Damages, prior)

	return &Inspection{
		id:                   uuid.New(),
		bookingID:            p.BookingID,
		inspectionType:       p.InspectionType,
		inspectorID:          p.InspectorID,
		mileageKm:            p.MileageKm,
		fuelLevelPercent:     int(p.FuelLevel*100 + 0.5),
		photos:               p.Photos,
		damages:              p.Damages,
		notes:                p.Notes,
		damageScore:          assessment.Score,
		newDamageCount:       assessment.NewDamageCount,
		estimatedRepairCents: assessment.RepairCostCents,
		overallCondition:     conditionForScore(assessment.Score),
		createdAt:            time.Now().UTC(),
	}, nil
}

// ReconstructParams carries persisted inspection state.
type ReconstructParams struct {
	ID                   uuid.UUID
	BookingID            uuid.UUID
	InspectionType       InspectionType
	InspectorID          uuid.UUID
	MileageKm            int64
	FuelLevelPercent     int
	Photos               []Photo
	Damages              []DamageItem
	Notes                string
	DamageScore          float64
	NewDamageCount       int
	EstimatedRepairCents int64
	OverallCondition     OverallCondition
	CreatedAt            time.Time
}

// Reconstruct rebuilds an Inspection from persistence data (no validation).
func Reconstruct(p ReconstructParams) *Inspection {
	return &Inspection{
		id:                   p.ID,
		bookingID:            p.BookingID,
		inspectionType:       p.InspectionType,
		inspectorID:          p.InspectorID,
		mileageKm:            p.MileageKm,
		fuelLevelPercent:     p.FuelLevelPercent,
		photos:               p.Photos,
		damages:              p.Damages,
		notes:                p.Notes,
		damageScore:          p.DamageScore,
		newDamageCount:       p.NewDamageCount,
		estimatedRepairCents: p.EstimatedRepairCents,
		overallCondition:     p.OverallCondition,
		createdAt:            p.CreatedAt,
	}
}

// --- Getters ---

func (i *Inspection) ID() uuid.UUID                  { return i.id }
func (i *Inspection) BookingID() uuid.UUID           { return i.bookingID }
func (i *Inspection) Type() InspectionType           { return i.inspectionType }
func (i *Inspection) InspectorID() uuid.UUID         { return i.inspectorID }
func (i *Inspection) MileageKm() int64               { return i.mileageKm }
func (i *Inspection) FuelLevelPercent() int          { return i.fuelLevelPercent }
func (i *Inspection) Photos() []Photo                { return i.photos }
func (i *Inspection) Damages() []DamageItem          { return i.damages }
func (i *Inspection) Notes() string                  { return i.notes }
func (i *Inspection) DamageScore() float64           { return i.damageScore }
func (i *Inspection) NewDamageCount() int            { return i.newDamageCount }
func (i *Inspection) EstimatedRepairCents() int64    { return i.estimatedRepairCents }
func (i *Inspection) Condition() OverallCondition    { return i.overallCondition }
func (i *Inspection) CreatedAt() time.Time           { return i.createdAt }

// FuelLevelFraction returns the stored fuel level as the API's [0, 1]
// representation.
func (i *Inspection) FuelLevelFraction() float64 {
	return float64(i.fuelLevelPercent) / 100
}
