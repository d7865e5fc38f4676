package inspection

import "fmt"

// DamageCategory is the closed set of damage classifications.
type DamageCategory string

const (
	CategoryScratch     DamageCategory = "scratch"
	CategoryDent        DamageCategory = "dent"
	CategoryCrack       DamageCategory = "crack"
	CategoryMissingPart DamageCategory = "missing_part"
	CategoryStain       DamageCategory = "stain"
	CategoryMechanical  DamageCategory = "mechanical"
	CategoryElectrical  DamageCategory = "electrical"
	CategoryOther       DamageCategory = "other"
)

// DamageSeverity is the closed set of severity grades.
type DamageSeverity string

const (
	SeverityMinor    DamageSeverity = "minor"
	SeverityModerate DamageSeverity = "moderate"
	SeverityMajor    DamageSeverity = "major"
)

// severityBaseScore is the per-item base contribution to the damage score.
var severityBaseScore = map[DamageSeverity]float64{
	SeverityMinor:    1,
	SeverityModerate: 3,
	SeverityMajor:    5,
}

// categoryMultiplier amplifies categories that affect operability.
var categoryMultiplier = map[DamageCategory]float64{
	CategoryScratch:     1,
	CategoryDent:        1,
	CategoryCrack:       1,
	CategoryMissingPart: 1.5,
	CategoryStain:       1,
	CategoryMechanical:  2,
	CategoryElectrical:  2,
	CategoryOther:       1,
}

// newDamageCategoryMultiplier replaces categoryMultiplier for damage not
// present at pickup; a renter-caused mechanical fault weighs triple.
var newDamageCategoryMultiplier = map[DamageCategory]float64{
	CategoryScratch:     1,
	CategoryDent:        1,
	CategoryCrack:       1,
	CategoryMissingPart: 2.5,
	CategoryStain:       1,
	CategoryMechanical:  3,
	CategoryElectrical:  3,
	CategoryOther:       1,
}

// pickupRepairCostCents is the fallback repair estimate in cents by
// (category, severity), used when the inspector supplies no explicit cost.
var pickupRepairCostCents = map[DamageCategory]map[DamageSeverity]int64{
	CategoryScratch:     {SeverityMinor: 5000, SeverityModerate: 15000, SeverityMajor: 40000},
	CategoryDent:        {SeverityMinor: 10000, SeverityModerate: 30000, SeverityMajor: 80000},
	CategoryCrack:       {SeverityMinor: 8000, SeverityModerate: 25000, SeverityMajor: 60000},
	CategoryMissingPart: {SeverityMinor: 20000, SeverityModerate: 50000, SeverityMajor: 100000},
	CategoryStain:       {SeverityMinor: 3000, SeverityModerate: 8000, SeverityMajor: 20000},
	CategoryMechanical:  {SeverityMinor: 30000, SeverityModerate: 80000, SeverityMajor: 200000},
	CategoryElectrical:  {SeverityMinor: 20000, SeverityModerate: 60000, SeverityMajor: 150000},
	CategoryOther:       {SeverityMinor: 10000, SeverityModerate: 25000, SeverityMajor: 50000},
}

// returnRepairCostCents is the steeper table used at return, where
// repairs block the next rental.
var returnRepairCostCents = map[DamageCategory]map[DamageSeverity]int64{
	CategoryScratch:     {SeverityMinor: 7500, SeverityModerate: 20000, SeverityMajor: 50000},
	CategoryDent:        {SeverityMinor: 15000, SeverityModerate: 40000, SeverityMajor: 100000},
	CategoryCrack:       {SeverityMinor: 12000, SeverityModerate: 35000, SeverityMajor: 80000},
	CategoryMissingPart: {SeverityMinor: 30000, SeverityModerate: 75000, SeverityMajor: 150000},
	CategoryStain:       {SeverityMinor: 5000, SeverityModerate: 12000, SeverityMajor: 30000},
	CategoryMechanical:  {SeverityMinor: 50000, SeverityModerate: 120000, SeverityMajor: 300000},
	CategoryElectrical:  {SeverityMinor: 30000, SeverityModerate: 80000, SeverityMajor: 200000},
	CategoryOther:       {SeverityMinor: 10000, SeverityModerate: 30000, SeverityMajor: 60000},
}

// IsValid returns true if the category is recognized.
func (c DamageCategory) IsValid() bool {
	_, ok := categoryMultiplier[c]
	return ok
}

// IsValid returns true if the severity is recognized.
func (s DamageSeverity) IsValid() bool {
	_, ok := severityBaseScore[s]
	return ok
}

// DamageItem is one reported damage on an inspection.
type DamageItem struct {
	Category          DamageCategory `json:"category"`
	Severity          DamageSeverity `json:"severity"`
	Location          string         `json:"location"`
	Description       string         `json:"description"`
	ExplicitCostCents int64          `json:"explicit_cost_cents,omitempty"`
}

// Validate checks the item against the closed enumerations.
func (d DamageItem) Validate() error {
	if !d.Category.IsValid() {
		return fmt.Errorf("unknown damage category: %s", d.Category)
	}
	if !d.Severity.IsValid() {
		return fmt.Errorf("unknown damage severity: %s", d.Severity)
	}
	if d.ExplicitCostCents < 0 {
		return fmt.Errorf("damage cost cannot be negative")
	}
	return nil
}

// matches reports whether two reports describe the same damage: same
// spot, same kind, same grade.
func (d DamageItem) matches(other DamageItem) bool {
	return d.Location == other.Location && d.Category == other.Category && d.Severity == other.Severity
}

// Assessment is the scorer's output for one inspection.
type Assessment struct {
	Score           float64
	RepairCostCents int64
	NewDamageCount  int
}

// AssessDamages scores a list of reported damages. Summation is
// commutative, so reordering the list never changes the result, and
// adding an item never lowers the score.
//
// priorDamages is the pickup inspection's list when assessing a return;
// an item absent from it is new damage and scores double with steeper
// multipliers and a 1.5x premium on its estimated cost. Pass nil at
// pickup.
func AssessDamages(damages, priorDamages []DamageItem) Assessment {
	var a Assessment
	atReturn := priorDamages != nil
	for _, d := range damages {
		isNew := atReturn && !containsMatch(priorDamages, d)
		if isNew {
			a.NewDamageCount++
		}

		score := severityBaseScore[d.Severity]
		if isNew {
			score *= 2
			score *= newDamageCategoryMultiplier[d.Category]
		} else {
			score *= categoryMultiplier[d.Category]
		}
		a.Score += score

		if d.ExplicitCostCents > 0 {
			a.RepairCostCents += d.ExplicitCostCents
			continue
		}
		table := pickupRepairCostCents
		if atReturn {
			table = returnRepairCostCents
		}
		cost := table[d.Category][d.Severity]
		if isNew {
			cost = cost * 3 / 2
		}
		a.RepairCostCents += cost
	}
	return a
}

func containsMatch(items []DamageItem, target DamageItem) bool {
	for _, it := range items {
		if it.matches(target) {
			return true
		}
	}
	return false
}
