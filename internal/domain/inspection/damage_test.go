package inspection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
)

func dmg(cat inspection.DamageCategory, sev inspection.DamageSeverity, loc string) inspection.DamageItem {
	return inspection.DamageItem{Category: cat, Severity: sev, Location: loc}
}

func TestAssessDamagesAtPickup(t *testing.T) {
	t.Run("empty list scores zero", func(t *testing.T) {
		a := inspection.AssessDamages(nil, nil)
		assert.Zero(t, a.Score)
		assert.Zero(t, a.RepairCostCents)
		assert.Zero(t, a.NewDamageCount)
	})

	t.Run("severity drives the base score", func(t *testing.T) {
		minor := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood"),
		}, nil)
		moderate := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityModerate, "hood"),
		}, nil)
		major := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMajor, "hood"),
		}, nil)

		assert.Equal(t, 1.0, minor.Score)
		assert.Equal(t, 3.0, moderate.Score)
		assert.Equal(t, 5.0, major.Score)
	})

	t.Run("operability categories weigh more", func(t *testing.T) {
		mech := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryMechanical, inspection.SeverityModerate, "engine"),
		}, nil)
		missing := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryMissingPart, inspection.SeverityModerate, "mirror"),
		}, nil)

		assert.Equal(t, 6.0, mech.Score)
		assert.Equal(t, 4.5, missing.Score)
	})

	t.Run("costs come from the pickup table", func(t *testing.T) {
		a := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMinor, "door"),
			dmg(inspection.CategoryMechanical, inspection.SeverityMajor, "gearbox"),
		}, nil)

		assert.Equal(t, int64(5000+200000), a.RepairCostCents)
		assert.Zero(t, a.NewDamageCount, "nothing is new at pickup")
	})

	t.Run("explicit cost overrides the table", func(t *testing.T) {
		item := dmg(inspection.CategoryScratch, inspection.SeverityMinor, "door")
		item.ExplicitCostCents = 12345

		a := inspection.AssessDamages([]inspection.DamageItem{item}, nil)
		assert.Equal(t, int64(12345), a.RepairCostCents)
	})
}

func TestAssessDamagesAtReturn(t *testing.T) {
	prior := []inspection.DamageItem{
		dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood"),
	}

	t.Run("pre-existing damage scores like pickup", func(t *testing.T) {
		a := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood"),
		}, prior)

		assert.Equal(t, 1.0, a.Score)
		assert.Zero(t, a.NewDamageCount)
		assert.Equal(t, int64(7500), a.RepairCostCents, "return cost table applies")
	})

	t.Run("new damage doubles and uses steeper multipliers", func(t *testing.T) {
		a := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryMechanical, inspection.SeverityModerate, "engine"),
		}, prior)

		// base 3 * 2 (new) * 3 (new mechanical).
		assert.Equal(t, 18.0, a.Score)
		assert.Equal(t, 1, a.NewDamageCount)
		// return table 120000 * 3/2.
		assert.Equal(t, int64(180000), a.RepairCostCents)
	})

	t.Run("a changed severity counts as new", func(t *testing.T) {
		a := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityModerate, "hood"),
		}, prior)

		assert.Equal(t, 1, a.NewDamageCount)
		assert.Equal(t, 6.0, a.Score)
	})

	t.Run("empty prior list makes everything new", func(t *testing.T) {
		a := inspection.AssessDamages([]inspection.DamageItem{
			dmg(inspection.CategoryDent, inspection.SeverityMinor, "door"),
		}, []inspection.DamageItem{})

		assert.Equal(t, 1, a.NewDamageCount)
		assert.Equal(t, 2.0, a.Score)
	})

	t.Run("order independent", func(t *testing.T) {
		items := []inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood"),
			dmg(inspection.CategoryDent, inspection.SeverityModerate, "door"),
			dmg(inspection.CategoryElectrical, inspection.SeverityMajor, "dashboard"),
		}
		reversed := []inspection.DamageItem{items[2], items[1], items[0]}

		a := inspection.AssessDamages(items, prior)
		b := inspection.AssessDamages(reversed, prior)
		assert.Equal(t, a, b)
	})

	t.Run("adding an item never lowers the score", func(t *testing.T) {
		base := []inspection.DamageItem{
			dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood"),
		}
		more := append(append([]inspection.DamageItem{}, base...),
			dmg(inspection.CategoryStain, inspection.SeverityMinor, "seat"))

		a := inspection.AssessDamages(base, prior)
		b := inspection.AssessDamages(more, prior)
		assert.GreaterOrEqual(t, b.Score, a.Score)
		assert.GreaterOrEqual(t, b.RepairCostCents, a.RepairCostCents)
	})
}

func TestDamageItemValidate(t *testing.T) {
	valid := dmg(inspection.CategoryScratch, inspection.SeverityMinor, "hood")
	assert.NoError(t, valid.Validate())

	badCat := valid
	badCat.Category = "rust"
	assert.Error(t, badCat.Validate())

	badSev := valid
	badSev.Severity = "catastrophic"
	assert.Error(t, badSev.Validate())

	badCost := valid
	badCost.ExplicitCostCents = -1
	assert.Error(t, badCost.Validate())
}
