package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAdmission_FreeUnderLimit(t *testing.T) {
	d := CheckAdmission(PlanFree, FeatureCorrection, 2, 0)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.BaseLimit)
	assert.True(t, d.BonusEligible)
}

func TestCheckAdmission_FreeAtLimit(t *testing.T) {
	d := CheckAdmission(PlanFree, FeatureCorrection, 3, 0)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
	assert.True(t, d.BonusEligible, "no bonus granted yet, ad offer should stand")
}

func TestCheckAdmission_BonusExtendsLimit(t *testing.T) {
	// count 3 with 1 bonus: effective limit is 4
	d := CheckAdmission(PlanFree, FeatureCorrection, 3, 1)
	assert.True(t, d.Allowed)

	d = CheckAdmission(PlanFree, FeatureCorrection, 4, 1)
	assert.False(t, d.Allowed)
	assert.True(t, d.BonusEligible, "one more bonus unit is still available")

	d = CheckAdmission(PlanFree, FeatureCorrection, 5, 2)
	assert.False(t, d.Allowed)
	assert.False(t, d.BonusEligible, "bonus cap reached")
}

func TestCheckAdmission_ScanLimits(t *testing.T) {
	d := CheckAdmission(PlanFree, FeatureScan, 0, 0)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.BaseLimit)
	assert.Equal(t, 2, d.MaxBonus)

	d = CheckAdmission(PlanFree, FeatureScan, 1, 0)
	assert.False(t, d.Allowed)
}

func TestCheckAdmission_PremiumAlwaysAllowed(t *testing.T) {
	for _, f := range []Feature{FeatureScan, FeatureCorrection} {
		d := CheckAdmission(PlanPremium, f, 10000, 0)
		assert.True(t, d.Allowed, "feature %s", f)
		assert.False(t, d.BonusEligible, "premium never gets the ad offer")
	}
}

func TestCheckAdmission_UnknownPlanFallsBackToFree(t *testing.T) {
	d := CheckAdmission("enterprise", FeatureCorrection, 3, 0)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.BaseLimit)
}

func TestCheckBonusGrant(t *testing.T) {
	d := CheckBonusGrant(PlanFree, FeatureCorrection, 0)
	assert.True(t, d.Allowed)

	d = CheckBonusGrant(PlanFree, FeatureCorrection, 1)
	assert.True(t, d.Allowed)

	d = CheckBonusGrant(PlanFree, FeatureCorrection, 2)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2, d.MaxBonus)
}

func TestCheckBonusGrant_PremiumDenied(t *testing.T) {
	d := CheckBonusGrant(PlanPremium, FeatureScan, 0)
	assert.False(t, d.Allowed)
}

func TestLimitsFor(t *testing.T) {
	l := LimitsFor(PlanFree, FeatureScan)
	assert.Equal(t, Limits{PerDay: 1, MaxBonusPerDay: 2}, l)

	l = LimitsFor(PlanFree, FeatureCorrection)
	assert.Equal(t, Limits{PerDay: 3, MaxBonusPerDay: 2}, l)

	l = LimitsFor(PlanPremium, FeatureCorrection)
	assert.Equal(t, 999, l.PerDay)
	assert.Equal(t, 0, l.MaxBonusPerDay)
}
