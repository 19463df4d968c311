// Package usage holds the usage ledger and the quota engine: per-day
// counters keyed by (user, feature, day) and the pure admission rules that
// read them.
package usage

import "time"

// Feature is one of the two metered capabilities.
type Feature string

const (
	FeatureScan       Feature = "scan"
	FeatureCorrection Feature = "correction"
)

// Valid reports whether f is a known feature.
func (f Feature) Valid() bool {
	return f == FeatureScan || f == FeatureCorrection
}

// Subscription plans. Unknown plans fall back to free limits.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// RetentionDays is how long usage records are kept before the janitor may
// remove them. Operational hygiene only: admission never reads expiry.
const RetentionDays = 30

// unlimitedPerDay is the premium base limit. Premium admission
// short-circuits to Allow before any comparison, so this value only shows up
// in usage snapshots returned to clients.
const unlimitedPerDay = 999

// Limits is the per-day allowance for one (plan, feature) pair.
type Limits struct {
	PerDay         int
	MaxBonusPerDay int
}

var planLimits = map[string]map[Feature]Limits{
	PlanFree: {
		FeatureScan:       {PerDay: 1, MaxBonusPerDay: 2},
		FeatureCorrection: {PerDay: 3, MaxBonusPerDay: 2},
	},
	PlanPremium: {
		FeatureScan:       {PerDay: unlimitedPerDay, MaxBonusPerDay: 0},
		FeatureCorrection: {PerDay: unlimitedPerDay, MaxBonusPerDay: 0},
	},
}

// LimitsFor returns the limits for a plan and feature, defaulting to the
// free tier for unknown plans.
func LimitsFor(plan string, f Feature) Limits {
	if limits, ok := planLimits[plan]; ok {
		return limits[f]
	}
	return planLimits[PlanFree][f]
}

// Record is one ledger row: usage of one feature by one user on one UTC day.
// Count and BonusCount only ever increase within a day; a new day implicitly
// starts a fresh record.
type Record struct {
	UserID     string    `json:"user_id"`
	Feature    Feature   `json:"feature"`
	Day        string    `json:"day"` // YYYY-MM-DD, UTC
	Count      int       `json:"count"`
	BonusCount int       `json:"bonus_count"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Today returns the current calendar day in UTC, the ledger's day key.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Snapshot is the usage view returned to clients.
type Snapshot struct {
	Count      int `json:"count"`
	Limit      int `json:"limit"`
	BonusCount int `json:"bonusCount"`
	MaxBonus   int `json:"maxBonus"`
}

// BonusGrant is the result of a successful bonus grant.
type BonusGrant struct {
	BonusCount     int `json:"bonusCount"`
	MaxBonus       int `json:"maxBonus"`
	RemainingBonus int `json:"remainingBonus"`
}
