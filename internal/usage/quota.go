package usage

// Decision is the outcome of an admission or bonus-grant check. Denials
// carry everything a client needs to offer the reward flow.
type Decision struct {
	Allowed       bool
	Count         int
	BaseLimit     int
	BonusCount    int
	MaxBonus      int
	BonusEligible bool
}

// CheckAdmission decides whether one more metered action is permitted today.
// Rule: allow iff count < baseLimit + bonusCount. Premium always allows and
// never offers bonus.
//
// The check is advisory-then-commit: callers evaluate it before the action
// and increment the ledger only after the action succeeds, so two concurrent
// requests can both be admitted. That soft enforcement is deliberate; the
// ledger's atomic increments guarantee no usage is lost, not an exact cap.
func CheckAdmission(plan string, f Feature, count, bonusCount int) Decision {
	limits := LimitsFor(plan, f)

	if plan == PlanPremium {
		return Decision{
			Allowed:    true,
			Count:      count,
			BaseLimit:  limits.PerDay,
			BonusCount: bonusCount,
			MaxBonus:   limits.MaxBonusPerDay,
		}
	}

	return Decision{
		Allowed:       count < limits.PerDay+bonusCount,
		Count:         count,
		BaseLimit:     limits.PerDay,
		BonusCount:    bonusCount,
		MaxBonus:      limits.MaxBonusPerDay,
		BonusEligible: bonusCount < limits.MaxBonusPerDay,
	}
}

// CheckBonusGrant decides whether another bonus unit may be granted today.
// Premium is always denied: unlimited plans have no bonus mechanism.
// Duplicate grants inside the check/increment race window can exceed the
// cap; that is a documented limitation, not something this check corrects.
func CheckBonusGrant(plan string, f Feature, bonusCount int) Decision {
	limits := LimitsFor(plan, f)

	if plan == PlanPremium {
		return Decision{
			Allowed:    false,
			BonusCount: bonusCount,
			BaseLimit:  limits.PerDay,
			MaxBonus:   limits.MaxBonusPerDay,
		}
	}

	return Decision{
		Allowed:       bonusCount < limits.MaxBonusPerDay,
		BonusCount:    bonusCount,
		BaseLimit:     limits.PerDay,
		MaxBonus:      limits.MaxBonusPerDay,
		BonusEligible: bonusCount < limits.MaxBonusPerDay,
	}
}
