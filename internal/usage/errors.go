package usage

import "net/http"

// Denial codes surfaced to clients.
const (
	CodeCorrectionLimitReached = "CORRECTION_LIMIT_REACHED"
	CodeScanLimitReached       = "SCAN_LIMIT_REACHED"
	CodeMaxBonusReached        = "MAX_BONUS_REACHED"
)

// QuotaError is a structured denial. It is an error so orchestration code
// can return it through normal error paths, but handlers unwrap it into a
// 403 with the full payload instead of a generic message.
type QuotaError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Count      int    `json:"count"`
	Limit      int    `json:"limit"`
	BonusCount int    `json:"bonusCount"`
	MaxBonus   int    `json:"maxBonus"`
	CanWatchAd bool   `json:"canWatchAd"`
}

func (e *QuotaError) Error() string {
	return e.Message
}

// HTTPStatus lets the HTTP layer serialize the denial payload as-is.
func (e *QuotaError) HTTPStatus() int {
	return http.StatusForbidden
}

// DenialError builds the QuotaError for a denied admission decision.
func DenialError(f Feature, d Decision) *QuotaError {
	code := CodeCorrectionLimitReached
	message := "Daily correction limit reached"
	if f == FeatureScan {
		code = CodeScanLimitReached
		message = "Daily scan limit reached"
	}
	return &QuotaError{
		Code:       code,
		Message:    message,
		Count:      d.Count,
		Limit:      d.BaseLimit,
		BonusCount: d.BonusCount,
		MaxBonus:   d.MaxBonus,
		CanWatchAd: d.BonusEligible,
	}
}

// BonusDenialError builds the QuotaError for a denied bonus grant.
func BonusDenialError(d Decision) *QuotaError {
	return &QuotaError{
		Code:       CodeMaxBonusReached,
		Message:    "Maximum bonus already granted for today",
		Count:      d.Count,
		Limit:      d.BaseLimit,
		BonusCount: d.BonusCount,
		MaxBonus:   d.MaxBonus,
	}
}
