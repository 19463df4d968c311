package users

import (
	"time"

	"github.com/writediary/writediary/internal/correction"
)

// User is the locally provisioned profile for an identity-provider subject.
// ID is the provider's opaque subject string, never generated here.
type User struct {
	ID             string              `json:"id"`
	Email          string              `json:"email"`
	DisplayName    string              `json:"display_name"`
	Plan           string              `json:"plan"`
	TargetLanguage correction.Language `json:"target_language"`
	NativeLanguage correction.Language `json:"native_language"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
