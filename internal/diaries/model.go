// Package diaries owns diary entries and orchestrates the AI correction and
// handwriting scan flows around them.
package diaries

import (
	"time"

	"github.com/google/uuid"

	"github.com/writediary/writediary/internal/correction"
)

// Input types record how an entry came to exist.
const (
	InputManual = "manual"
	InputScan   = "scan"
)

// Diary is one dated entry. CorrectedText and Corrections are nil until a
// correction pass has been persisted; editing the text clears them again.
type Diary struct {
	ID            uuid.UUID               `json:"id"`
	UserID        string                  `json:"user_id"`
	Date          string                  `json:"date"` // YYYY-MM-DD
	OriginalText  string                  `json:"original_text"`
	CorrectedText *string                 `json:"corrected_text,omitempty"`
	Corrections   []correction.Correction `json:"corrections,omitempty"`
	InputType     string                  `json:"input_type"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// Corrected reports whether a correction pass has been stored for the entry.
func (d *Diary) Corrected() bool {
	return d.CorrectedText != nil
}
