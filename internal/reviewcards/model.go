// Package reviewcards turns selected corrections into flashcards for later
// review.
package reviewcards

import (
	"time"

	"github.com/google/uuid"
)

// Card is one flashcard: the mistake, the fix, and a snippet of the diary
// sentence it came from. Tags carry the correction type for filtering.
type Card struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	DiaryID   uuid.UUID `json:"diary_id"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	Context   string    `json:"context"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
