// Package audit persists the event trail consumed from JetStream and serves
// it back to users.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log is one persisted audit entry.
type Log struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"user_id"`
	EventType    string          `json:"event_type"`
	Severity     string          `json:"severity"`
	ResourceType string          `json:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
