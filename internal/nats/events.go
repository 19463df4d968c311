package nats

import "time"

// Stream and subject layout for the event trail.
const (
	StreamName   = "WRITEDIARY_EVENTS"
	AuditSubject = "writediary.events.audit"
)

// Audit event types.
const (
	EventDiaryCorrected = "diary.corrected"
	EventDiaryScanned   = "diary.scanned"
	EventBonusGranted   = "usage.bonus_granted"
	EventAccountDeleted = "user.account_deleted"
)

// AuditEvent is the envelope published for every notable domain action.
// A durable consumer persists them to the audit log.
type AuditEvent struct {
	UserID       string         `json:"user_id"`
	EventType    string         `json:"event_type"`
	Severity     string         `json:"severity"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}
