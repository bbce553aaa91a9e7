package audit

import "time"

// Event is an immutable, append-only activity record for board mutations.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block a mutation on audit
//   failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// RecordID is the call, contact or appointment the mutation touched.
	RecordID string `json:"record_id,omitempty" db:"record_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallFollowup      EventType = "call_followup"
	EventTypeContactStatus     EventType = "contact_status"
	EventTypeContactNotes      EventType = "contact_notes"
	EventTypeAppointmentClosed EventType = "appointment_completed"
)
