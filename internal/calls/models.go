package calls

import "time"

// Call is an inbound after-hours call surfaced on the operations board.
//
// Calls are created by the upstream ingestion pipeline; this service only
// mutates the follow-up fields.
//
// Derived-field invariant: NeedsFollowup is computed from FollowupStatus by
// NeedsFollowup() below and the two must always be written together in a
// single patch. Nothing else may set the flag.
type Call struct {
	ID          string `json:"id" db:"id"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	// CallTime is the primary timestamp used for timeframe filtering.
	CallTime        time.Time `json:"call_time" db:"call_time"`
	DurationSeconds int       `json:"duration" db:"duration"`

	// ContactID links to the contact derived from this call, when known.
	ContactID string `json:"contact_id,omitempty" db:"contact_id"`

	Transcript      string `json:"transcript,omitempty" db:"transcript"`
	Summary         string `json:"summary,omitempty" db:"summary"`
	RecordingURL    string `json:"recording_url,omitempty" db:"recording_url"`
	ServiceInterest string `json:"service_interest,omitempty" db:"service_interest"`

	FollowupStatus FollowupStatus `json:"followup_status" db:"followup_status"`
	NeedsFollowup  bool           `json:"needs_followup" db:"needs_followup"`
}

// FollowupStatus is the staff-action state of a call. Transitions are
// unrestricted; the only invariant is the derived needs-followup flag.
type FollowupStatus string

const (
	FollowupPending   FollowupStatus = "Pending"
	FollowupCompleted FollowupStatus = "Completed"
	FollowupBooked    FollowupStatus = "Booked"
)

// Valid reports whether s is a known follow-up status.
func (s FollowupStatus) Valid() bool {
	switch s {
	case FollowupPending, FollowupCompleted, FollowupBooked:
		return true
	default:
		return false
	}
}

// NeedsFollowup is the single definition of the derived flag: a call needs
// follow-up unless its status is Completed or Booked.
func NeedsFollowup(s FollowupStatus) bool {
	return s != FollowupCompleted && s != FollowupBooked
}
