package contacts

import "time"

// Contact is a person derived from one or more inbound calls. Contacts are
// created upstream; staff triage them here by engagement status and notes.
type Contact struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	Status          EngagementStatus `json:"status" db:"status"`
	Notes           string           `json:"notes,omitempty" db:"notes"`
	ServiceInterest string           `json:"service_interest,omitempty" db:"service_interest"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EngagementStatus is the triage stage of a contact. Any status may move to
// any other.
type EngagementStatus string

const (
	StatusNeedsAttention EngagementStatus = "Needs Attention"
	StatusContacted      EngagementStatus = "Contacted"
	StatusBooked         EngagementStatus = "Booked"
	StatusNotInterested  EngagementStatus = "Not Interested"
)

func (s EngagementStatus) Valid() bool {
	switch s {
	case StatusNeedsAttention, StatusContacted, StatusBooked, StatusNotInterested:
		return true
	default:
		return false
	}
}
