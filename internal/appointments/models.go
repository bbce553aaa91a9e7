package appointments

import "time"

// Appointment is a scheduled visit for a converted customer. Created by the
// booking flow upstream; this service only transitions Booked appointments to
// Completed.
type Appointment struct {
	ID string `json:"id" db:"id"`

	// AppointmentTime is the primary timestamp used for timeframe filtering.
	AppointmentTime time.Time `json:"appointment_time" db:"appointment_time"`

	Service    string `json:"service" db:"service"`
	Status     Status `json:"status" db:"status"`
	Notes      string `json:"notes,omitempty" db:"notes"`
	CustomerID string `json:"customer_id" db:"customer_id"`
}

type Status string

const (
	StatusBooked    Status = "Booked"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanComplete reports whether an appointment in status s may be marked
// Completed. Completion is one-way and only valid from Booked.
func CanComplete(s Status) bool {
	return s == StatusBooked
}
