package customers

import "time"

// Customer is a contact that converted: they have at least one booked
// appointment. Customers are created by the booking flow; this service only
// reads them.
type Customer struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email" db:"email"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
