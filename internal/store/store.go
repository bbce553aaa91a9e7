package store

import (
	"context"
	"errors"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/customers"
	"callboard/internal/timewindow"
)

var (
	// ErrNotFound is returned by Get/Update when no record has the given id.
	ErrNotFound = errors.New("store: not found")

	// ErrEmptyPatch is returned by Update when the patch has no fields set.
	ErrEmptyPatch = errors.New("store: empty patch")
)

// Store is the record-store collaborator contract. Reads are scoped by a
// time window on the record's primary timestamp, a foreign key, or a status
// value; writes are partial patches. The backend serializes concurrent
// writes; callers re-read after mutating instead of trusting local state.
type Store interface {
	ListCalls(ctx context.Context, q CallQuery) ([]calls.Call, error)
	GetCall(ctx context.Context, id string) (calls.Call, error)
	UpdateCall(ctx context.Context, id string, p CallPatch) error

	ListContacts(ctx context.Context, q ContactQuery) ([]contacts.Contact, error)
	GetContact(ctx context.Context, id string) (contacts.Contact, error)
	UpdateContact(ctx context.Context, id string, p ContactPatch) error

	ListAppointments(ctx context.Context, q AppointmentQuery) ([]appointments.Appointment, error)
	GetAppointment(ctx context.Context, id string) (appointments.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, p AppointmentPatch) error

	ListCustomers(ctx context.Context) ([]customers.Customer, error)
	GetCustomer(ctx context.Context, id string) (customers.Customer, error)
}

// CallQuery filters calls by window on call_time and/or owning contact.
// Results are most-recent-first.
type CallQuery struct {
	Window    *timewindow.Window
	ContactID string
}

// ContactQuery filters contacts by window on created_at and/or engagement
// status. Results are most-recent-first.
type ContactQuery struct {
	Window *timewindow.Window
	Status contacts.EngagementStatus
}

// AppointmentQuery filters appointments by window on appointment_time and/or
// owning customer. EarliestFirst selects the schedule ordering used by the
// appointments board; detail history uses most-recent-first.
type AppointmentQuery struct {
	Window        *timewindow.Window
	CustomerID    string
	EarliestFirst bool
}

// CallPatch updates follow-up fields. The status and the derived flag always
// travel together; lifecycle is the only writer.
type CallPatch struct {
	FollowupStatus *calls.FollowupStatus
	NeedsFollowup  *bool
}

func (p CallPatch) isEmpty() bool {
	return p.FollowupStatus == nil && p.NeedsFollowup == nil
}

type ContactPatch struct {
	Status *contacts.EngagementStatus
	Notes  *string
}

func (p ContactPatch) isEmpty() bool {
	return p.Status == nil && p.Notes == nil
}

type AppointmentPatch struct {
	Status *appointments.Status
	Notes  *string
}

func (p AppointmentPatch) isEmpty() bool {
	return p.Status == nil && p.Notes == nil
}
