package detail

import (
	"context"
	"fmt"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/customers"
	"callboard/internal/store"
)

// Aggregator assembles a detail view: the entity plus its time-ordered
// related history. Missing ids surface store.ErrNotFound.
type Aggregator struct {
	store store.Store
}

func NewAggregator(st store.Store) *Aggregator { return &Aggregator{store: st} }

// ContactDetail is a contact with its calls, most recent first.
type ContactDetail struct {
	Contact contacts.Contact `json:"contact"`
	Calls   []calls.Call     `json:"calls"`
}

// LatestCall returns the most recent call, used to surface latest-known
// auxiliary fields (service interest, recording) on the contact view.
func (d ContactDetail) LatestCall() (calls.Call, bool) {
	if len(d.Calls) == 0 {
		return calls.Call{}, false
	}
	return d.Calls[0], true
}

func (a *Aggregator) ContactDetail(ctx context.Context, id string) (ContactDetail, error) {
	c, err := a.store.GetContact(ctx, id)
	if err != nil {
		return ContactDetail{}, fmt.Errorf("contact detail: %w", err)
	}
	history, err := a.store.ListCalls(ctx, store.CallQuery{ContactID: id})
	if err != nil {
		return ContactDetail{}, fmt.Errorf("contact call history: %w", err)
	}
	return ContactDetail{Contact: c, Calls: history}, nil
}

// CustomerDetail is a customer with its appointments, most recent first.
type CustomerDetail struct {
	Customer     customers.Customer         `json:"customer"`
	Appointments []appointments.Appointment `json:"appointments"`
}

func (d CustomerDetail) LatestAppointment() (appointments.Appointment, bool) {
	if len(d.Appointments) == 0 {
		return appointments.Appointment{}, false
	}
	return d.Appointments[0], true
}

func (a *Aggregator) CustomerDetail(ctx context.Context, id string) (CustomerDetail, error) {
	c, err := a.store.GetCustomer(ctx, id)
	if err != nil {
		return CustomerDetail{}, fmt.Errorf("customer detail: %w", err)
	}
	history, err := a.store.ListAppointments(ctx, store.AppointmentQuery{CustomerID: id})
	if err != nil {
		return CustomerDetail{}, fmt.Errorf("customer appointment history: %w", err)
	}
	return CustomerDetail{Customer: c, Appointments: history}, nil
}
