package store

import (
	"context"
	"sort"
	"sync"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/customers"
)

// Memory is a mutex-guarded in-memory store for tests and early development.
// Ordering matches the Postgres implementation so callers can rely on it.
type Memory struct {
	mu sync.Mutex

	Calls        []calls.Call
	Contacts     []contacts.Contact
	Appointments []appointments.Appointment
	Customers    []customers.Customer

	// FailWith, when set, is returned by every call. Lets tests exercise the
	// store-failure paths without a second fake.
	FailWith error

	// LastCallPatch records the most recent UpdateCall patch so tests can
	// assert the status and derived flag were written together.
	LastCallPatch CallPatch
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) ListCalls(ctx context.Context, q CallQuery) ([]calls.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]calls.Call, 0)
	for _, c := range m.Calls {
		if q.Window != nil && !q.Window.Contains(c.CallTime) {
			continue
		}
		if q.ContactID != "" && c.ContactID != q.ContactID {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CallTime.After(out[j].CallTime)
	})
	return out, nil
}

func (m *Memory) GetCall(ctx context.Context, id string) (calls.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return calls.Call{}, m.FailWith
	}
	for _, c := range m.Calls {
		if c.ID == id {
			return c, nil
		}
	}
	return calls.Call{}, ErrNotFound
}

func (m *Memory) UpdateCall(ctx context.Context, id string, p CallPatch) error {
	if p.isEmpty() {
		return ErrEmptyPatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Calls {
		if m.Calls[i].ID != id {
			continue
		}
		if p.FollowupStatus != nil {
			m.Calls[i].FollowupStatus = *p.FollowupStatus
		}
		if p.NeedsFollowup != nil {
			m.Calls[i].NeedsFollowup = *p.NeedsFollowup
		}
		m.LastCallPatch = p
		return nil
	}
	return ErrNotFound
}

func (m *Memory) ListContacts(ctx context.Context, q ContactQuery) ([]contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]contacts.Contact, 0)
	for _, c := range m.Contacts {
		if q.Window != nil && !q.Window.Contains(c.CreatedAt) {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetContact(ctx context.Context, id string) (contacts.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return contacts.Contact{}, m.FailWith
	}
	for _, c := range m.Contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return contacts.Contact{}, ErrNotFound
}

func (m *Memory) UpdateContact(ctx context.Context, id string, p ContactPatch) error {
	if p.isEmpty() {
		return ErrEmptyPatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Contacts {
		if m.Contacts[i].ID != id {
			continue
		}
		if p.Status != nil {
			m.Contacts[i].Status = *p.Status
		}
		if p.Notes != nil {
			m.Contacts[i].Notes = *p.Notes
		}
		return nil
	}
	return ErrNotFound
}

func (m *Memory) ListAppointments(ctx context.Context, q AppointmentQuery) ([]appointments.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]appointments.Appointment, 0)
	for _, a := range m.Appointments {
		if q.Window != nil && !q.Window.Contains(a.AppointmentTime) {
			continue
		}
		if q.CustomerID != "" && a.CustomerID != q.CustomerID {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.EarliestFirst {
			return out[i].AppointmentTime.Before(out[j].AppointmentTime)
		}
		return out[i].AppointmentTime.After(out[j].AppointmentTime)
	})
	return out, nil
}

func (m *Memory) GetAppointment(ctx context.Context, id string) (appointments.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return appointments.Appointment{}, m.FailWith
	}
	for _, a := range m.Appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return appointments.Appointment{}, ErrNotFound
}

func (m *Memory) UpdateAppointment(ctx context.Context, id string, p AppointmentPatch) error {
	if p.isEmpty() {
		return ErrEmptyPatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.Appointments {
		if m.Appointments[i].ID != id {
			continue
		}
		if p.Status != nil {
			m.Appointments[i].Status = *p.Status
		}
		if p.Notes != nil {
			m.Appointments[i].Notes = *p.Notes
		}
		return nil
	}
	return ErrNotFound
}

func (m *Memory) ListCustomers(ctx context.Context) ([]customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]customers.Customer, len(m.Customers))
	copy(out, m.Customers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetCustomer(ctx context.Context, id string) (customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return customers.Customer{}, m.FailWith
	}
	for _, c := range m.Customers {
		if c.ID == id {
			return c, nil
		}
	}
	return customers.Customer{}, ErrNotFound
}

var _ Store = (*Memory)(nil)
