package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/customers"
	"callboard/internal/store"
)

// Store is the Postgres-backed record store. It assumes the tables
// calls, contacts, appointments and customers owned by the ingestion and
// booking pipelines; this service never inserts or deletes rows.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

const callColumns = `
id, phone_number, call_time, duration,
COALESCE(contact_id, ''), COALESCE(transcript, ''), COALESCE(summary, ''),
COALESCE(recording_url, ''), COALESCE(service_interest, ''),
followup_status, needs_followup`

func scanCall(row interface{ Scan(...any) error }) (calls.Call, error) {
	var c calls.Call
	err := row.Scan(
		&c.ID,
		&c.PhoneNumber,
		&c.CallTime,
		&c.DurationSeconds,
		&c.ContactID,
		&c.Transcript,
		&c.Summary,
		&c.RecordingURL,
		&c.ServiceInterest,
		&c.FollowupStatus,
		&c.NeedsFollowup,
	)
	return c, err
}

func (s *Store) ListCalls(ctx context.Context, q store.CallQuery) ([]calls.Call, error) {
	where, args := buildWhere(condSet{
		timeField:  "call_time",
		window:     q.Window,
		equalField: "contact_id",
		equalValue: q.ContactID,
	})
	query := fmt.Sprintf(`SELECT %s FROM calls%s ORDER BY call_time DESC`, callColumns, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	out := make([]calls.Call, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCall(ctx context.Context, id string) (calls.Call, error) {
	query := fmt.Sprintf(`SELECT %s FROM calls WHERE id = $1`, callColumns)
	c, err := scanCall(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return calls.Call{}, store.ErrNotFound
	}
	if err != nil {
		return calls.Call{}, fmt.Errorf("get call: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCall(ctx context.Context, id string, p store.CallPatch) error {
	set := newSetClause()
	if p.FollowupStatus != nil {
		set.add("followup_status", *p.FollowupStatus)
	}
	if p.NeedsFollowup != nil {
		set.add("needs_followup", *p.NeedsFollowup)
	}
	return s.exec(ctx, "calls", id, set)
}

const contactColumns = `
id, name, phone, COALESCE(email, ''), status,
COALESCE(notes, ''), COALESCE(service_interest, ''), created_at`

func scanContact(row interface{ Scan(...any) error }) (contacts.Contact, error) {
	var c contacts.Contact
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Status,
		&c.Notes,
		&c.ServiceInterest,
		&c.CreatedAt,
	)
	return c, err
}

func (s *Store) ListContacts(ctx context.Context, q store.ContactQuery) ([]contacts.Contact, error) {
	where, args := buildWhere(condSet{
		timeField:  "created_at",
		window:     q.Window,
		equalField: "status",
		equalValue: string(q.Status),
	})
	query := fmt.Sprintf(`SELECT %s FROM contacts%s ORDER BY created_at DESC`, contactColumns, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]contacts.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetContact(ctx context.Context, id string) (contacts.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE id = $1`, contactColumns)
	c, err := scanContact(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return contacts.Contact{}, store.ErrNotFound
	}
	if err != nil {
		return contacts.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateContact(ctx context.Context, id string, p store.ContactPatch) error {
	set := newSetClause()
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.Notes != nil {
		set.add("notes", *p.Notes)
	}
	return s.exec(ctx, "contacts", id, set)
}

const appointmentColumns = `
id, appointment_time, service, status, COALESCE(notes, ''), customer_id`

func scanAppointment(row interface{ Scan(...any) error }) (appointments.Appointment, error) {
	var a appointments.Appointment
	err := row.Scan(
		&a.ID,
		&a.AppointmentTime,
		&a.Service,
		&a.Status,
		&a.Notes,
		&a.CustomerID,
	)
	return a, err
}

func (s *Store) ListAppointments(ctx context.Context, q store.AppointmentQuery) ([]appointments.Appointment, error) {
	where, args := buildWhere(condSet{
		timeField:  "appointment_time",
		window:     q.Window,
		equalField: "customer_id",
		equalValue: q.CustomerID,
	})
	dir := "DESC"
	if q.EarliestFirst {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM appointments%s ORDER BY appointment_time %s`, appointmentColumns, where, dir)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id string) (appointments.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, store.ErrNotFound
	}
	if err != nil {
		return appointments.Appointment{}, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, id string, p store.AppointmentPatch) error {
	set := newSetClause()
	if p.Status != nil {
		set.add("status", *p.Status)
	}
	if p.Notes != nil {
		set.add("notes", *p.Notes)
	}
	return s.exec(ctx, "appointments", id, set)
}

const customerColumns = `id, name, phone, COALESCE(email, ''), created_at`

func scanCustomer(row interface{ Scan(...any) error }) (customers.Customer, error) {
	var c customers.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]customers.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY created_at DESC`, customerColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]customers.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, id string) (customers.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return customers.Customer{}, store.ErrNotFound
	}
	if err != nil {
		return customers.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// exec runs a patch UPDATE against table, mapping zero affected rows to
// ErrNotFound.
func (s *Store) exec(ctx context.Context, table, id string, set *setClause) error {
	if len(set.parts) == 0 {
		return store.ErrEmptyPatch
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, table, set.sql(), len(set.args)+1)
	res, err := s.db.ExecContext(ctx, query, append(set.args, id)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Store = (*Store)(nil)
