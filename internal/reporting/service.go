package reporting

import (
	"context"
	"errors"

	"callboard/internal/appointments"
	"callboard/internal/contacts"
	"callboard/internal/store"
	"callboard/internal/timewindow"
)

// Service computes the board's stat cards from the record store. Counts are
// derived from the same queries the list views run, so the cards and the
// lists can never disagree on what falls inside the window.
type Service struct {
	store    store.Store
	resolver *timewindow.Resolver
}

func NewService(st store.Store, resolver *timewindow.Resolver) *Service {
	return &Service{store: st, resolver: resolver}
}

// Summarize aggregates all three record types over the selector's window.
func (s *Service) Summarize(ctx context.Context, sel timewindow.Selector) (Summary, error) {
	if s.store == nil {
		return Summary{}, errors.New("reporting: store not configured")
	}

	w, err := s.resolver.Resolve(sel)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{Window: w}

	callRows, err := s.store.ListCalls(ctx, store.CallQuery{Window: &w})
	if err != nil {
		return Summary{}, err
	}
	for _, c := range callRows {
		out.Calls.Total++
		out.Calls.TotalDurationSeconds += c.DurationSeconds
		if c.NeedsFollowup {
			out.Calls.NeedsFollowup++
		}
	}
	if out.Calls.Total > 0 {
		out.Calls.AverageDurationSeconds = out.Calls.TotalDurationSeconds / out.Calls.Total
	}

	contactRows, err := s.store.ListContacts(ctx, store.ContactQuery{Window: &w})
	if err != nil {
		return Summary{}, err
	}
	for _, c := range contactRows {
		out.Contacts.Total++
		switch c.Status {
		case contacts.StatusNeedsAttention:
			out.Contacts.NeedsAttention++
		case contacts.StatusBooked:
			out.Contacts.Booked++
		}
	}

	apptRows, err := s.store.ListAppointments(ctx, store.AppointmentQuery{Window: &w})
	if err != nil {
		return Summary{}, err
	}
	for _, a := range apptRows {
		out.Appointments.Total++
		switch a.Status {
		case appointments.StatusBooked:
			out.Appointments.Booked++
		case appointments.StatusCompleted:
			out.Appointments.Completed++
		case appointments.StatusCancelled:
			out.Appointments.Cancelled++
		}
	}

	return out, nil
}
