package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/store"
)

var (
	// ErrInvalidTransition is returned for a disallowed status change, e.g.
	// completing an appointment that is not Booked. Resolved locally; the
	// refused operation never reaches the store.
	ErrInvalidTransition = errors.New("lifecycle: invalid status transition")

	// ErrInvalidStatus is returned for a status value outside the enum.
	ErrInvalidStatus = errors.New("lifecycle: unknown status value")
)

// Invalidator is the mutate-then-invalidate contract: after a successful
// mutation the owning list controller re-queries the store rather than
// patching local state, so displayed state never diverges from the store's
// derived-field computation. Deliberate simplicity-over-latency tradeoff.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service enforces the status state machines and derived-field consistency
// for the board's mutations.
type Service struct {
	store store.Store
	log   *slog.Logger

	onCalls        Invalidator
	onContacts     Invalidator
	onAppointments Invalidator
}

// New builds the lifecycle service. Invalidators may be nil (no owning view).
func New(st store.Store, log *slog.Logger, onCalls, onContacts, onAppointments Invalidator) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:          st,
		log:            log,
		onCalls:        onCalls,
		onContacts:     onContacts,
		onAppointments: onAppointments,
	}
}

// SetCallFollowup moves a call to any follow-up status and recomputes the
// needs-followup flag. The status and the flag always travel in one patch so
// the two can never be persisted inconsistently.
func (s *Service) SetCallFollowup(ctx context.Context, callID string, status calls.FollowupStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	needs := calls.NeedsFollowup(status)
	patch := store.CallPatch{FollowupStatus: &status, NeedsFollowup: &needs}
	if err := s.store.UpdateCall(ctx, callID, patch); err != nil {
		return fmt.Errorf("set call followup: %w", err)
	}
	s.log.Info("call followup updated", "call_id", callID, "status", status, "needs_followup", needs)
	return s.invalidate(ctx, s.onCalls)
}

// SetContactStatus moves a contact to any engagement status.
func (s *Service) SetContactStatus(ctx context.Context, contactID string, status contacts.EngagementStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	patch := store.ContactPatch{Status: &status}
	if err := s.store.UpdateContact(ctx, contactID, patch); err != nil {
		return fmt.Errorf("set contact status: %w", err)
	}
	s.log.Info("contact status updated", "contact_id", contactID, "status", status)
	return s.invalidate(ctx, s.onContacts)
}

// UpdateContactNotes replaces a contact's free-text notes.
func (s *Service) UpdateContactNotes(ctx context.Context, contactID, notes string) error {
	patch := store.ContactPatch{Notes: &notes}
	if err := s.store.UpdateContact(ctx, contactID, patch); err != nil {
		return fmt.Errorf("update contact notes: %w", err)
	}
	return s.invalidate(ctx, s.onContacts)
}

// CompleteAppointment transitions a Booked appointment to Completed. Any
// other current status is refused with ErrInvalidTransition before the store
// is touched, and the status is left unchanged.
func (s *Service) CompleteAppointment(ctx context.Context, id string) error {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return fmt.Errorf("complete appointment: %w", err)
	}
	if !appointments.CanComplete(appt.Status) {
		s.log.Warn("appointment completion refused",
			"appointment_id", id, "status", appt.Status)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, appointments.StatusCompleted)
	}

	completed := appointments.StatusCompleted
	if err := s.store.UpdateAppointment(ctx, id, store.AppointmentPatch{Status: &completed}); err != nil {
		return fmt.Errorf("complete appointment: %w", err)
	}
	s.log.Info("appointment completed", "appointment_id", id)
	return s.invalidate(ctx, s.onAppointments)
}

func (s *Service) invalidate(ctx context.Context, inv Invalidator) error {
	if inv == nil {
		return nil
	}
	if err := inv.Invalidate(ctx); err != nil {
		// The mutation itself succeeded; the re-read is retryable.
		return fmt.Errorf("re-query after mutation: %w", err)
	}
	return nil
}
