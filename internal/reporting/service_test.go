package reporting

import (
	"context"
	"testing"
	"time"

	"callboard/internal/appointments"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/store"
	"callboard/internal/timewindow"
)

func fixedResolver(t *testing.T) (*timewindow.Resolver, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, loc)
	return timewindow.NewResolver(loc, func() time.Time { return now }), loc
}

func TestSummarize_CountsInsideWindowOnly(t *testing.T) {
	resolver, loc := fixedResolver(t)
	today := func(h int) time.Time { return time.Date(2024, time.June, 15, h, 0, 0, 0, loc) }

	mem := store.NewMemory()
	mem.Calls = []calls.Call{
		{ID: "c1", CallTime: today(9), DurationSeconds: 60, NeedsFollowup: true},
		{ID: "c2", CallTime: today(10), DurationSeconds: 120},
		{ID: "c3", CallTime: time.Date(2024, time.June, 14, 9, 0, 0, 0, loc), DurationSeconds: 999, NeedsFollowup: true},
	}
	mem.Contacts = []contacts.Contact{
		{ID: "ct1", Status: contacts.StatusNeedsAttention, CreatedAt: today(9)},
		{ID: "ct2", Status: contacts.StatusBooked, CreatedAt: today(9)},
		{ID: "ct3", Status: contacts.StatusContacted, CreatedAt: today(9)},
	}
	mem.Appointments = []appointments.Appointment{
		{ID: "a1", Status: appointments.StatusBooked, AppointmentTime: today(14)},
		{ID: "a2", Status: appointments.StatusCompleted, AppointmentTime: today(15)},
		{ID: "a3", Status: appointments.StatusCancelled, AppointmentTime: today(16)},
	}

	svc := NewService(mem, resolver)
	got, err := svc.Summarize(context.Background(), timewindow.Selector{Timeframe: timewindow.TimeframeToday})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got.Calls.Total != 2 || got.Calls.NeedsFollowup != 1 {
		t.Fatalf("call counts: %+v", got.Calls)
	}
	if got.Calls.TotalDurationSeconds != 180 || got.Calls.AverageDurationSeconds != 90 {
		t.Fatalf("durations: %+v", got.Calls)
	}
	if got.Contacts.Total != 3 || got.Contacts.NeedsAttention != 1 || got.Contacts.Booked != 1 {
		t.Fatalf("contact counts: %+v", got.Contacts)
	}
	if got.Appointments.Booked != 1 || got.Appointments.Completed != 1 || got.Appointments.Cancelled != 1 {
		t.Fatalf("appointment counts: %+v", got.Appointments)
	}
}

func TestSummarize_EmptyWindow(t *testing.T) {
	resolver, _ := fixedResolver(t)
	svc := NewService(store.NewMemory(), resolver)

	got, err := svc.Summarize(context.Background(), timewindow.Selector{Timeframe: timewindow.TimeframeToday})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Calls.Total != 0 || got.Calls.AverageDurationSeconds != 0 {
		t.Fatalf("expected zeroed stats, got %+v", got.Calls)
	}
}

func TestSummarize_InvalidCustomRange(t *testing.T) {
	resolver, _ := fixedResolver(t)
	svc := NewService(store.NewMemory(), resolver)

	_, err := svc.Summarize(context.Background(), timewindow.Selector{
		Timeframe: timewindow.TimeframeCustom,
		Start:     timewindow.Date{Year: 2024, Month: time.June, Day: 10},
	})
	if err == nil {
		t.Fatalf("expected error for missing end bound")
	}
}

func TestSummarize_StoreFailure(t *testing.T) {
	resolver, _ := fixedResolver(t)
	mem := store.NewMemory()
	mem.FailWith = context.DeadlineExceeded
	svc := NewService(mem, resolver)

	if _, err := svc.Summarize(context.Background(), timewindow.Selector{Timeframe: timewindow.TimeframeToday}); err == nil {
		t.Fatalf("expected store failure to surface")
	}
}
