package postgres

import (
	"testing"
	"time"

	"callboard/internal/timewindow"
)

func TestBuildWhere_WindowAndEquality(t *testing.T) {
	w := timewindow.Window{
		Start: time.Unix(100, 0),
		End:   time.Unix(200, 0),
	}
	clause, args := buildWhere(condSet{
		timeField:  "call_time",
		window:     &w,
		equalField: "contact_id",
		equalValue: "ct1",
	})
	want := " WHERE call_time >= $1 AND call_time <= $2 AND contact_id = $3"
	if clause != want {
		t.Fatalf("clause = %q, want %q", clause, want)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

func TestBuildWhere_NoConditions(t *testing.T) {
	clause, args := buildWhere(condSet{timeField: "created_at", equalField: "status"})
	if clause != "" || args != nil {
		t.Fatalf("expected empty clause, got %q / %v", clause, args)
	}
}

func TestSetClause_Accumulates(t *testing.T) {
	s := newSetClause()
	s.add("followup_status", "Booked")
	s.add("needs_followup", false)
	if got := s.sql(); got != "followup_status = $1, needs_followup = $2" {
		t.Fatalf("unexpected sql: %q", got)
	}
	if len(s.args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(s.args))
	}
}
