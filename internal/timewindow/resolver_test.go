package timewindow

import (
	"errors"
	"testing"
	"time"
)

func businessZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func fixedNow(loc *time.Location, y int, m time.Month, d, hh int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, hh, 30, 0, 0, loc) }
}

func TestResolve_TodayBounds(t *testing.T) {
	loc := businessZone(t)
	r := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 14))

	w, err := r.Resolve(Selector{Timeframe: TimeframeToday})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	wantStart := time.Date(2024, time.June, 15, 0, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}

	inside := []time.Time{
		time.Date(2024, time.June, 15, 0, 0, 0, 0, loc),
		time.Date(2024, time.June, 15, 23, 59, 59, 0, loc),
	}
	for _, ts := range inside {
		if !w.Contains(ts) {
			t.Fatalf("expected %v inside window", ts)
		}
	}
	nextMidnight := time.Date(2024, time.June, 16, 0, 0, 0, 0, loc)
	if w.Contains(nextMidnight) {
		t.Fatalf("midnight of next day must be excluded")
	}
}

func TestResolve_TodayIsStableWithinDay(t *testing.T) {
	loc := businessZone(t)
	morning := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 8))
	evening := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 22))

	a, _ := morning.Resolve(Selector{Timeframe: TimeframeToday})
	b, _ := evening.Resolve(Selector{Timeframe: TimeframeToday})
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		t.Fatalf("same calendar day must yield identical bounds: %v vs %v", a, b)
	}
}

func TestResolve_ThisWeekStartsMonday(t *testing.T) {
	loc := businessZone(t)
	cases := []struct {
		name string
		day  int // June 2024: 10th is Monday, 16th is Sunday
	}{
		{"monday", 10},
		{"wednesday", 12},
		{"sunday", 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(loc, fixedNow(loc, 2024, time.June, tc.day, 12))
			w, err := r.Resolve(Selector{Timeframe: TimeframeThisWeek})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			wantStart := time.Date(2024, time.June, 10, 0, 0, 0, 0, loc)
			if !w.Start.Equal(wantStart) {
				t.Fatalf("start = %v, want Monday %v", w.Start, wantStart)
			}
			if w.Contains(time.Date(2024, time.June, 17, 0, 0, 0, 0, loc)) {
				t.Fatalf("next Monday midnight must be excluded")
			}
			if !w.Contains(time.Date(2024, time.June, 16, 23, 0, 0, 0, loc)) {
				t.Fatalf("Sunday evening must be included")
			}
		})
	}
}

func TestResolve_ThisMonthSpansWholeMonth(t *testing.T) {
	loc := businessZone(t)
	r := NewResolver(loc, fixedNow(loc, 2024, time.February, 10, 9))

	w, err := r.Resolve(Selector{Timeframe: TimeframeThisMonth})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !w.Start.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("start = %v, want first of month", w.Start)
	}
	// 2024 is a leap year.
	if !w.Contains(time.Date(2024, time.February, 29, 12, 0, 0, 0, loc)) {
		t.Fatalf("Feb 29 must be inside the window")
	}
	if w.Contains(time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("March 1 midnight must be excluded")
	}
}

func TestResolve_EndNeverBeforeStart(t *testing.T) {
	loc := businessZone(t)
	r := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 12))

	for _, tf := range []Timeframe{TimeframeToday, TimeframeThisWeek, TimeframeThisMonth} {
		w, err := r.Resolve(Selector{Timeframe: tf})
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tf, err)
		}
		if w.End.Before(w.Start) {
			t.Fatalf("%s: end %v before start %v", tf, w.End, w.Start)
		}
	}
}

func TestResolve_Custom(t *testing.T) {
	loc := businessZone(t)
	r := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 12))

	cases := []struct {
		name    string
		sel     Selector
		wantErr bool
	}{
		{
			name: "valid range",
			sel: Selector{
				Timeframe: TimeframeCustom,
				Start:     Date{2024, time.June, 1},
				End:       Date{2024, time.June, 10},
			},
		},
		{
			name: "single day is valid",
			sel: Selector{
				Timeframe: TimeframeCustom,
				Start:     Date{2024, time.June, 5},
				End:       Date{2024, time.June, 5},
			},
		},
		{
			name: "inverted range",
			sel: Selector{
				Timeframe: TimeframeCustom,
				Start:     Date{2024, time.June, 10},
				End:       Date{2024, time.June, 1},
			},
			wantErr: true,
		},
		{
			name:    "missing start",
			sel:     Selector{Timeframe: TimeframeCustom, End: Date{2024, time.June, 1}},
			wantErr: true,
		},
		{
			name:    "missing end",
			sel:     Selector{Timeframe: TimeframeCustom, Start: Date{2024, time.June, 1}},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := r.Resolve(tc.sel)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if w.End.Before(w.Start) {
				t.Fatalf("end %v before start %v", w.End, w.Start)
			}
		})
	}
}

func TestResolve_CustomSingleDayCoversWholeDay(t *testing.T) {
	loc := businessZone(t)
	r := NewResolver(loc, fixedNow(loc, 2024, time.June, 15, 12))

	w, err := r.Resolve(Selector{
		Timeframe: TimeframeCustom,
		Start:     Date{2024, time.June, 5},
		End:       Date{2024, time.June, 5},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !w.Contains(time.Date(2024, time.June, 5, 23, 59, 59, 0, loc)) {
		t.Fatalf("end of selected day must be inside")
	}
	if w.Contains(time.Date(2024, time.June, 6, 0, 0, 0, 0, loc)) {
		t.Fatalf("next midnight must be excluded")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d != (Date{2024, time.June, 15}) {
		t.Fatalf("unexpected date: %+v", d)
	}
	if _, err := ParseDate("June 15"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
