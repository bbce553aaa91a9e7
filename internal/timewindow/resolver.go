package timewindow

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned for a custom range that is missing a bound or
// ends before it starts (after day normalization).
var ErrInvalidRange = errors.New("timewindow: invalid range")

// Timeframe names a preset query window.
type Timeframe string

const (
	TimeframeToday     Timeframe = "today"
	TimeframeThisWeek  Timeframe = "week"
	TimeframeThisMonth Timeframe = "month"
	TimeframeCustom    Timeframe = "custom"
)

func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeToday, TimeframeThisWeek, TimeframeThisMonth, TimeframeCustom:
		return true
	default:
		return false
	}
}

// Date is a calendar date with no time component. Window boundaries are
// derived from dates in the business timezone, never from raw instants.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a date", ErrInvalidRange, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) IsZero() bool { return d == Date{} }

// Selector is a user-selected timeframe. Start/End are only consulted for
// TimeframeCustom.
type Selector struct {
	Timeframe Timeframe
	Start     Date
	End       Date
}

// Window is a resolved [Start, End] instant pair. End is the last
// representable instant of the final day, so a record timestamped exactly at
// midnight of the following day falls outside the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Resolver converts timeframe selections into absolute instant windows in a
// fixed business timezone. The zone is configuration, not the viewer's or the
// process's locale: staff in different places must see identical day
// boundaries.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver builds a resolver for the given business timezone.
// now is injectable for deterministic tests; nil means time.Now.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Location returns the business timezone the resolver was built with.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve computes the absolute window for a selector.
func (r *Resolver) Resolve(sel Selector) (Window, error) {
	today := r.now().In(r.loc)

	switch sel.Timeframe {
	case TimeframeToday:
		d := Date{today.Year(), today.Month(), today.Day()}
		return r.dayWindow(d, d), nil

	case TimeframeThisWeek:
		// Weeks start Monday.
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		sunday := monday.AddDate(0, 0, 6)
		return r.dayWindow(
			Date{monday.Year(), monday.Month(), monday.Day()},
			Date{sunday.Year(), sunday.Month(), sunday.Day()},
		), nil

	case TimeframeThisMonth:
		first := Date{today.Year(), today.Month(), 1}
		last := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, r.loc)
		return r.dayWindow(first, Date{last.Year(), last.Month(), last.Day()}), nil

	case TimeframeCustom:
		if sel.Start.IsZero() || sel.End.IsZero() {
			return Window{}, fmt.Errorf("%w: both bounds are required", ErrInvalidRange)
		}
		w := r.dayWindow(sel.Start, sel.End)
		if w.End.Before(w.Start) {
			return Window{}, fmt.Errorf("%w: end before start", ErrInvalidRange)
		}
		return w, nil

	default:
		return Window{}, fmt.Errorf("%w: unknown timeframe %q", ErrInvalidRange, sel.Timeframe)
	}
}

// dayWindow spans [start of a, end of b] in the business zone. End of day is
// the first instant of the next day minus one nanosecond, which keeps the
// window DST-safe on days that are not 24 hours long.
func (r *Resolver) dayWindow(a, b Date) Window {
	start := time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, r.loc)
	end := time.Date(b.Year, b.Month, b.Day+1, 0, 0, 0, 0, r.loc).Add(-time.Nanosecond)
	return Window{Start: start, End: end}
}
