package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BookedLookup answers which sessions already carry a live booking for a
// doctor on a date. A booking is live unless its confirmation was rejected or
// its clinical status is cancelled. Implemented by the appointment domain.
type BookedLookup interface {
	LiveSessions(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[string]bool, error)
}

// Resolver merges the three schedule sources into bookable windows for a
// date. Exceptions win outright; weekly and overtime union; windows with a
// live booking are withheld from new-booking offers.
type Resolver struct {
	weekly     WeeklyRepository
	overtime   OvertimeRepository
	exceptions ExceptionRepository
	booked     BookedLookup
	now        func() time.Time
}

func NewResolver(weekly WeeklyRepository, overtime OvertimeRepository, exceptions ExceptionRepository, booked BookedLookup) *Resolver {
	return &Resolver{
		weekly:     weekly,
		overtime:   overtime,
		exceptions: exceptions,
		booked:     booked,
		now:        time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Availability answers what can be booked for the doctor on the date. An
// unknown doctor or a day with no pattern resolves to an empty set, not an
// error. Past dates resolve empty.
func (r *Resolver) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) (*Availability, error) {
	day := CivilDate(date)

	exc, err := r.exceptions.FindCovering(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("find covering exception: %w", err)
	}
	if exc != nil {
		return &Availability{Windows: []Window{}, Blocked: exc}, nil
	}

	if day.Before(CivilDate(r.now())) {
		return &Availability{Windows: []Window{}}, nil
	}

	windows, err := r.candidateWindows(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	live, err := r.booked.LiveSessions(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("live sessions: %w", err)
	}
	open := make([]Window, 0, len(windows))
	for _, w := range windows {
		if live[w.Session()] {
			continue
		}
		open = append(open, w)
	}
	return &Availability{Windows: open}, nil
}

// candidateWindows collects regular then overtime windows for the date's day
// of week, each kind ordered by start time.
func (r *Resolver) candidateWindows(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]Window, error) {
	dayOfWeek := int(day.Weekday())

	shifts, err := r.weekly.ListByDoctorDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list weekly shifts: %w", err)
	}
	var windows []Window
	for _, ds := range shifts {
		windows = append(windows, Window{Start: ds.Start, End: ds.End, Kind: KindRegular, LocationID: ds.LocationID})
	}
	sortWindows(windows)

	ot, err := r.overtime.GetDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("get overtime day: %w", err)
	}
	if ot != nil && ot.Active && !ot.PausedOn(day) {
		overtimeWindows := make([]Window, 0, len(ot.Slots))
		for _, slot := range ot.Slots {
			overtimeWindows = append(overtimeWindows, Window{Start: slot.Start, End: slot.End, Kind: KindOvertime, LocationID: ot.LocationID})
		}
		sortWindows(overtimeWindows)
		windows = append(windows, overtimeWindows...)
	}
	return windows, nil
}

func sortWindows(ws []Window) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, errA := ParseClock(ws[i].Start)
		b, errB := ParseClock(ws[j].Start)
		if errA != nil || errB != nil {
			return ws[i].Start < ws[j].Start
		}
		return a < b
	})
}
