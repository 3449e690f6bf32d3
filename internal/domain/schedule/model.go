// Package schedule owns the three sources of doctor availability (weekly
// shifts, overtime days, special exceptions) and resolves them into concrete
// bookable windows for a date.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location is a physical examination site.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shift is a named time-of-day interval at a location. Start and End are
// "HH:MM" clock strings.
type Shift struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	LocationID uuid.UUID `json:"location_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WeeklyShift assigns a shift to a doctor on a day of week (0 = Sunday).
type WeeklyShift struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	ShiftID   uuid.UUID `json:"shift_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DayShift is a weekly shift joined with its shift definition, the shape the
// resolver and the pattern listing work with.
type DayShift struct {
	WeeklyShiftID uuid.UUID `json:"weekly_shift_id"`
	DayOfWeek     int       `json:"day_of_week"`
	ShiftID       uuid.UUID `json:"shift_id"`
	Name          string    `json:"name"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	LocationID    uuid.UUID `json:"location_id"`
}

// OvertimeSlot is one bookable interval within an overtime day.
type OvertimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PausePeriod is a closed date range during which an overtime day's slots are
// suppressed.
type PausePeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether the civil date falls inside the period.
func (p PausePeriod) Contains(date time.Time) bool {
	d := CivilDate(date)
	return !d.Before(CivilDate(p.From)) && !d.After(CivilDate(p.To))
}

// OvertimeDay is a doctor's recurring overtime definition for one day of week.
// At most one row exists per (doctor, day of week).
type OvertimeDay struct {
	ID         uuid.UUID      `json:"id"`
	DoctorID   uuid.UUID      `json:"doctor_id"`
	DayOfWeek  int            `json:"day_of_week"`
	Active     bool           `json:"active"`
	LocationID uuid.UUID      `json:"location_id"`
	Slots      []OvertimeSlot `json:"slots"`
	Pauses     []PausePeriod  `json:"pauses"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PausedOn reports whether any pause period covers the date.
func (d *OvertimeDay) PausedOn(date time.Time) bool {
	for _, p := range d.Pauses {
		if p.Contains(date) {
			return true
		}
	}
	return false
}

// Special exception types.
const (
	ExceptionLeave   = "leave"
	ExceptionMeeting = "meeting"
	ExceptionTravel  = "business-travel"
	ExceptionOther   = "other"
)

var validExceptionTypes = map[string]bool{
	ExceptionLeave:   true,
	ExceptionMeeting: true,
	ExceptionTravel:  true,
	ExceptionOther:   true,
}

// SpecialException is a date-scoped override that fully suppresses a doctor's
// availability. It takes precedence over both weekly and overtime sources.
type SpecialException struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Type      string    `json:"type"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether the exception's date range includes the civil date.
func (e *SpecialException) Covers(date time.Time) bool {
	d := CivilDate(date)
	return !d.Before(CivilDate(e.StartDate)) && !d.After(CivilDate(e.EndDate))
}

// Window kinds.
const (
	KindRegular  = "regular"
	KindOvertime = "overtime"
)

// Window is one concrete bookable interval for a doctor on a date.
type Window struct {
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Kind       string    `json:"kind"`
	LocationID uuid.UUID `json:"location_id"`
}

// Session returns the window's session key, the string stored on appointments
// and used to scope queue counters.
func (w Window) Session() string { return w.Start + "-" + w.End }

// Availability is the resolver's answer for one (doctor, date). When Blocked
// is set the doctor is fully unavailable that date and Windows is empty.
type Availability struct {
	Windows []Window          `json:"windows"`
	Blocked *SpecialException `json:"blocked,omitempty"`
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// CivilDate truncates a timestamp to its calendar day in UTC.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// overlaps reports whether two half-open [start, end) minute intervals
// intersect. Touching endpoints do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
