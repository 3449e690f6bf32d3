package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opencare/clinic/pkg/clinicerr"
)

type fixture struct {
	svc        *Service
	locations  *mockLocationRepo
	shifts     *mockShiftRepo
	weekly     *mockWeeklyRepo
	overtime   *mockOvertimeRepo
	exceptions *mockExceptionRepo
}

func newFixture() *fixture {
	locations := newMockLocationRepo()
	shifts := newMockShiftRepo()
	weekly := newMockWeeklyRepo(shifts)
	overtime := newMockOvertimeRepo()
	exceptions := newMockExceptionRepo()
	return &fixture{
		svc:        NewService(locations, shifts, weekly, overtime, exceptions, zerolog.Nop()),
		locations:  locations,
		shifts:     shifts,
		weekly:     weekly,
		overtime:   overtime,
		exceptions: exceptions,
	}
}

func (f *fixture) location(t *testing.T) *Location {
	t.Helper()
	l, err := f.svc.CreateLocation(context.Background(), "Main Clinic", "12 High St")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return l
}

func (f *fixture) shift(t *testing.T, name, start, end string, locationID uuid.UUID) *Shift {
	t.Helper()
	sh, err := f.svc.CreateShift(context.Background(), name, start, end, locationID)
	if err != nil {
		t.Fatalf("CreateShift(%s %s-%s): %v", name, start, end, err)
	}
	return sh
}

func TestCreateShiftValidatesInterval(t *testing.T) {
	f := newFixture()
	loc := f.location(t)

	cases := []struct {
		name       string
		start, end string
	}{
		{"bad clock", "8am", "12:00"},
		{"end before start", "12:00", "08:00"},
		{"zero length", "08:00", "08:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateShift(context.Background(), "Morning", tc.start, tc.end, loc.ID)
			if !clinicerr.IsKind(err, clinicerr.KindInvalidRange) {
				t.Errorf("CreateShift(%s, %s) error = %v, want invalid_range", tc.start, tc.end, err)
			}
		})
	}
}

func TestUpsertWeeklyShiftRejectsOverlap(t *testing.T) {
	f := newFixture()
	loc := f.location(t)
	morning := f.shift(t, "Morning", "08:00", "12:00", loc.ID)
	overlapping := f.shift(t, "Late morning", "11:00", "14:00", loc.ID)
	afternoon := f.shift(t, "Afternoon", "13:00", "17:00", loc.ID)
	doctor := uuid.New()

	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 1, morning.ID); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 1, overlapping.ID); !clinicerr.IsKind(err, clinicerr.KindOverlap) {
		t.Errorf("overlapping upsert error = %v, want overlap", err)
	}
	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 1, afternoon.ID); err != nil {
		t.Errorf("non-overlapping upsert: %v", err)
	}
	// Same shift on a different day is fine.
	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 2, overlapping.ID); err != nil {
		t.Errorf("other-day upsert: %v", err)
	}
}

func TestUpsertWeeklyShiftIdempotent(t *testing.T) {
	f := newFixture()
	loc := f.location(t)
	morning := f.shift(t, "Morning", "08:00", "12:00", loc.ID)
	doctor := uuid.New()

	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 3, morning.ID); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := f.svc.UpsertWeeklyShift(context.Background(), doctor, 3, morning.ID); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}
	pattern, err := f.svc.WeeklyPattern(context.Background(), doctor)
	if err != nil {
		t.Fatalf("WeeklyPattern: %v", err)
	}
	if len(pattern) != 1 {
		t.Errorf("pattern has %d entries, want 1", len(pattern))
	}
}

func TestSetOvertimeDayRejectsSlotOverlap(t *testing.T) {
	f := newFixture()
	loc := f.location(t)
	doctor := uuid.New()

	_, err := f.svc.SetOvertimeDay(context.Background(), doctor, 1, OvertimeDayInput{
		Active:     true,
		LocationID: loc.ID,
		Slots: []OvertimeSlot{
			{Start: "18:00", End: "20:00"},
			{Start: "19:30", End: "21:00"},
		},
	})
	if !clinicerr.IsKind(err, clinicerr.KindOverlap) {
		t.Errorf("overlapping slots error = %v, want overlap", err)
	}
}

func TestSetOvertimeDayPreservesPauses(t *testing.T) {
	f := newFixture()
	loc := f.location(t)
	doctor := uuid.New()
	ctx := context.Background()

	if _, err := f.svc.SetOvertimeDay(ctx, doctor, 1, OvertimeDayInput{
		Active:     true,
		LocationID: loc.ID,
		Slots:      []OvertimeSlot{{Start: "18:00", End: "20:00"}},
	}); err != nil {
		t.Fatalf("SetOvertimeDay: %v", err)
	}

	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if _, err := f.svc.AddPausePeriod(ctx, doctor, 1, from, to); err != nil {
		t.Fatalf("AddPausePeriod: %v", err)
	}

	// Wholesale replace of the slots keeps the pause.
	day, err := f.svc.SetOvertimeDay(ctx, doctor, 1, OvertimeDayInput{
		Active:     true,
		LocationID: loc.ID,
		Slots:      []OvertimeSlot{{Start: "17:00", End: "19:00"}},
	})
	if err != nil {
		t.Fatalf("SetOvertimeDay replace: %v", err)
	}
	if len(day.Pauses) != 1 {
		t.Errorf("pauses after replace = %d, want 1", len(day.Pauses))
	}

	if _, err := f.svc.RemovePausePeriod(ctx, doctor, 1, from, to); err != nil {
		t.Fatalf("RemovePausePeriod: %v", err)
	}
	got, err := f.overtime.GetDay(ctx, doctor, 1)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if len(got.Pauses) != 0 {
		t.Errorf("pauses after remove = %d, want 0", len(got.Pauses))
	}
}

func TestAddPausePeriodRejectsInvertedRange(t *testing.T) {
	f := newFixture()
	doctor := uuid.New()
	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.AddPausePeriod(context.Background(), doctor, 1, from, to)
	if !clinicerr.IsKind(err, clinicerr.KindInvalidRange) {
		t.Errorf("inverted pause error = %v, want invalid_range", err)
	}
}

func TestToggleOvertimeDay(t *testing.T) {
	f := newFixture()
	loc := f.location(t)
	doctor := uuid.New()
	ctx := context.Background()

	if _, err := f.svc.ToggleOvertimeDay(ctx, doctor, 2); !clinicerr.IsKind(err, clinicerr.KindNotFound) {
		t.Errorf("toggle of missing day error = %v, want not_found", err)
	}

	if _, err := f.svc.SetOvertimeDay(ctx, doctor, 2, OvertimeDayInput{
		Active:     true,
		LocationID: loc.ID,
		Slots:      []OvertimeSlot{{Start: "18:00", End: "20:00"}},
	}); err != nil {
		t.Fatalf("SetOvertimeDay: %v", err)
	}

	active, err := f.svc.ToggleOvertimeDay(ctx, doctor, 2)
	if err != nil {
		t.Fatalf("ToggleOvertimeDay: %v", err)
	}
	if active {
		t.Error("first toggle should deactivate")
	}
	day, err := f.overtime.GetDay(ctx, doctor, 2)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if len(day.Slots) != 1 {
		t.Errorf("toggle must not touch slots, got %d", len(day.Slots))
	}
}

func TestAddSpecialExceptionValidation(t *testing.T) {
	f := newFixture()
	doctor := uuid.New()
	ctx := context.Background()
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.AddSpecialException(ctx, doctor, start, start.AddDate(0, 0, -1), ExceptionLeave, ""); !clinicerr.IsKind(err, clinicerr.KindInvalidRange) {
		t.Errorf("inverted range error = %v, want invalid_range", err)
	}
	if _, err := f.svc.AddSpecialException(ctx, doctor, start, start, "vacation", ""); !clinicerr.IsKind(err, clinicerr.KindInvalidRange) {
		t.Errorf("unknown type error = %v, want invalid_range", err)
	}

	e, err := f.svc.AddSpecialException(ctx, doctor, start, start.AddDate(0, 0, 2), ExceptionTravel, "conference")
	if err != nil {
		t.Fatalf("AddSpecialException: %v", err)
	}
	if !e.Covers(start.AddDate(0, 0, 1)) {
		t.Error("exception should cover a date inside its range")
	}
	if e.Covers(start.AddDate(0, 0, 3)) {
		t.Error("exception should not cover a date after its range")
	}

	if err := f.svc.RemoveSpecialException(ctx, e.ID); err != nil {
		t.Fatalf("RemoveSpecialException: %v", err)
	}
	if err := f.svc.RemoveSpecialException(ctx, e.ID); !clinicerr.IsKind(err, clinicerr.KindNotFound) {
		t.Errorf("double remove error = %v, want not_found", err)
	}
}

func TestGetLocationNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetLocation(context.Background(), uuid.New())
	if !clinicerr.IsKind(err, clinicerr.KindNotFound) {
		t.Errorf("GetLocation error = %v, want not_found", err)
	}
}
