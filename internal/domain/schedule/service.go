package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/opencare/clinic/pkg/clinicerr"
)

// Service is the validated mutation surface over the schedule catalog.
type Service struct {
	locations  LocationRepository
	shifts     ShiftRepository
	weekly     WeeklyRepository
	overtime   OvertimeRepository
	exceptions ExceptionRepository
	logger     zerolog.Logger
}

func NewService(
	locations LocationRepository,
	shifts ShiftRepository,
	weekly WeeklyRepository,
	overtime OvertimeRepository,
	exceptions ExceptionRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		locations:  locations,
		shifts:     shifts,
		weekly:     weekly,
		overtime:   overtime,
		exceptions: exceptions,
		logger:     logger,
	}
}

func mapNotFound(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return clinicerr.NotFound(resource, id.String())
	}
	return err
}

// ---- Locations ----

func (s *Service) CreateLocation(ctx context.Context, name, address string) (*Location, error) {
	if name == "" {
		return nil, clinicerr.InvalidRange("location name is required")
	}
	l := &Location{Name: name, Address: address}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return l, nil
}

func (s *Service) GetLocation(ctx context.Context, id uuid.UUID) (*Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "location", id)
	}
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, name, address string) (*Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "location", id)
	}
	l.Name = name
	l.Address = address
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return l, nil
}

func (s *Service) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.locations.GetByID(ctx, id); err != nil {
		return mapNotFound(err, "location", id)
	}
	return s.locations.Delete(ctx, id)
}

func (s *Service) ListLocations(ctx context.Context, limit, offset int) ([]*Location, int, error) {
	return s.locations.List(ctx, limit, offset)
}

// ---- Shifts ----

func validateInterval(start, end string) (int, int, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, 0, clinicerr.InvalidRange("%v", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, 0, clinicerr.InvalidRange("%v", err)
	}
	if endMin <= startMin {
		return 0, 0, clinicerr.InvalidRange("end %s must be after start %s", end, start)
	}
	return startMin, endMin, nil
}

func (s *Service) CreateShift(ctx context.Context, name, start, end string, locationID uuid.UUID) (*Shift, error) {
	if _, _, err := validateInterval(start, end); err != nil {
		return nil, err
	}
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		return nil, mapNotFound(err, "location", locationID)
	}
	sh := &Shift{Name: name, Start: start, End: end, LocationID: locationID}
	if err := s.shifts.Create(ctx, sh); err != nil {
		return nil, fmt.Errorf("create shift: %w", err)
	}
	return sh, nil
}

func (s *Service) GetShift(ctx context.Context, id uuid.UUID) (*Shift, error) {
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "shift", id)
	}
	return sh, nil
}

func (s *Service) UpdateShift(ctx context.Context, id uuid.UUID, name, start, end string, locationID uuid.UUID) (*Shift, error) {
	sh, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "shift", id)
	}
	if _, _, err := validateInterval(start, end); err != nil {
		return nil, err
	}
	sh.Name = name
	sh.Start = start
	sh.End = end
	sh.LocationID = locationID
	if err := s.shifts.Update(ctx, sh); err != nil {
		return nil, fmt.Errorf("update shift: %w", err)
	}
	return sh, nil
}

func (s *Service) DeleteShift(ctx context.Context, id uuid.UUID) error {
	if _, err := s.shifts.GetByID(ctx, id); err != nil {
		return mapNotFound(err, "shift", id)
	}
	return s.shifts.Delete(ctx, id)
}

func (s *Service) ListShifts(ctx context.Context, limit, offset int) ([]*Shift, int, error) {
	return s.shifts.List(ctx, limit, offset)
}

// ---- Weekly pattern ----

func validDayOfWeek(d int) bool { return d >= 0 && d <= 6 }

// UpsertWeeklyShift assigns a shift to a doctor's day of week. Assigning the
// same shift twice is a no-op; a shift whose interval intersects another shift
// already on that day fails with an overlap error.
func (s *Service) UpsertWeeklyShift(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, shiftID uuid.UUID) (*WeeklyShift, error) {
	if !validDayOfWeek(dayOfWeek) {
		return nil, clinicerr.InvalidRange("day_of_week %d out of range 0-6", dayOfWeek)
	}
	sh, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		return nil, mapNotFound(err, "shift", shiftID)
	}
	newStart, newEnd, err := validateInterval(sh.Start, sh.End)
	if err != nil {
		return nil, err
	}

	existing, err := s.weekly.ListByDoctorDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list day shifts: %w", err)
	}
	for _, ds := range existing {
		if ds.ShiftID == shiftID {
			// Already assigned. Idempotent.
			return &WeeklyShift{ID: ds.WeeklyShiftID, DoctorID: doctorID, DayOfWeek: dayOfWeek, ShiftID: shiftID}, nil
		}
		exStart, exEnd, err := validateInterval(ds.Start, ds.End)
		if err != nil {
			return nil, err
		}
		if overlaps(newStart, newEnd, exStart, exEnd) {
			return nil, clinicerr.Overlap("shift %s-%s overlaps existing shift %s-%s on day %d",
				sh.Start, sh.End, ds.Start, ds.End, dayOfWeek)
		}
	}

	ws := &WeeklyShift{DoctorID: doctorID, DayOfWeek: dayOfWeek, ShiftID: shiftID}
	if err := s.weekly.Upsert(ctx, ws); err != nil {
		return nil, fmt.Errorf("upsert weekly shift: %w", err)
	}
	return ws, nil
}

func (s *Service) RemoveWeeklyShift(ctx context.Context, id uuid.UUID) error {
	if _, err := s.weekly.GetByID(ctx, id); err != nil {
		return mapNotFound(err, "weekly_shift", id)
	}
	return s.weekly.Delete(ctx, id)
}

func (s *Service) WeeklyPattern(ctx context.Context, doctorID uuid.UUID) ([]*DayShift, error) {
	return s.weekly.ListByDoctor(ctx, doctorID)
}

// ---- Overtime ----

// OvertimeDayInput is the wholesale-replace payload for one overtime day.
// Pauses are managed through AddPausePeriod/RemovePausePeriod and survive a
// replace.
type OvertimeDayInput struct {
	Active     bool           `json:"active"`
	LocationID uuid.UUID      `json:"location_id"`
	Slots      []OvertimeSlot `json:"slots"`
}

func (s *Service) SetOvertimeDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, in OvertimeDayInput) (*OvertimeDay, error) {
	if !validDayOfWeek(dayOfWeek) {
		return nil, clinicerr.InvalidRange("day_of_week %d out of range 0-6", dayOfWeek)
	}
	type interval struct{ start, end int }
	intervals := make([]interval, 0, len(in.Slots))
	for _, slot := range in.Slots {
		start, end, err := validateInterval(slot.Start, slot.End)
		if err != nil {
			return nil, err
		}
		for _, prev := range intervals {
			if overlaps(start, end, prev.start, prev.end) {
				return nil, clinicerr.Overlap("overtime slot %s-%s overlaps another slot on day %d",
					slot.Start, slot.End, dayOfWeek)
			}
		}
		intervals = append(intervals, interval{start, end})
	}

	day := &OvertimeDay{
		DoctorID:   doctorID,
		DayOfWeek:  dayOfWeek,
		Active:     in.Active,
		LocationID: in.LocationID,
		Slots:      in.Slots,
		Pauses:     []PausePeriod{},
	}
	if existing, err := s.overtime.GetDay(ctx, doctorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("get overtime day: %w", err)
	} else if existing != nil {
		day.ID = existing.ID
		day.Pauses = existing.Pauses
	}
	if err := s.overtime.UpsertDay(ctx, day); err != nil {
		return nil, fmt.Errorf("upsert overtime day: %w", err)
	}
	return day, nil
}

func (s *Service) AddPausePeriod(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, from, to time.Time) (*OvertimeDay, error) {
	if CivilDate(to).Before(CivilDate(from)) {
		return nil, clinicerr.InvalidRange("pause end %s precedes start %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	day, err := s.overtime.GetDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("get overtime day: %w", err)
	}
	if day == nil {
		return nil, clinicerr.NotFound("overtime_day", fmt.Sprintf("%s/%d", doctorID, dayOfWeek))
	}
	day.Pauses = append(day.Pauses, PausePeriod{From: CivilDate(from), To: CivilDate(to)})
	if err := s.overtime.UpdatePauses(ctx, doctorID, dayOfWeek, day.Pauses); err != nil {
		return nil, fmt.Errorf("update pauses: %w", err)
	}
	return day, nil
}

func (s *Service) RemovePausePeriod(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, from, to time.Time) (*OvertimeDay, error) {
	day, err := s.overtime.GetDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("get overtime day: %w", err)
	}
	if day == nil {
		return nil, clinicerr.NotFound("overtime_day", fmt.Sprintf("%s/%d", doctorID, dayOfWeek))
	}
	kept := make([]PausePeriod, 0, len(day.Pauses))
	for _, p := range day.Pauses {
		if p.From.Equal(CivilDate(from)) && p.To.Equal(CivilDate(to)) {
			continue
		}
		kept = append(kept, p)
	}
	day.Pauses = kept
	if err := s.overtime.UpdatePauses(ctx, doctorID, dayOfWeek, day.Pauses); err != nil {
		return nil, fmt.Errorf("update pauses: %w", err)
	}
	return day, nil
}

func (s *Service) ToggleOvertimeDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (bool, error) {
	active, found, err := s.overtime.ToggleActive(ctx, doctorID, dayOfWeek)
	if err != nil {
		return false, fmt.Errorf("toggle overtime day: %w", err)
	}
	if !found {
		return false, clinicerr.NotFound("overtime_day", fmt.Sprintf("%s/%d", doctorID, dayOfWeek))
	}
	return active, nil
}

func (s *Service) ListOvertimeDays(ctx context.Context, doctorID uuid.UUID) ([]*OvertimeDay, error) {
	return s.overtime.ListByDoctor(ctx, doctorID)
}

// ---- Special exceptions ----

func (s *Service) AddSpecialException(ctx context.Context, doctorID uuid.UUID, start, end time.Time, typ, note string) (*SpecialException, error) {
	if !validExceptionTypes[typ] {
		return nil, clinicerr.InvalidRange("unknown exception type %q", typ)
	}
	if CivilDate(end).Before(CivilDate(start)) {
		return nil, clinicerr.InvalidRange("exception end %s precedes start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	e := &SpecialException{
		DoctorID:  doctorID,
		StartDate: CivilDate(start),
		EndDate:   CivilDate(end),
		Type:      typ,
		Note:      note,
	}
	if err := s.exceptions.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create exception: %w", err)
	}
	return e, nil
}

func (s *Service) RemoveSpecialException(ctx context.Context, id uuid.UUID) error {
	if _, err := s.exceptions.GetByID(ctx, id); err != nil {
		return mapNotFound(err, "special_exception", id)
	}
	return s.exceptions.Delete(ctx, id)
}

func (s *Service) ListExceptions(ctx context.Context, doctorID uuid.UUID) ([]*SpecialException, error) {
	return s.exceptions.ListByDoctor(ctx, doctorID)
}
