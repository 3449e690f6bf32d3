package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockLocationRepo struct {
	items map[uuid.UUID]*Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{items: make(map[uuid.UUID]*Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, l *Location) error {
	l.ID = uuid.New()
	m.items[l.ID] = l
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*Location, error) {
	l, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return l, nil
}

func (m *mockLocationRepo) Update(_ context.Context, l *Location) error {
	m.items[l.ID] = l
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockLocationRepo) List(_ context.Context, limit, offset int) ([]*Location, int, error) {
	var items []*Location
	for _, l := range m.items {
		items = append(items, l)
	}
	return items, len(items), nil
}

type mockShiftRepo struct {
	items map[uuid.UUID]*Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{items: make(map[uuid.UUID]*Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, s *Shift) error {
	s.ID = uuid.New()
	m.items[s.ID] = s
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id uuid.UUID) (*Shift, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockShiftRepo) Update(_ context.Context, s *Shift) error {
	m.items[s.ID] = s
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockShiftRepo) List(_ context.Context, limit, offset int) ([]*Shift, int, error) {
	var items []*Shift
	for _, s := range m.items {
		items = append(items, s)
	}
	return items, len(items), nil
}

type mockWeeklyRepo struct {
	items  map[uuid.UUID]*WeeklyShift
	shifts *mockShiftRepo
}

func newMockWeeklyRepo(shifts *mockShiftRepo) *mockWeeklyRepo {
	return &mockWeeklyRepo{items: make(map[uuid.UUID]*WeeklyShift), shifts: shifts}
}

func (m *mockWeeklyRepo) Upsert(_ context.Context, ws *WeeklyShift) error {
	for _, existing := range m.items {
		if existing.DoctorID == ws.DoctorID && existing.DayOfWeek == ws.DayOfWeek && existing.ShiftID == ws.ShiftID {
			ws.ID = existing.ID
			return nil
		}
	}
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	m.items[ws.ID] = ws
	return nil
}

func (m *mockWeeklyRepo) GetByID(_ context.Context, id uuid.UUID) (*WeeklyShift, error) {
	ws, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ws, nil
}

func (m *mockWeeklyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockWeeklyRepo) dayShift(ws *WeeklyShift) *DayShift {
	sh := m.shifts.items[ws.ShiftID]
	return &DayShift{
		WeeklyShiftID: ws.ID,
		DayOfWeek:     ws.DayOfWeek,
		ShiftID:       sh.ID,
		Name:          sh.Name,
		Start:         sh.Start,
		End:           sh.End,
		LocationID:    sh.LocationID,
	}
}

func (m *mockWeeklyRepo) ListByDoctorDay(_ context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*DayShift, error) {
	var items []*DayShift
	for _, ws := range m.items {
		if ws.DoctorID == doctorID && ws.DayOfWeek == dayOfWeek {
			items = append(items, m.dayShift(ws))
		}
	}
	return items, nil
}

func (m *mockWeeklyRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*DayShift, error) {
	var items []*DayShift
	for _, ws := range m.items {
		if ws.DoctorID == doctorID {
			items = append(items, m.dayShift(ws))
		}
	}
	return items, nil
}

type overtimeKey struct {
	doctor uuid.UUID
	day    int
}

type mockOvertimeRepo struct {
	items map[overtimeKey]*OvertimeDay
}

func newMockOvertimeRepo() *mockOvertimeRepo {
	return &mockOvertimeRepo{items: make(map[overtimeKey]*OvertimeDay)}
}

func (m *mockOvertimeRepo) GetDay(_ context.Context, doctorID uuid.UUID, dayOfWeek int) (*OvertimeDay, error) {
	return m.items[overtimeKey{doctorID, dayOfWeek}], nil
}

func (m *mockOvertimeRepo) UpsertDay(_ context.Context, d *OvertimeDay) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.items[overtimeKey{d.DoctorID, d.DayOfWeek}] = d
	return nil
}

func (m *mockOvertimeRepo) UpdatePauses(_ context.Context, doctorID uuid.UUID, dayOfWeek int, pauses []PausePeriod) error {
	d, ok := m.items[overtimeKey{doctorID, dayOfWeek}]
	if !ok {
		return pgx.ErrNoRows
	}
	d.Pauses = pauses
	return nil
}

func (m *mockOvertimeRepo) ToggleActive(_ context.Context, doctorID uuid.UUID, dayOfWeek int) (bool, bool, error) {
	d, ok := m.items[overtimeKey{doctorID, dayOfWeek}]
	if !ok {
		return false, false, nil
	}
	d.Active = !d.Active
	return d.Active, true, nil
}

func (m *mockOvertimeRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*OvertimeDay, error) {
	var items []*OvertimeDay
	for _, d := range m.items {
		if d.DoctorID == doctorID {
			items = append(items, d)
		}
	}
	return items, nil
}

type mockExceptionRepo struct {
	items map[uuid.UUID]*SpecialException
}

func newMockExceptionRepo() *mockExceptionRepo {
	return &mockExceptionRepo{items: make(map[uuid.UUID]*SpecialException)}
}

func (m *mockExceptionRepo) Create(_ context.Context, e *SpecialException) error {
	e.ID = uuid.New()
	m.items[e.ID] = e
	return nil
}

func (m *mockExceptionRepo) GetByID(_ context.Context, id uuid.UUID) (*SpecialException, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

func (m *mockExceptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockExceptionRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*SpecialException, error) {
	var items []*SpecialException
	for _, e := range m.items {
		if e.DoctorID == doctorID {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockExceptionRepo) FindCovering(_ context.Context, doctorID uuid.UUID, date time.Time) (*SpecialException, error) {
	for _, e := range m.items {
		if e.DoctorID == doctorID && e.Covers(date) {
			return e, nil
		}
	}
	return nil, nil
}

// mockBookedLookup returns a fixed live-session set.
type mockBookedLookup struct {
	live map[string]bool
}

func (m *mockBookedLookup) LiveSessions(_ context.Context, _ uuid.UUID, _ time.Time) (map[string]bool, error) {
	if m.live == nil {
		return map[string]bool{}, nil
	}
	return m.live, nil
}
