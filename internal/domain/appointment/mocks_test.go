package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opencare/clinic/internal/domain/schedule"
)

type mockRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	copied := *a
	m.items[a.ID] = &copied
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *a
	m.items[a.ID] = &copied
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *mockRepo) ListByDoctorDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Appointment
	for _, a := range m.items {
		if a.DoctorID == doctorID && a.Date.Equal(date) {
			copied := *a
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Appointment
	for _, a := range m.items {
		if a.DoctorID == doctorID {
			copied := *a
			items = append(items, &copied)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Appointment
	for _, a := range m.items {
		if a.PatientID == patientID {
			copied := *a
			items = append(items, &copied)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) LiveSessions(_ context.Context, doctorID uuid.UUID, date time.Time) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := make(map[string]bool)
	for _, a := range m.items {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Live() {
			live[a.Session] = true
		}
	}
	return live, nil
}

type mockCounter struct {
	mu     sync.Mutex
	values map[string]int
}

func newMockCounter() *mockCounter {
	return &mockCounter{values: make(map[string]int)}
}

func (m *mockCounter) Next(_ context.Context, doctorID uuid.UUID, date time.Time, session string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s/%s", doctorID, date.Format("2006-01-02"), session)
	m.values[key]++
	return m.values[key], nil
}

// stubAvailability returns a fixed resolver answer.
type stubAvailability struct {
	avail *schedule.Availability
	err   error
}

func (s *stubAvailability) Availability(_ context.Context, _ uuid.UUID, _ time.Time) (*schedule.Availability, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.avail == nil {
		return &schedule.Availability{Windows: []schedule.Window{}}, nil
	}
	return s.avail, nil
}
