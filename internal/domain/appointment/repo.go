package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// LiveSessions returns the session keys on (doctor, date) that carry at
	// least one live appointment. Satisfies schedule.BookedLookup.
	LiveSessions(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[string]bool, error)
}

// CounterRepository hands out queue numbers. Next must be atomic across
// concurrent callers for the same key; numbers start at 1 and are never
// recycled, cancellation included.
type CounterRepository interface {
	Next(ctx context.Context, doctorID uuid.UUID, date time.Time, session string) (int, error)
}
