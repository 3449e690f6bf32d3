package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LocationRepository stores examination sites.
type LocationRepository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	Update(ctx context.Context, l *Location) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Location, int, error)
}

// ShiftRepository stores shift definitions.
type ShiftRepository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Shift, int, error)
}

// WeeklyRepository stores a doctor's recurring weekly pattern.
type WeeklyRepository interface {
	Upsert(ctx context.Context, ws *WeeklyShift) error
	GetByID(ctx context.Context, id uuid.UUID) (*WeeklyShift, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDoctorDay returns the doctor's shifts for one day of week, joined
	// with their definitions, ordered by start time.
	ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*DayShift, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DayShift, error)
}

// OvertimeRepository stores a doctor's overtime days. Getters return
// (nil, nil) when no row exists for the key.
type OvertimeRepository interface {
	GetDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*OvertimeDay, error)
	// UpsertDay replaces the (doctor, day of week) row wholesale.
	UpsertDay(ctx context.Context, d *OvertimeDay) error
	UpdatePauses(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, pauses []PausePeriod) error
	// ToggleActive flips the active flag and returns the new value. Second
	// return is false when no row exists.
	ToggleActive(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (bool, bool, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*OvertimeDay, error)
}

// ExceptionRepository stores date-scoped availability overrides.
type ExceptionRepository interface {
	Create(ctx context.Context, e *SpecialException) error
	GetByID(ctx context.Context, id uuid.UUID) (*SpecialException, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SpecialException, error)
	// FindCovering returns an exception whose range includes the date, or
	// (nil, nil) when none does.
	FindCovering(ctx context.Context, doctorID uuid.UUID, date time.Time) (*SpecialException, error)
}
