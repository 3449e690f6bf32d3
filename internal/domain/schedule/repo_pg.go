package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencare/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Location Repository ===========

type locationRepoPG struct{ pool *pgxpool.Pool }

func NewLocationRepoPG(pool *pgxpool.Pool) LocationRepository { return &locationRepoPG{pool: pool} }

const locationCols = `id, name, address, created_at, updated_at`

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *locationRepoPG) Create(ctx context.Context, l *Location) error {
	l.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO location (id, name, address) VALUES ($1,$2,$3)`,
		l.ID, l.Name, l.Address)
	return err
}

func (r *locationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	return scanLocation(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+locationCols+` FROM location WHERE id = $1`, id))
}

func (r *locationRepoPG) Update(ctx context.Context, l *Location) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE location SET name=$2, address=$3, updated_at=NOW() WHERE id = $1`,
		l.ID, l.Name, l.Address)
	return err
}

func (r *locationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM location WHERE id = $1`, id)
	return err
}

func (r *locationRepoPG) List(ctx context.Context, limit, offset int) ([]*Location, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM location`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+locationCols+` FROM location ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

// =========== Shift Repository ===========

type shiftRepoPG struct{ pool *pgxpool.Pool }

func NewShiftRepoPG(pool *pgxpool.Pool) ShiftRepository { return &shiftRepoPG{pool: pool} }

const shiftCols = `id, name, start_time, end_time, location_id, created_at, updated_at`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.Name, &s.Start, &s.End, &s.LocationID, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *shiftRepoPG) Create(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO shift (id, name, start_time, end_time, location_id) VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, s.Start, s.End, s.LocationID)
	return err
}

func (r *shiftRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Shift, error) {
	return scanShift(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+shiftCols+` FROM shift WHERE id = $1`, id))
}

func (r *shiftRepoPG) Update(ctx context.Context, s *Shift) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE shift SET name=$2, start_time=$3, end_time=$4, location_id=$5, updated_at=NOW() WHERE id = $1`,
		s.ID, s.Name, s.Start, s.End, s.LocationID)
	return err
}

func (r *shiftRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	return err
}

func (r *shiftRepoPG) List(ctx context.Context, limit, offset int) ([]*Shift, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM shift`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+shiftCols+` FROM shift ORDER BY start_time LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

// =========== Weekly Repository ===========

type weeklyRepoPG struct{ pool *pgxpool.Pool }

func NewWeeklyRepoPG(pool *pgxpool.Pool) WeeklyRepository { return &weeklyRepoPG{pool: pool} }

func (r *weeklyRepoPG) Upsert(ctx context.Context, ws *WeeklyShift) error {
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO weekly_shift (id, doctor_id, day_of_week, shift_id)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (doctor_id, day_of_week, shift_id) DO NOTHING`,
		ws.ID, ws.DoctorID, ws.DayOfWeek, ws.ShiftID)
	return err
}

func (r *weeklyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*WeeklyShift, error) {
	var ws WeeklyShift
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, doctor_id, day_of_week, shift_id, created_at FROM weekly_shift WHERE id = $1`, id).
		Scan(&ws.ID, &ws.DoctorID, &ws.DayOfWeek, &ws.ShiftID, &ws.CreatedAt)
	return &ws, err
}

func (r *weeklyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM weekly_shift WHERE id = $1`, id)
	return err
}

const dayShiftQuery = `
	SELECT w.id, w.day_of_week, s.id, s.name, s.start_time, s.end_time, s.location_id
	FROM weekly_shift w
	JOIN shift s ON s.id = w.shift_id
	WHERE w.doctor_id = $1`

func scanDayShifts(rows pgx.Rows) ([]*DayShift, error) {
	defer rows.Close()
	var items []*DayShift
	for rows.Next() {
		var d DayShift
		if err := rows.Scan(&d.WeeklyShiftID, &d.DayOfWeek, &d.ShiftID, &d.Name, &d.Start, &d.End, &d.LocationID); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *weeklyRepoPG) ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*DayShift, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		dayShiftQuery+` AND w.day_of_week = $2 ORDER BY s.start_time`, doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	return scanDayShifts(rows)
}

func (r *weeklyRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DayShift, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		dayShiftQuery+` ORDER BY w.day_of_week, s.start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	return scanDayShifts(rows)
}

// =========== Overtime Repository ===========

type overtimeRepoPG struct{ pool *pgxpool.Pool }

func NewOvertimeRepoPG(pool *pgxpool.Pool) OvertimeRepository { return &overtimeRepoPG{pool: pool} }

const overtimeCols = `id, doctor_id, day_of_week, active, location_id, slots, pauses, created_at, updated_at`

func scanOvertimeDay(row pgx.Row) (*OvertimeDay, error) {
	var d OvertimeDay
	err := row.Scan(&d.ID, &d.DoctorID, &d.DayOfWeek, &d.Active, &d.LocationID,
		&d.Slots, &d.Pauses, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *overtimeRepoPG) GetDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*OvertimeDay, error) {
	d, err := scanOvertimeDay(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+overtimeCols+` FROM overtime_day WHERE doctor_id = $1 AND day_of_week = $2`,
		doctorID, dayOfWeek))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *overtimeRepoPG) UpsertDay(ctx context.Context, d *OvertimeDay) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO overtime_day (id, doctor_id, day_of_week, active, location_id, slots, pauses)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (doctor_id, day_of_week) DO UPDATE SET
			active = EXCLUDED.active,
			location_id = EXCLUDED.location_id,
			slots = EXCLUDED.slots,
			pauses = EXCLUDED.pauses,
			updated_at = NOW()`,
		d.ID, d.DoctorID, d.DayOfWeek, d.Active, d.LocationID, d.Slots, d.Pauses)
	return err
}

func (r *overtimeRepoPG) UpdatePauses(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, pauses []PausePeriod) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE overtime_day SET pauses = $3, updated_at = NOW()
		WHERE doctor_id = $1 AND day_of_week = $2`,
		doctorID, dayOfWeek, pauses)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *overtimeRepoPG) ToggleActive(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (bool, bool, error) {
	var active bool
	err := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE overtime_day SET active = NOT active, updated_at = NOW()
		WHERE doctor_id = $1 AND day_of_week = $2
		RETURNING active`,
		doctorID, dayOfWeek).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return active, true, nil
}

func (r *overtimeRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*OvertimeDay, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+overtimeCols+` FROM overtime_day WHERE doctor_id = $1 ORDER BY day_of_week`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OvertimeDay
	for rows.Next() {
		d, err := scanOvertimeDay(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// =========== Exception Repository ===========

type exceptionRepoPG struct{ pool *pgxpool.Pool }

func NewExceptionRepoPG(pool *pgxpool.Pool) ExceptionRepository { return &exceptionRepoPG{pool: pool} }

const exceptionCols = `id, doctor_id, start_date, end_date, type, note, created_at`

func scanException(row pgx.Row) (*SpecialException, error) {
	var e SpecialException
	err := row.Scan(&e.ID, &e.DoctorID, &e.StartDate, &e.EndDate, &e.Type, &e.Note, &e.CreatedAt)
	return &e, err
}

func (r *exceptionRepoPG) Create(ctx context.Context, e *SpecialException) error {
	e.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO special_exception (id, doctor_id, start_date, end_date, type, note)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.DoctorID, e.StartDate, e.EndDate, e.Type, e.Note)
	return err
}

func (r *exceptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SpecialException, error) {
	return scanException(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+exceptionCols+` FROM special_exception WHERE id = $1`, id))
}

func (r *exceptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM special_exception WHERE id = $1`, id)
	return err
}

func (r *exceptionRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SpecialException, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+exceptionCols+` FROM special_exception WHERE doctor_id = $1 ORDER BY start_date DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SpecialException
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *exceptionRepoPG) FindCovering(ctx context.Context, doctorID uuid.UUID, date time.Time) (*SpecialException, error) {
	e, err := scanException(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+exceptionCols+` FROM special_exception
		WHERE doctor_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC LIMIT 1`,
		doctorID, CivilDate(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
