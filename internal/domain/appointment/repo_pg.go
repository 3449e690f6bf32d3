package appointment

import (
	"context"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, patient_id, doctor_id, department_id, location_id, date, session,
	queue_number, clinical_status, confirmation_status, overtime,
	reason, cancel_reason, reject_reason, examination_record_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DepartmentID, &a.LocationID,
		&a.Date, &a.Session, &a.QueueNumber, &a.ClinicalStatus, &a.ConfirmationStatus,
		&a.Overtime, &a.Reason, &a.CancelReason, &a.RejectReason,
		&a.ExaminationRecordID, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, department_id, location_id,
			date, session, queue_number, clinical_status, confirmation_status, overtime, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.PatientID, a.DoctorID, a.DepartmentID, a.LocationID,
		a.Date, a.Session, a.QueueNumber, a.ClinicalStatus, a.ConfirmationStatus, a.Overtime, a.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE appointment SET clinical_status=$2, confirmation_status=$3,
			cancel_reason=$4, reject_reason=$5, examination_record_id=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ClinicalStatus, a.ConfirmationStatus,
		a.CancelReason, a.RejectReason, a.ExaminationRecordID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE doctor_id = $1 AND date = $2 ORDER BY session, queue_number`,
		doctorID, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE `+col+` = $1 ORDER BY date DESC, session, queue_number LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) LiveSessions(ctx context.Context, doctorID uuid.UUID, date time.Time) (map[string]bool, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT DISTINCT session FROM appointment
		WHERE doctor_id = $1 AND date = $2
			AND confirmation_status <> $3 AND clinical_status <> $4`,
		doctorID, date, ConfirmationRejected, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	live := make(map[string]bool)
	for rows.Next() {
		var session string
		if err := rows.Scan(&session); err != nil {
			return nil, err
		}
		live[session] = true
	}
	return live, rows.Err()
}

type counterRepoPG struct{ pool *pgxpool.Pool }

func NewCounterRepoPG(pool *pgxpool.Pool) CounterRepository { return &counterRepoPG{pool: pool} }

// Next upserts the counter row and returns the incremented value in one
// statement, which makes the read-and-increment atomic under concurrency.
func (r *counterRepoPG) Next(ctx context.Context, doctorID uuid.UUID, date time.Time, session string) (int, error) {
	var value int
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO queue_counter (doctor_id, date, session, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (doctor_id, date, session)
		DO UPDATE SET value = queue_counter.value + 1
		RETURNING value`,
		doctorID, date, session).Scan(&value)
	return value, err
}
