package appointment

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/opencare/clinic/internal/domain/schedule"
	"github.com/opencare/clinic/pkg/clinicerr"
)

// Emergency closure scopes.
const (
	ScopeWholeDay       = "wholeDay"
	ScopeCurrentSession = "currentSession"
	ScopeOvertimeOnly   = "overtimeOnly"
)

var validScopes = map[string]bool{
	ScopeWholeDay:       true,
	ScopeCurrentSession: true,
	ScopeOvertimeOnly:   true,
}

const stopAllReason = "cancelled by the clinic"

// AvailabilityChecker answers what can currently be booked. Satisfied by
// schedule.Resolver.
type AvailabilityChecker interface {
	Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) (*schedule.Availability, error)
}

// stripedLocks serializes transitions per appointment id. Different ids hash
// to different stripes and proceed in parallel; collisions just serialize two
// unrelated transitions, which is harmless.
type stripedLocks struct {
	stripes [64]sync.Mutex
}

func (l *stripedLocks) get(id uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(id[:])
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}

// Service drives the appointment lifecycle.
type Service struct {
	repo         Repository
	counter      CounterRepository
	availability AvailabilityChecker
	notifier     *Notifier
	locks        stripedLocks
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, counter CounterRepository, availability AvailabilityChecker, notifier *Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		counter:      counter,
		availability: availability,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) getByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, clinicerr.NotFound("appointment", id.String())
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// CreateInput is the booking request.
type CreateInput struct {
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	DepartmentID uuid.UUID
	LocationID   uuid.UUID
	Date         time.Time
	Session      string
	Reason       string
}

// Create books an appointment. The (date, session) pair must be a member of
// the resolver's current output; a stale session fails here rather than being
// prevented by locking the resolver.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	date := schedule.CivilDate(in.Date)

	avail, err := s.availability.Availability(ctx, in.DoctorID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}
	if avail.Blocked != nil {
		return nil, clinicerr.SlotUnavailable("doctor unavailable on %s (%s)",
			date.Format("2006-01-02"), avail.Blocked.Type)
	}
	var window *schedule.Window
	for i := range avail.Windows {
		if avail.Windows[i].Session() == in.Session {
			window = &avail.Windows[i]
			break
		}
	}
	if window == nil {
		return nil, clinicerr.SlotUnavailable("session %s is not open for booking on %s",
			in.Session, date.Format("2006-01-02"))
	}

	number, err := s.counter.Next(ctx, in.DoctorID, date, in.Session)
	if err != nil {
		return nil, fmt.Errorf("next queue number: %w", err)
	}

	locationID := in.LocationID
	if locationID == uuid.Nil {
		locationID = window.LocationID
	}
	a := &Appointment{
		PatientID:          in.PatientID,
		DoctorID:           in.DoctorID,
		DepartmentID:       in.DepartmentID,
		LocationID:         locationID,
		Date:               date,
		Session:            in.Session,
		QueueNumber:        number,
		ClinicalStatus:     StatusScheduled,
		ConfirmationStatus: ConfirmationPending,
		Overtime:           window.Kind == schedule.KindOvertime,
		Reason:             in.Reason,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.notifier.Emit(EventCreated, a)
	return a, nil
}

// Confirm moves the confirmation status pending -> confirmed. The decision
// only applies while the visit is still scheduled; once the clinical status
// has moved on (or the appointment was cancelled) a pending confirmation can
// no longer be resolved. On a transition error the current appointment is
// returned alongside so callers can resynchronize without a follow-up read.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClinicalStatus != StatusScheduled {
		return a, clinicerr.Transition(a.ClinicalStatus, ConfirmationConfirmed)
	}
	if !CanConfirmTransition(a.ConfirmationStatus, ConfirmationConfirmed) {
		return a, clinicerr.Transition(a.ConfirmationStatus, ConfirmationConfirmed)
	}
	a.ConfirmationStatus = ConfirmationConfirmed
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	s.notifier.Emit(EventStatusUpdated, a)
	return a, nil
}

// Reject moves the confirmation status pending -> rejected. A non-empty
// reason is required.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	if reason == "" {
		return nil, clinicerr.InvalidRange("rejection reason is required")
	}
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClinicalStatus != StatusScheduled {
		return a, clinicerr.Transition(a.ClinicalStatus, ConfirmationRejected)
	}
	if !CanConfirmTransition(a.ConfirmationStatus, ConfirmationRejected) {
		return a, clinicerr.Transition(a.ConfirmationStatus, ConfirmationRejected)
	}
	a.ConfirmationStatus = ConfirmationRejected
	a.RejectReason = reason
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	s.notifier.Emit(EventStatusUpdated, a)
	return a, nil
}

// BulkResult is the outcome of one id within a bulk operation.
type BulkResult struct {
	ID    uuid.UUID        `json:"id"`
	OK    bool             `json:"ok"`
	Error *clinicerr.Error `json:"error,omitempty"`
}

func bulkError(err error) *clinicerr.Error {
	if derr := clinicerr.AsError(err); derr != nil {
		return derr
	}
	return &clinicerr.Error{Message: err.Error()}
}

// BulkConfirm confirms each id independently. One id failing does not roll
// back the others.
func (s *Service) BulkConfirm(ctx context.Context, ids []uuid.UUID) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Confirm(ctx, id); err != nil {
			results = append(results, BulkResult{ID: id, Error: bulkError(err)})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true})
	}
	return results
}

// BulkReject rejects each id independently with the same reason.
func (s *Service) BulkReject(ctx context.Context, ids []uuid.UUID, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Reject(ctx, id, reason); err != nil {
			results = append(results, BulkResult{ID: id, Error: bulkError(err)})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true})
	}
	return results
}

// setClinical applies one clinical transition under the per-id lock.
func (s *Service) setClinical(ctx context.Context, id uuid.UUID, to, eventType string, mutate func(*Appointment)) (*Appointment, error) {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.ClinicalStatus, to) {
		return a, clinicerr.Transition(a.ClinicalStatus, to)
	}
	a.ClinicalStatus = to
	if mutate != nil {
		mutate(a)
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	s.notifier.Emit(eventType, a)
	return a, nil
}

// StartExamination moves scheduled -> examining. Confirmation status does not
// gate this; a doctor may walk in an unconfirmed patient.
func (s *Service) StartExamination(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setClinical(ctx, id, StatusExamining, EventStatusUpdated, nil)
}

// MoveToAwaitingResults moves examining -> waiting_result.
func (s *Service) MoveToAwaitingResults(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setClinical(ctx, id, StatusWaitingResult, EventStatusUpdated, nil)
}

// Complete finishes the encounter, from waiting_result or directly from
// examining when no test orders were placed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.setClinical(ctx, id, StatusCompleted, EventCompleted, nil)
}

// LinkExaminationRecord attaches the examination record produced by the
// collaborating module.
func (s *Service) LinkExaminationRecord(ctx context.Context, id, recordID uuid.UUID) (*Appointment, error) {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ExaminationRecordID = &recordID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

// Cancel is legal from scheduled and examining only; a resulted encounter can
// be documented but not cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	return s.setClinical(ctx, id, StatusCancelled, EventStatusUpdated, func(a *Appointment) {
		a.CancelReason = reason
	})
}

// StopAll cancels every still-scheduled appointment of the doctor on the date
// matching the scope, with a fixed system reason when none is given. Returns
// the number cancelled. One-shot: individual failures are skipped, not
// retried.
func (s *Service) StopAll(ctx context.Context, doctorID uuid.UUID, date time.Time, scope, reason string) (int, error) {
	if !validScopes[scope] {
		return 0, clinicerr.InvalidRange("unknown scope %q", scope)
	}
	if reason == "" {
		reason = stopAllReason
	}
	day := schedule.CivilDate(date)

	appts, err := s.repo.ListByDoctorDate(ctx, doctorID, day)
	if err != nil {
		return 0, fmt.Errorf("list appointments: %w", err)
	}

	nowMinutes := s.now().Hour()*60 + s.now().Minute()
	cancelled := 0
	for _, a := range appts {
		if a.ClinicalStatus != StatusScheduled {
			continue
		}
		if !s.inScope(a, scope, nowMinutes) {
			continue
		}
		if _, err := s.Cancel(ctx, a.ID, reason); err != nil {
			s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("stop-all: cancel")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *Service) inScope(a *Appointment, scope string, nowMinutes int) bool {
	switch scope {
	case ScopeWholeDay:
		return true
	case ScopeOvertimeOnly:
		return a.Overtime
	case ScopeCurrentSession:
		start, end, err := ParseSession(a.Session)
		if err != nil {
			return false
		}
		return nowMinutes >= start && nowMinutes < end
	}
	return false
}

// Purge physically removes a cancelled appointment. Only the owning patient
// may purge.
func (s *Service) Purge(ctx context.Context, id, actorID uuid.UUID) error {
	mu := s.locks.get(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if a.PatientID != actorID {
		return clinicerr.Unauthorized("only the owning patient may purge appointment %s", id)
	}
	if a.ClinicalStatus != StatusCancelled {
		return clinicerr.Transition(a.ClinicalStatus, "purged")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// ---- Reads ----

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.getByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	return s.repo.ListByDoctorDate(ctx, doctorID, schedule.CivilDate(date))
}
