package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Appointment is the central transactional entity. It is created by a booking
// request and mutated only through Service operations; the only physical
// delete is Purge on an already-cancelled record.
type Appointment struct {
	ID                  uuid.UUID  `json:"id"`
	PatientID           uuid.UUID  `json:"patient_id"`
	DoctorID            uuid.UUID  `json:"doctor_id"`
	DepartmentID        uuid.UUID  `json:"department_id"`
	LocationID          uuid.UUID  `json:"location_id"`
	Date                time.Time  `json:"date"`
	Session             string     `json:"session"`
	QueueNumber         int        `json:"queue_number"`
	ClinicalStatus      string     `json:"clinical_status"`
	ConfirmationStatus  string     `json:"confirmation_status"`
	Overtime            bool       `json:"overtime"`
	Reason              string     `json:"reason,omitempty"`
	CancelReason        string     `json:"cancel_reason,omitempty"`
	RejectReason        string     `json:"reject_reason,omitempty"`
	ExaminationRecordID *uuid.UUID `json:"examination_record_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Live reports whether the appointment still occupies its session: neither
// rejected by the doctor nor cancelled.
func (a *Appointment) Live() bool {
	return a.ConfirmationStatus != ConfirmationRejected && a.ClinicalStatus != StatusCancelled
}

// ParseSession splits a "HH:MM-HH:MM" session key into start and end minutes
// since midnight.
func ParseSession(session string) (int, int, error) {
	parts := strings.SplitN(session, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid session %q: want HH:MM-HH:MM", session)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
