// Package appointment owns the appointment lifecycle: queue number
// assignment, the clinical and confirmation state machines, bulk operations,
// and real-time notification of every transition.
package appointment

// Clinical statuses track the visit's progress.
const (
	StatusScheduled     = "scheduled"
	StatusExamining     = "examining"
	StatusWaitingResult = "waiting_result"
	StatusCompleted     = "completed"
	StatusCancelled     = "cancelled"
)

// Confirmation statuses track the doctor's accept/decline decision,
// independent of clinical progress.
const (
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationRejected  = "rejected"
)

// clinicalTransitions is the closed transition table. Anything absent is an
// invalid transition. examining -> completed is allowed when no test orders
// are pending; the examination module decides which request to send.
var clinicalTransitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusExamining: true,
		StatusCancelled: true,
	},
	StatusExamining: {
		StatusWaitingResult: true,
		StatusCompleted:     true,
		StatusCancelled:     true,
	},
	StatusWaitingResult: {
		StatusCompleted: true,
	},
}

// CanTransition reports whether the clinical status may move from one state
// to another.
func CanTransition(from, to string) bool {
	return clinicalTransitions[from][to]
}

var confirmationTransitions = map[string]map[string]bool{
	ConfirmationPending: {
		ConfirmationConfirmed: true,
		ConfirmationRejected:  true,
	},
}

// CanConfirmTransition reports whether the confirmation status may move from
// one state to another.
func CanConfirmTransition(from, to string) bool {
	return confirmationTransitions[from][to]
}
