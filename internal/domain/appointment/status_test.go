package appointment

import "testing"

func TestClinicalTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusScheduled, StatusExamining, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusWaitingResult, false},
		{StatusScheduled, StatusCompleted, false},
		{StatusExamining, StatusWaitingResult, true},
		{StatusExamining, StatusCompleted, true},
		{StatusExamining, StatusCancelled, true},
		{StatusExamining, StatusScheduled, false},
		{StatusWaitingResult, StatusCompleted, true},
		{StatusWaitingResult, StatusCancelled, false},
		{StatusWaitingResult, StatusExamining, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusExamining, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusCancelled, StatusExamining, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConfirmationTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ConfirmationPending, ConfirmationConfirmed, true},
		{ConfirmationPending, ConfirmationRejected, true},
		{ConfirmationConfirmed, ConfirmationRejected, false},
		{ConfirmationConfirmed, ConfirmationPending, false},
		{ConfirmationRejected, ConfirmationConfirmed, false},
		{ConfirmationRejected, ConfirmationPending, false},
	}
	for _, tc := range cases {
		if got := CanConfirmTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanConfirmTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
