package appointment

import "testing"

func TestParseSession(t *testing.T) {
	start, end, err := ParseSession("08:00-12:00")
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if start != 480 || end != 720 {
		t.Errorf("got (%d, %d), want (480, 720)", start, end)
	}

	for _, bad := range []string{"", "08:00", "08:00-25:00", "08:00/12:00"} {
		if _, _, err := ParseSession(bad); err == nil {
			t.Errorf("ParseSession(%q): expected error", bad)
		}
	}
}

func TestLive(t *testing.T) {
	a := &Appointment{ClinicalStatus: StatusScheduled, ConfirmationStatus: ConfirmationPending}
	if !a.Live() {
		t.Error("pending scheduled appointment should be live")
	}
	a.ConfirmationStatus = ConfirmationRejected
	if a.Live() {
		t.Error("rejected appointment should not be live")
	}
	a.ConfirmationStatus = ConfirmationConfirmed
	a.ClinicalStatus = StatusCancelled
	if a.Live() {
		t.Error("cancelled appointment should not be live")
	}
	a.ClinicalStatus = StatusCompleted
	if !a.Live() {
		t.Error("completed appointment still occupies its session")
	}
}
