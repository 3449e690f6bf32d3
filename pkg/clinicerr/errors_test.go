package clinicerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTransitionCarriesStates(t *testing.T) {
	err := Transition("completed", "cancelled")
	if err.Current != "completed" {
		t.Errorf("expected current 'completed', got %q", err.Current)
	}
	if err.Attempted != "cancelled" {
		t.Errorf("expected attempted 'cancelled', got %q", err.Attempted)
	}
	if err.Kind != KindInvalidTransition {
		t.Errorf("unexpected kind %q", err.Kind)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := NotFound("appointment", "abc")
	wrapped := fmt.Errorf("lookup failed: %w", inner)
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("expected not_found through wrapping, got %q", KindOf(wrapped))
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != "" {
		t.Error("expected empty kind for plain error")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Overlap("x"), http.StatusConflict},
		{InvalidRange("x"), http.StatusBadRequest},
		{SlotUnavailable("x"), http.StatusConflict},
		{Transition("a", "b"), http.StatusConflict},
		{NotFound("doctor", "id"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := SlotUnavailable("session gone")
	if !IsKind(err, KindSlotUnavailable) {
		t.Error("expected IsKind to match")
	}
	if IsKind(err, KindOverlap) {
		t.Error("expected IsKind to reject wrong kind")
	}
}
