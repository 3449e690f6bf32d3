// Package clinicerr defines the error taxonomy shared by the scheduling and
// appointment domains. Every error carries a Kind that maps mechanically to an
// HTTP status, so handlers never need to string-match messages.
package clinicerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind string

const (
	KindOverlap           Kind = "overlap"
	KindInvalidRange      Kind = "invalid_range"
	KindSlotUnavailable   Kind = "slot_unavailable"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
)

// Error is a classified domain error. For invalid transitions, Current and
// Attempted carry the state-machine diagnostics.
type Error struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Current   string `json:"current,omitempty"`
	Attempted string `json:"attempted,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Overlap reports two conflicting time intervals for the same doctor/day.
func Overlap(format string, args ...interface{}) *Error {
	return &Error{Kind: KindOverlap, Message: fmt.Sprintf(format, args...)}
}

// InvalidRange reports a malformed date or time range.
func InvalidRange(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRange, Message: fmt.Sprintf(format, args...)}
}

// SlotUnavailable reports a booking attempt against a window no longer open.
func SlotUnavailable(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSlotUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Transition reports a state-machine violation with the current and attempted
// states attached.
func Transition(current, attempted string) *Error {
	return &Error{
		Kind:      KindInvalidTransition,
		Message:   fmt.Sprintf("invalid transition from %q to %q", current, attempted),
		Current:   current,
		Attempted: attempted,
	}
}

// NotFound reports an unknown entity id.
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// Unauthorized reports an actor attempting an operation not permitted on the
// target entity.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" when err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError returns the classified error inside err, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus maps an error to the HTTP status its kind warrants. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindOverlap, KindInvalidTransition:
		return http.StatusConflict
	case KindInvalidRange:
		return http.StatusBadRequest
	case KindSlotUnavailable:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
