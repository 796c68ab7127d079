package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Recoverable by the caller, never
// retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// PermissionError reports that the actor lacks the role or ownership required
// for the requested operation.
type PermissionError struct {
	Actor   Actor
	Message string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for user %d (%s): %s", e.Actor.UserID, e.Actor.Role, e.Message)
}

// NotFoundError reports a missing Item, Reservation, Return or User.
type NotFoundError struct {
	Entity EntityType
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a domain-state conflict: an illegal transition, an
// already-processed return, or overlapping reservations. Conflicting records
// are included so the caller can resolve without re-querying.
type ConflictError struct {
	Message                 string
	ConflictingReservations []Reservation
}

func (e *ConflictError) Error() string {
	if n := len(e.ConflictingReservations); n > 0 {
		return fmt.Sprintf("%s (%d conflicting reservations)", e.Message, n)
	}
	return e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
