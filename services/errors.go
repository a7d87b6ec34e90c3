package services

import (
	"errors"
	"fmt"

	"design-request-server/models"
)

// ErrNotFound is returned when the referenced request, user or notification
// does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError means the input was malformed before any persistence call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PreconditionError means the actor's role or the request's current status
// does not permit the attempted transition. No mutation has occurred.
type PreconditionError struct {
	Op       string
	Expected []models.RequestStatus
	Actual   models.RequestStatus
	Reason   string
}

func (e *PreconditionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: request status is %q, expected one of %v", e.Op, e.Actual, e.Expected)
}

// PersistenceError wraps a failed store call on the primary mutation path.
// Secondary effects (archive, notifications, QC) are logged, not wrapped.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is a precondition violation, including
// a compare-and-swap miss surfaced by the store.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
