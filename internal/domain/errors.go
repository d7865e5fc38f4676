package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a domain error.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindConflict           ErrorKind = "conflict"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindAlreadyExists      ErrorKind = "already_exists"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindUnavailable        ErrorKind = "unavailable"
)

// Error is the error type crossing the core's boundary. Every error the
// engine surfaces carries a kind callers can branch on and a message
// humans can read.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithDetail attaches a key/value pair to the error and returns it.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewValidationError reports malformed input. Recoverable by the caller
// correcting the request, never retried automatically.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewConflictError reports an overlapping booking discovered at commit
// time. The request is definitively rejected; retrying it unchanged
// cannot succeed.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidTransitionError reports a status transition the state
// machine does not permit.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewAlreadyExistsError reports a duplicate of a singular resource.
func NewAlreadyExistsError(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: message}
}

// NewPreconditionFailedError reports an operation attempted before its
// required prior step.
func NewPreconditionFailedError(message string) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewForbiddenError reports an actor acting outside their capability.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnavailableError reports a transient infrastructure failure. Safe
// to retry only for operations keyed by an idempotency key.
func NewUnavailableError(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// KindOf extracts the kind of err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
