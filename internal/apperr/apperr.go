// Package apperr defines the domain error taxonomy shared by all services.
// Errors are constructed at the point of detection and matched by kind at
// the transport boundary.
package apperr

import (
	"errors"
	"log/slog"

	"avatarium/internal/lib/sl"
)

type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindNotFound       Kind = "RESOURCE_NOT_FOUND"
	KindConflict       Kind = "RESOURCE_CONFLICT"
	KindInvalidToken   Kind = "INVALID_TOKEN"
	KindInternal       Kind = "INTERNAL_ERROR"
)

// Error is a tagged domain error. Operational distinguishes expected
// failures (bad credentials, conflicts) from internal ones a monitoring
// layer may treat as a service-health signal.
type Error struct {
	Kind        Kind
	Message     string
	Operational bool
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Operational: true}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Operational: true}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Operational: true}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Operational: true}
}

func InvalidToken(message string) *Error {
	return &Error{Kind: KindInvalidToken, Message: message, Operational: true}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Operational: false, cause: cause}
}

// IsKind reports whether err carries the given domain kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Normalize passes recognized domain errors through unchanged. Anything
// else is logged with full context and replaced by a non-operational
// internal error, so callers never observe raw infrastructure failures.
func Normalize(log *slog.Logger, err error, message string) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	log.Error(message, sl.Err(err))
	return Internal(message, err)
}
