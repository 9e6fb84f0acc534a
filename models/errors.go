package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// Remote store errors
var (
	// ErrRemoteUnavailable covers network failures, timeouts and 5xx answers. The write is queued.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteUnreachable marks the unavailabilities where no answer was received (network error, timeout).
	ErrRemoteUnreachable = errors.New("remote store unreachable")

	// ErrRemoteRejected is returned when the remote store answers with a 4xx status.
	ErrRemoteRejected = errors.New("remote store rejected the request")

	ErrRemoteNotConfigured = errors.Wrap(ErrRemoteUnavailable, "no remote store configured")
)

var (
	ErrUnknownFieldType   = errors.Wrap(BadParameterError, "unknown field type")
	ErrUnknownDevice      = errors.Wrap(BadParameterError, "unknown device")
	ErrUnknownGesture     = errors.Wrap(NotFoundError, "unknown gesture")
	ErrUnknownSyncAction  = errors.Wrap(BadParameterError, "unknown sync action type")
	ErrFormIdRequired     = errors.Wrap(BadParameterError, "form id is required")
	ErrSessionNotFound    = errors.Wrap(NotFoundError, "no designer session open for this form")
	ErrMissingCredentials = errors.Wrap(UnAuthorizedError, "no user in context")
)

type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}
