// Package apperr defines the typed error outcomes service operations
// return instead of relying on ad-hoc error strings. Controllers map
// each kind onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindExternalService
	KindUnparseableModelOutput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service_failure"
	case KindUnparseableModelOutput:
		return "unparseable_model_output"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error  { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }
func Validation(message string) *Error {
	return New(KindValidation, message)
}
func ExternalService(message string, err error) *Error {
	return Wrap(KindExternalService, message, err)
}
func UnparseableModelOutput(message string, err error) *Error {
	return Wrap(KindUnparseableModelOutput, message, err)
}

// KindOf extracts the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of err. Untyped errors map
// to a generic message so internals never leak to clients.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
