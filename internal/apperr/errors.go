package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP translation and logging.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindGateway
	KindPersistence
	KindNotification
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindGateway:
		return "payment_gateway"
	case KindPersistence:
		return "persistence"
	case KindNotification:
		return "notification"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// Error carries a kind plus a message safe to show to callers.
// The wrapped cause stays server-side.
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

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Gateway passes the gateway's own message through; it is assumed
// customer-safe (card declined, etc).
func Gateway(msg string, err error) *Error {
	return &Error{Kind: KindGateway, Message: msg, Err: err}
}

// Persistence hides the underlying database detail from callers.
func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

func Notification(msg string, err error) *Error {
	return &Error{Kind: KindNotification, Message: msg, Err: err}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

// KindOf reports the kind of err, defaulting to persistence for
// untyped errors so nothing internal leaks.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// HTTPStatus maps an error to the status codes used across the API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	default:
		return 500
	}
}

// UserMessage returns the caller-facing message for err. Untyped
// errors get a generic message; the detail belongs in server logs.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
