package subsonic

import (
	"errors"
	"fmt"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/shared"
)

// Code is a protocol error code.
type Code int

const (
	GenericError     Code = 0
	MissingParameter Code = 10
	ClientTooOld     Code = 20
	ServerTooOld     Code = 30
	InvalidAuth      Code = 40
	Unauthorized     Code = 50
	NotFound         Code = 70
)

func (c Code) String() string {
	switch c {
	case GenericError:
		return "generic error"
	case MissingParameter:
		return "missing parameter"
	case ClientTooOld:
		return "client too old"
	case ServerTooOld:
		return "server too old"
	case InvalidAuth:
		return "invalid auth"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// genericMessage is returned for every unexpected failure so internal details stay in the logs.
const genericMessage = "an internal error occurred"

// Error is a failure reported to the client inside an error envelope.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an [Error] with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Missing reports a required parameter that was not supplied.
func Missing(param string) *Error {
	return NewError(MissingParameter, "missing parameter: %s", param)
}

// InvalidValue reports a parameter that was supplied with an unusable value.
func InvalidValue(param string) *Error {
	return NewError(MissingParameter, "invalid value for parameter %s", param)
}

// NotFoundf reports a missing entity.
func NotFoundf(format string, args ...any) *Error {
	return NewError(NotFound, format, args...)
}

// AsError converts any error into a protocol error.
//
// Protocol errors pass through. Malformed IDs and missing entities become [NotFound].
// Everything else becomes a [GenericError] with a fixed message.
func AsError(err error) *Error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return e
	case errors.Is(err, ids.ErrMalformedID):
		return NotFoundf("%s", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		return NotFoundf("%s", err.Error())
	default:
		return &Error{Code: GenericError, Message: genericMessage}
	}
}
