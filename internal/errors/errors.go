// internal/errors/errors.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is an API-facing error carrying the HTTP status it maps to.
// Services return these; handlers render them as {"error": message}.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func BadRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Status: http.StatusConflict, Message: msg} }
func Internal(msg string) *Error     { return &Error{Status: http.StatusInternalServerError, Message: msg} }
func BadGateway(msg string) *Error   { return &Error{Status: http.StatusBadGateway, Message: msg} }

// From returns err as an *Error if it already is one, otherwise maps it.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Map(err)
}

// Map converts repo/infra errors into API errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) *Error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("resource already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return Internal("request timed out")

	case errors.Is(err, context.Canceled):
		return Internal("request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return Internal(err.Error())
	}
}
