// Package apperrors defines the error taxonomy surfaced by the API. Every
// error leaving a repository or handler carries a Kind that maps to exactly
// one HTTP status, so callers can distinguish retryable failures (conflict,
// storage_unavailable) from terminal ones.
package apperrors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind is the machine-readable error category
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindAuthRequired Kind = "authentication_required"
	KindForbidden    Kind = "authorization_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindStorage      Kind = "storage_unavailable"
	KindInternal     Kind = "internal_error"
)

// Error is a categorized application error
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) *Error   { return &Error{Kind: KindValidation, Message: message} }
func AuthRequired(message string) *Error { return &Error{Kind: KindAuthRequired, Message: message} }
func Forbidden(message string) *Error    { return &Error{Kind: KindForbidden, Message: message} }
func NotFound(message string) *Error     { return &Error{Kind: KindNotFound, Message: message} }
func Conflict(message string) *Error     { return &Error{Kind: KindConflict, Message: message} }

// Storage wraps a transient storage failure so the cause stays inspectable
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain, KindInternal if none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its response status code
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders application errors as {"error": kind, "message": ...}.
// Set as the Echo HTTPErrorHandler so handlers can return apperrors directly.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	kind := KindInternal
	message := "Internal server error"

	var appErr *Error
	var httpErr *echo.HTTPError
	if errors.As(err, &appErr) {
		kind = appErr.Kind
		message = appErr.Message
	} else if errors.As(err, &httpErr) {
		// echo middleware (auth, binding) still raises HTTPError
		kind = kindForStatus(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	status := HTTPStatus(kind)
	if httpErr != nil {
		status = httpErr.Code
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": kind, "message": message})
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthRequired
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindStorage
	default:
		return KindInternal
	}
}
