package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps the kind to its transport status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type APIError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}

	return msg
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func (e *APIError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func New(kind Kind, message string, details string) *APIError {
	return &APIError{Kind: kind, Code: kind.String(), Message: message, Details: details}
}

func BadRequest(message string, details string) *APIError {
	return New(KindBadRequest, message, details)
}

func Unauthorized(message string) *APIError {
	return New(KindUnauthorized, message, "")
}

func Forbidden(message string) *APIError {
	return New(KindForbidden, message, "")
}

func NotFound(message string, details string) *APIError {
	return New(KindNotFound, message, details)
}

func Conflict(message string, details string) *APIError {
	return New(KindConflict, message, details)
}

// Internal wraps an infrastructure fault. The cause is kept for logging and is
// never rendered to clients.
func Internal(message string, cause error) *APIError {
	e := New(KindInternal, message, "")
	e.cause = cause
	return e
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// IsClassified reports whether err is an expected domain error that should
// reach the boundary unchanged.
func IsClassified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind != KindInternal
}

// Funnel passes classified errors through and wraps everything else into an
// Internal error carrying message.
func Funnel(err error, message string) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}

	return Internal(message, err)
}
