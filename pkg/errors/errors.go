package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL_ERROR"
	CodeBadRequest           = "BAD_REQUEST"
	CodeTimeout              = "TIMEOUT"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidTimeRange     = "INVALID_TIME_RANGE"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeNoAvailabilityFound  = "NO_AVAILABILITY_FOUND"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidTimeRange reports a window whose exit time is not after its entry time.
func InvalidTimeRange(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidTimeRange,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InsufficientCapacity reports a request that cannot fit. The message carries
// the number of spaces still free for the requested window.
func InsufficientCapacity(remaining, requested int) *AppError {
	if remaining < 0 {
		remaining = 0
	}
	return &AppError{
		Code:       CodeInsufficientCapacity,
		Message:    fmt.Sprintf("Only %d spaces remaining, %d requested", remaining, requested),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"remaining": remaining,
			"requested": requested,
		},
	}
}

// ExceedsCapacity reports a request for more spaces than the lot holds in total.
func ExceedsCapacity(capacity, requested int) *AppError {
	return &AppError{
		Code:       CodeInsufficientCapacity,
		Message:    fmt.Sprintf("Requested %d spaces but the parking lot only has %d spaces in total", requested, capacity),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"capacity":  capacity,
			"requested": requested,
		},
	}
}

func NoAvailabilityFound(message string) *AppError {
	return &AppError{
		Code:       CodeNoAvailabilityFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// IsAppError reports whether err, or anything it wraps, is an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err carries an *AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
