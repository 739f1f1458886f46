package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Booking not found"},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "failed to create booking",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: failed to create booking (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Parking lot", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad body", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"invalid time range", InvalidTimeRange("exit before entry"), CodeInvalidTimeRange, http.StatusBadRequest},
		{"insufficient capacity", InsufficientCapacity(3, 5), CodeInsufficientCapacity, http.StatusBadRequest},
		{"no availability", NoAvailabilityFound("none"), CodeNoAvailabilityFound, http.StatusNotFound},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("name taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Redis"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestInsufficientCapacity_Message(t *testing.T) {
	err := InsufficientCapacity(798, 900)

	if !strings.Contains(err.Message, "798") {
		t.Errorf("expected remaining count in message, got %q", err.Message)
	}
	if err.Details["remaining"] != 798 || err.Details["requested"] != 900 {
		t.Errorf("unexpected details %v", err.Details)
	}

	clamped := InsufficientCapacity(-4, 2)
	if clamped.Details["remaining"] != 0 {
		t.Errorf("expected negative remaining to clamp to 0, got %v", clamped.Details["remaining"])
	}
}

func TestExceedsCapacity_NamesTotal(t *testing.T) {
	err := ExceedsCapacity(800, 900)

	if err.Code != CodeInsufficientCapacity {
		t.Errorf("expected %s, got %s", CodeInsufficientCapacity, err.Code)
	}
	if strings.Contains(err.Message, "remaining") {
		t.Errorf("total capacity must not be reported as remaining: %q", err.Message)
	}
	if !strings.Contains(err.Message, "800 spaces in total") {
		t.Errorf("expected total capacity in message, got %q", err.Message)
	}
	if _, ok := err.Details["remaining"]; ok {
		t.Errorf("unexpected remaining detail %v", err.Details)
	}
	if err.Details["capacity"] != 800 || err.Details["requested"] != 900 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the wrapped error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	wrapped := fmt.Errorf("transaction failed: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should unwrap to the inner AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}

	regularErr := errors.New("regular error")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal || result.Err != regularErr {
		t.Errorf("AsAppError() should wrap regular errors as internal, got %+v", result)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Forbidden("nope"))
	if !HasCode(err, CodeForbidden) {
		t.Errorf("expected HasCode to match FORBIDDEN")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("did not expect HasCode to match NOT_FOUND")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("plain errors carry no code")
	}
}
