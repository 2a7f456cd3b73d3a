package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds surfaced by the landed-cost engine.
var (
	ErrRateNotFound         = errors.New("duty rate not found")
	ErrIncompleteRateData   = errors.New("incomplete rate data")
	ErrShippingLaneNotFound = errors.New("shipping lane not found")
	ErrRateUnavailable      = errors.New("exchange rate unavailable")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNoViableOptions      = errors.New("no viable options")
	ErrInternal             = errors.New("internal error")
)

// AppError wraps an error kind with a caller-facing message
type AppError struct {
	Err        error  // Error kind (one of the sentinels above)
	Message    string // User-friendly message
	StatusCode int    // HTTP-style status for the response layer
	Field      string // Offending request field or rate field, if any
	Cause      error  // Underlying failure, if any
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Constructor functions for each kind

func RateNotFound(lookup string) *AppError {
	return &AppError{
		Err:        ErrRateNotFound,
		Message:    fmt.Sprintf("no duty rate for %s", lookup),
		StatusCode: http.StatusNotFound,
	}
}

func IncompleteRateData(field, message string) *AppError {
	return &AppError{
		Err:        ErrIncompleteRateData,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Field:      field,
	}
}

func ShippingLaneNotFound(lookup string) *AppError {
	return &AppError{
		Err:        ErrShippingLaneNotFound,
		Message:    fmt.Sprintf("no shipping rate for %s", lookup),
		StatusCode: http.StatusNotFound,
	}
}

func RateUnavailable(from, to string, cause error) *AppError {
	return &AppError{
		Err:        ErrRateUnavailable,
		Message:    fmt.Sprintf("no exchange rate available for %s/%s", from, to),
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func InvalidInput(field, message string) *AppError {
	return &AppError{
		Err:        ErrInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Field:      field,
	}
}

// NoViableOptions reports a comparison in which every lane failed.
// details are short per-lane reasons such as "AU: no duty rate for ...".
func NoViableOptions(details []string) *AppError {
	msg := "every source country failed"
	if len(details) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(details, "; "))
	}
	return &AppError{
		Err:        ErrNoViableOptions,
		Message:    msg,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func Internal(message string, cause error) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return &AppError{
		Err:        ErrInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// GetStatusCode extracts the status from err, defaults to 500
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateNotFound), errors.Is(err, ErrShippingLaneNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIncompleteRateData), errors.Is(err, ErrNoViableOptions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetMessage extracts user message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}

// Kind returns the machine-readable kind name of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateNotFound):
		return "RATE_NOT_FOUND"
	case errors.Is(err, ErrIncompleteRateData):
		return "INCOMPLETE_RATE_DATA"
	case errors.Is(err, ErrShippingLaneNotFound):
		return "SHIPPING_LANE_NOT_FOUND"
	case errors.Is(err, ErrRateUnavailable):
		return "RATE_UNAVAILABLE"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrNoViableOptions):
		return "NO_VIABLE_OPTIONS"
	default:
		return "INTERNAL"
	}
}

// IsClientError reports whether err was caused by the request or its data.
func IsClientError(err error) bool {
	switch Kind(err) {
	case "RATE_NOT_FOUND", "INCOMPLETE_RATE_DATA", "SHIPPING_LANE_NOT_FOUND", "INVALID_INPUT", "NO_VIABLE_OPTIONS":
		return true
	}
	return false
}
