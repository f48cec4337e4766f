// Package errors renders failures as the API's JSON error body.
package errors

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// ErrorResponse is the body returned for every non-2xx response.
type ErrorResponse struct {
	Timestamp time.Time      `json:"timestamp"`
	Path      string         `json:"path"`
	Status    int            `json:"status"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
}

// Error implements the error interface.
func (r ErrorResponse) Error() string {
	return fmt.Sprintf("%d %s: %s", r.Status, r.Code, r.Message)
}

// WithMessage returns a copy with the given message.
func (r ErrorResponse) WithMessage(message string) ErrorResponse {
	r.Message = message
	return r
}

// WithDetail returns a copy with an additional details entry.
func (r ErrorResponse) WithDetail(key string, value any) ErrorResponse {
	details := make(map[string]any, len(r.Details)+1)
	for k, v := range r.Details {
		details[k] = v
	}
	details[key] = value
	r.Details = details
	return r
}

// Codes that do not originate from a failure kind.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// Pre-defined responses for transport level problems.
var (
	ErrBadRequest = ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: "Invalid request",
	}

	ErrRouteNotFound = ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    string(failure.KindNotFound),
		Message: "Resource not found",
	}

	ErrInternal = ErrorResponse{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
	}
)

// StatusForKind maps every failure kind to its HTTP status.
func StatusForKind(kind failure.Kind) int {
	switch kind {
	case failure.KindValidation:
		return http.StatusUnprocessableEntity
	case failure.KindNotFound, failure.KindAnimalNotFound:
		return http.StatusNotFound
	case failure.KindStateConflict:
		return http.StatusConflict
	case failure.KindInvalidQuery:
		return http.StatusBadRequest
	case failure.KindUnauthorized:
		return http.StatusUnauthorized
	case failure.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FromFailure converts a typed business failure into a response body.
func FromFailure(f *failure.Error) ErrorResponse {
	message := f.Message
	if message == "" {
		message = http.StatusText(StatusForKind(f.Kind))
	}
	return ErrorResponse{
		Status:  StatusForKind(f.Kind),
		Code:    f.ResponseCode(),
		Message: message,
		Details: f.Details,
	}
}
