// Package failure defines the closed set of business failure kinds returned by application services.
// Transports translate a Kind into their own status vocabulary; nothing outside this package invents new kinds.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed.
type Kind string

const (
	KindValidation     Kind = "VALIDATION_FAILED"
	KindNotFound       Kind = "RESOURCE_NOT_FOUND"
	KindAnimalNotFound Kind = "ANIMAL_NOT_FOUND"
	KindStateConflict  Kind = "STATE_CONFLICT"
	KindInvalidQuery   Kind = "INVALID_QUERY_PARAM"
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindForbidden      Kind = "FORBIDDEN"
)

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindValidation,
		KindNotFound,
		KindAnimalNotFound,
		KindStateConflict,
		KindInvalidQuery,
		KindUnauthorized,
		KindForbidden,
	}
}

// Error is a typed business failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Sentinels usable with errors.Is; matching compares kinds only.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAnimalNotFound = &Error{Kind: KindAnimalNotFound}
	ErrStateConflict  = &Error{Kind: KindStateConflict}
	ErrInvalidQuery   = &Error{Kind: KindInvalidQuery}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrForbidden      = &Error{Kind: KindForbidden}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ResponseCode returns the machine-readable code for the failure, defaulting to the kind.
func (e *Error) ResponseCode() string {
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

// WithCode overrides the response code while keeping the kind.
func (e *Error) WithCode(code string) *Error {
	clone := *e
	clone.Code = code
	return &clone
}

// Validation builds a validation failure with field level messages.
func Validation(message string, fields map[string]string) *Error {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// NotFound reports that a resource of the given type is missing.
func NotFound(resource string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"id": id},
	}
}

// AnimalNotFound reports a dangling animal reference.
func AnimalNotFound(animalID int64) *Error {
	return &Error{
		Kind:    KindAnimalNotFound,
		Message: "animal not found",
		Details: map[string]any{"animalId": animalID},
	}
}

// StateConflict reports that the operation is not permitted from the current state.
func StateConflict(message string, details map[string]any) *Error {
	return &Error{Kind: KindStateConflict, Message: message, Details: details}
}

// InvalidQuery reports malformed list or path parameters.
func InvalidQuery(message string, fields map[string]string) *Error {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &Error{Kind: KindInvalidQuery, Message: message, Details: details}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Wrap attaches a cause to f.
func Wrap(f *Error, cause error) *Error {
	clone := *f
	clone.Err = cause
	return &clone
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var f *Error
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	f, ok := As(err)
	if !ok {
		return "", false
	}
	return f.Kind, true
}
