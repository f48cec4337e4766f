package failure

import (
	"errors"
	"fmt"
)

// FieldError ties a validation error to the input field that caused it.
type FieldError struct {
	Field string
	Err   error
}

// Field builds a FieldError.
func Field(field string, err error) *FieldError {
	return &FieldError{Field: field, Err: err}
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// Fields collects every FieldError in err's tree, including errors.Join branches.
// The first message recorded for a field wins.
func Fields(err error) map[string]string {
	fields := map[string]string{}
	collectFields(err, fields)
	return fields
}

func collectFields(err error, into map[string]string) {
	if err == nil {
		return
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		if _, ok := into[fe.Field]; !ok {
			into[fe.Field] = fe.Err.Error()
		}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectFields(e, into)
		}
	}
}

// ValidationFrom converts field errors into a Validation failure, or returns false when err carries none.
func ValidationFrom(message string, err error) (*Error, bool) {
	fields := Fields(err)
	if len(fields) == 0 {
		return nil, false
	}
	f := Validation(message, fields)
	f.Err = err
	return f, true
}
