package orchestrator

import (
	"errors"
	"fmt"
)

// ErrFilteredSender marks a well-formed message from ServerParticipant.
var ErrFilteredSender = errors.New("message from reserved sender")

// DecodeError is returned when a payload is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("decode payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SchemaError is returned when a payload is JSON but a required field is
// missing or has the wrong shape.
type SchemaError struct {
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *SchemaError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func schemaErr(field, reason string, err error) *SchemaError {
	return &SchemaError{Field: field, Reason: reason, Err: err}
}
