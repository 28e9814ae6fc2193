package models

import (
	"fmt"
	"strings"
)

const reasonMissing = "missing required fields"

// ValidationError reports fields that are missing or carry unusable values.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid field %s: %s", strings.Join(e.Fields, ", "), e.Reason)
}

// MissingFieldsError builds the error returned when required columns are absent.
func MissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reasonMissing}
}

// IsMissing reports whether the error lists absent fields rather than bad values.
func (e *ValidationError) IsMissing() bool {
	return e.Reason == reasonMissing
}
