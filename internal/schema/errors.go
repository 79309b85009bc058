package schema

import (
	"fmt"
	"strings"
)

// ValidationError describes a single violated constraint on one field.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint,omitempty"`
	Message    string `json:"message"`
	Actual     string `json:"actual,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	}
	return e.Message
}

// MultiValidationError aggregates every violation found in one event.
// Validation fails the event in full; no partial acceptance.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// ValidationDetailer surfaces structured validation details for API error
// responses. Consumers extract details without type-asserting against
// concrete structs.
type ValidationDetailer interface {
	Details() map[string]interface{}
}

// Details returns the structured fields from this single validation error.
func (e *ValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	if e.Field != "" {
		d["field"] = e.Field
	}
	if e.Constraint != "" {
		d["constraint"] = e.Constraint
	}
	return d
}

// Details aggregates the violations from all child errors.
func (e *MultiValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	var fields []string
	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields = append(fields, ve.Field)
		}
	}
	if len(fields) > 0 {
		d["fields"] = fields
	}
	d["errors"] = e.Errors
	return d
}

// NewTypeMismatchError creates an error for type mismatches.
func NewTypeMismatchError(field, expected, actual string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Constraint: expected,
		Message:    fmt.Sprintf("expected %s, got %s", expected, actual),
		Actual:     actual,
	}
}

// NewRequiredFieldError creates an error for missing required fields.
func NewRequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Constraint: "required",
		Message:    "required field is missing",
	}
}
