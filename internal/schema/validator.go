package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/go-playground/validator/v10"
)

// Defaults carries the values the validator stamps onto an event while
// producing its typed form.
type Defaults struct {
	// Region is used when the event does not name one.
	Region string
	// Now supplies the clock for the timestamp default. Defaults to
	// time.Now so tests can pin it.
	Now func() time.Time
}

// Validator checks an inbound event against the fixed LogEvent shape and
// applies defaults (region, log_severity, timestamp, time_api_delay).
//
// Validation is pure over the input plus the wall-clock-derived defaults:
// it performs no I/O and fails the entire event on any single violation.
type Validator struct {
	validate *validator.Validate
	defaults Defaults
}

// NewValidator creates a Validator for the fixed telemetry schema.
func NewValidator(defaults Defaults) *Validator {
	if defaults.Now == nil {
		defaults.Now = time.Now
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report violations under the wire field names, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: validate,
		defaults: defaults,
	}
}

// Validate applies defaults and checks every constraint of the fixed
// schema, returning a MultiValidationError enumerating all violations.
//
// api_response.http_error_response is coerced from object to string
// before the type check runs; the rest of normalization happens after
// validation in the Normalizer.
func (v *Validator) Validate(evt *v1.LogEvent) error {
	if evt == nil {
		return &MultiValidationError{Errors: []*ValidationError{
			NewRequiredFieldError("event"),
		}}
	}

	coerceErrorResponse(evt)
	v.applyDefaults(evt)

	var errs []*ValidationError

	if err := v.validate.Struct(evt); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs = append(errs, fieldError(fe))
			}
		} else {
			errs = append(errs, &ValidationError{Message: err.Error()})
		}
	}

	errs = append(errs, checkFreeformFields(evt)...)
	errs = append(errs, checkErrorResponse(evt)...)

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

// applyDefaults stamps the defaulted fields onto the event.
func (v *Validator) applyDefaults(evt *v1.LogEvent) {
	if evt.Region == "" {
		evt.Region = v.defaults.Region
	}
	if evt.LogSeverity == "" {
		evt.LogSeverity = v1.SeverityInfo
	}
	if evt.Timestamp == nil {
		now := v.defaults.Now().UnixMilli()
		evt.Timestamp = &now
	}
	if evt.TimeInMsec != nil && evt.TimeOutMsec != nil {
		evt.TimeAPIDelay = *evt.TimeOutMsec - *evt.TimeInMsec
	} else {
		evt.TimeAPIDelay = 0
	}
}

// coerceErrorResponse serializes an object-valued http_error_response to
// its string form. This runs before validation because the schema check
// assumes the field is a string.
func coerceErrorResponse(evt *v1.LogEvent) {
	if evt.APIResponse == nil {
		return
	}
	switch val := evt.APIResponse.HTTPErrorResponse.(type) {
	case map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return
		}
		evt.APIResponse.HTTPErrorResponse = string(raw)
	case []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return
		}
		evt.APIResponse.HTTPErrorResponse = string(raw)
	}
}

// checkFreeformFields verifies each free-form field is an object or
// absent. The struct validator cannot see into interface-typed fields.
func checkFreeformFields(evt *v1.LogEvent) []*ValidationError {
	var errs []*ValidationError

	check := func(field string, val any) {
		switch val.(type) {
		case nil, map[string]any:
		default:
			errs = append(errs, NewTypeMismatchError(field, "object", jsonTypeName(val)))
		}
	}

	if evt.Action != nil && evt.Action.Details != nil {
		check("action.details.params", evt.Action.Details.Params)
		check("action.details.body", evt.Action.Details.Body)
		check("action.details.headers", evt.Action.Details.Headers)
	}
	if evt.Actor != nil {
		check("actor.additional_info", evt.Actor.AdditionalInfo)
	}
	return errs
}

// checkErrorResponse enforces that http_error_response, when the record
// is present, is a non-empty string (objects were coerced beforehand).
func checkErrorResponse(evt *v1.LogEvent) []*ValidationError {
	if evt.APIResponse == nil {
		return nil
	}
	const field = "api_response.http_error_response"
	switch val := evt.APIResponse.HTTPErrorResponse.(type) {
	case nil:
		return []*ValidationError{NewRequiredFieldError(field)}
	case string:
		if val == "" {
			return []*ValidationError{{
				Field:      field,
				Constraint: "required",
				Message:    "must not be empty",
			}}
		}
		return nil
	default:
		return []*ValidationError{NewTypeMismatchError(field, "string", jsonTypeName(val))}
	}
}

// fieldError converts a go-playground field error into the schema error
// shape, keeping the JSON field path.
func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case "required":
		return NewRequiredFieldError(field)
	case "oneof":
		return &ValidationError{
			Field:      field,
			Constraint: fmt.Sprintf("oneof %s", fe.Param()),
			Message:    fmt.Sprintf("value %q not in enum [%s]", fmt.Sprintf("%v", fe.Value()), fe.Param()),
			Actual:     fmt.Sprintf("%v", fe.Value()),
		}
	case "url":
		return &ValidationError{
			Field:      field,
			Constraint: "url",
			Message:    "must be a valid URI",
			Actual:     fmt.Sprintf("%v", fe.Value()),
		}
	default:
		return &ValidationError{
			Field:      field,
			Constraint: fe.Tag(),
			Message:    fmt.Sprintf("failed constraint %q", fe.Tag()),
			Actual:     fmt.Sprintf("%v", fe.Value()),
		}
	}
}

// jsonTypeName returns a human-readable type name for JSON values.
func jsonTypeName(v interface{}) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
