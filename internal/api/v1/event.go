package v1

import "fmt"

// Log severity levels accepted on the wire. SeverityInfo is the default.
const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityError = "ERROR"
	SeverityFatal = "FATAL"
)

// LogEvent is the atomic unit of the system: one telemetry record
// describing an action, its actor, and the outcome.
//
// Fields tagged `validate` are checked by the schema package. Required
// scalars use pointer types so that an absent field is distinguishable
// from its zero value.
type LogEvent struct {
	// LogID is assigned during normalization, never supplied by the caller.
	LogID string `json:"log_id,omitempty"`

	// EventName is the logical action identifier (e.g. "GET_ENTITY_DOMAINS").
	EventName string `json:"event_name" validate:"required"`

	// Service and Region are the partition keys for analytic storage.
	// Region defaults to the configured default region when empty.
	Service string `json:"service" validate:"required"`
	Region  string `json:"region,omitempty"`

	// SourceIdentifier tags the origin system (e.g. "gcp_prod_oc_portal").
	SourceIdentifier string `json:"source_identifier" validate:"required"`

	// Status reports success/failure of the underlying action.
	Status *bool `json:"status" validate:"required"`

	Browser *Browser `json:"browser" validate:"required"`
	Action  *Action  `json:"action" validate:"required"`
	Actor   *Actor   `json:"actor" validate:"required"`

	FileDetails *FileDetails `json:"file_details,omitempty"`
	APIResponse *APIResponse `json:"api_response,omitempty"`

	DescriptiveInfo *string `json:"descriptive_info,omitempty"`

	// LogSeverity defaults to INFO.
	LogSeverity string `json:"log_severity,omitempty" validate:"omitempty,oneof=INFO WARN ERROR FATAL"`

	// TimeInMsec/TimeOutMsec are epoch milliseconds around the measured call.
	TimeInMsec  *int64 `json:"time_in_msec" validate:"required"`
	TimeOutMsec *int64 `json:"time_out_msec" validate:"required"`

	// TimeAPIDelay is derived as TimeOutMsec - TimeInMsec during validation.
	TimeAPIDelay int64 `json:"time_api_delay"`

	// Timestamp is the client-supplied event time in epoch milliseconds.
	// A pointer so an absent field defaults to the ingestion time during
	// validation while an explicit zero is kept as sent.
	Timestamp *int64 `json:"timestamp,omitempty"`

	// TimestampSec is the canonical storage time unit, set by the
	// normalizer as Timestamp/1000 (floor). Not part of the wire format.
	TimestampSec int64 `json:"timestamp_sec,omitempty"`
}

// Browser carries client-side context. UserIP is always overwritten
// server-side from the connection and never trusted from the caller.
type Browser struct {
	URL          *string `json:"url,omitempty" validate:"omitempty,url"`
	BrowserTime  *string `json:"browser_time,omitempty"`
	UserAgent    *string `json:"useragent,omitempty"`
	UserIP       *string `json:"userip,omitempty"`
	UserLocation *string `json:"user_location,omitempty"`
}

// Action describes the instrumented operation.
type Action struct {
	Type    string         `json:"type" validate:"required"`
	Details *ActionDetails `json:"details" validate:"required"`
}

// ActionDetails describes the HTTP call behind the action. Params, Body
// and Headers accept arbitrary JSON objects on input; after
// normalization each is either nil or a serialized JSON string.
type ActionDetails struct {
	APITag             string  `json:"api_tag" validate:"required"`
	Method             string  `json:"method" validate:"required,oneof=GET POST PUT DELETE OPTIONS PATCH HEAD"`
	URL                string  `json:"url" validate:"required,url"`
	Params             any     `json:"params,omitempty"`
	Body               any     `json:"body,omitempty"`
	Headers            any     `json:"headers,omitempty"`
	HTTPCode           *int64  `json:"http_code" validate:"required"`
	ResponseIdentifier *string `json:"response_identifier,omitempty"`
}

// Actor identifies who performed the action. AdditionalInfo follows the
// same free-form object rules as ActionDetails.
type Actor struct {
	Type           string    `json:"type" validate:"required"`
	User           *ActorRef `json:"user,omitempty"`
	Entity         *ActorRef `json:"entity,omitempty"`
	AdditionalInfo any       `json:"additional_info,omitempty"`
}

// ActorRef wraps a single identifier so empty refs canonicalize to null.
type ActorRef struct {
	ID *string `json:"id,omitempty"`
}

// FileDetails points at the client code that emitted the event.
type FileDetails struct {
	FileName     string `json:"file_name" validate:"required"`
	FunctionName string `json:"function_name" validate:"required"`
}

// APIResponse carries the upstream response on failures.
// HTTPErrorResponse accepts either a string or an object on input;
// objects are serialized to a string before validation.
type APIResponse struct {
	HTTPStatusCode    *int64 `json:"http_status_code" validate:"required"`
	HTTPErrorResponse any    `json:"http_error_response,omitempty"`
}

// TableName derives the deterministic analytics table name for a
// (service, region) pair.
func TableName(service, region string) string {
	return fmt.Sprintf("%s-%s", service, region)
}
