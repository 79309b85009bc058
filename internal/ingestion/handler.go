package ingestion

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/loglens-io/loglens/internal/alert"
	httperr "github.com/loglens-io/loglens/internal/core/errors"
	"github.com/loglens-io/loglens/internal/metrics"
	"github.com/loglens-io/loglens/internal/schema"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
)

const (
	msgReadBodyFailed     = "Failed to read request body"
	msgInvalidJSON        = "Invalid JSON body"
	msgProvisioningFailed = "Failed to provision storage for event"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles HTTP POST requests for log event ingestion.
//
// Validation and provisioning failures fail the request. Once the
// event's table is known to exist, the analytic insert and the mirror
// write run concurrently and their failures are logged and counted but
// do not fail the request: the caller's acknowledgement means
// "accepted", not "durably stored".
func (s *Service) IngestHandler(c *gin.Context) {
	evt, payloadSize, err := s.parseEvent(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.validateEvent(evt); err != nil {
		metrics.ValidationFailures.WithLabelValues(serviceLabel(evt)).Inc()
		s.notifier.Notify(c.Request.Context(),
			alert.FormatFailure("event validation", serviceLabel(evt), err))
		writeError(c, err)
		return
	}

	s.normalizer.Normalize(evt, c.ClientIP())

	slog.Info("Received Event",
		"log_id", evt.LogID,
		"event_name", evt.EventName,
		"service", evt.Service,
		"region", evt.Region,
		"severity", evt.LogSeverity,
		"payload_size", payloadSize)

	table := v1.TableName(evt.Service, evt.Region)
	if err := s.ensureProvisioned(c.Request.Context(), evt, table); err != nil {
		writeError(c, err)
		return
	}

	s.writeEvent(c.Request.Context(), evt, table)

	metrics.EventsIngested.WithLabelValues(evt.Service).Inc()
	c.JSON(http.StatusOK, gin.H{"response": "logged"})
}

// parseEvent reads the raw request body and binds it into a LogEvent struct.
// Returns the parsed event and the raw payload size (used for structured logging upstream).
func (s *Service) parseEvent(c *gin.Context) (*v1.LogEvent, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var evt v1.LogEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return &evt, len(bodyBytes), nil
}

// validateEvent applies defaults and checks the event against the
// canonical shape. All violations are reported at once.
func (s *Service) validateEvent(evt *v1.LogEvent) *ingestionError {
	err := s.validator.Validate(evt)
	if err == nil {
		return nil
	}

	slog.Warn("Event validation failed",
		"error", err, "event_name", evt.EventName, "service", evt.Service)

	var details interface{}
	if d, ok := err.(schema.ValidationDetailer); ok {
		details = d.Details()
	}

	return &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpValidationError,
		message:    err.Error(),
		details:    details,
	}
}

// ensureProvisioned lazily creates the event's dataset and table.
func (s *Service) ensureProvisioned(ctx context.Context, evt *v1.LogEvent, table string) *ingestionError {
	if err := s.provisioner.EnsureDataset(ctx, s.dataset, evt.Region); err != nil {
		metrics.ProvisioningAttempts.WithLabelValues("dataset", "failure").Inc()
		slog.Error("Failed to provision dataset", "error", err, "dataset", s.dataset)
		s.notifier.Notify(ctx, alert.FormatFailure("dataset provisioning", evt.Service, err))
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpProvisioningError,
			message:    msgProvisioningFailed,
		}
	}
	metrics.ProvisioningAttempts.WithLabelValues("dataset", "success").Inc()

	if err := s.provisioner.EnsureTable(ctx, s.dataset, table, evt.Region); err != nil {
		metrics.ProvisioningAttempts.WithLabelValues("table", "failure").Inc()
		slog.Error("Failed to provision table",
			"error", err, "dataset", s.dataset, "table", table)
		s.notifier.Notify(ctx, alert.FormatFailure("table provisioning", evt.Service, err))
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpProvisioningError,
			message:    msgProvisioningFailed,
		}
	}
	metrics.ProvisioningAttempts.WithLabelValues("table", "success").Inc()

	return nil
}

// writeEvent fans the accepted event out to the analytic store and the
// log mirror. Both writes are best-effort at this point; the event has
// already been accepted.
func (s *Service) writeEvent(ctx context.Context, evt *v1.LogEvent, table string) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := s.writer.InsertEvent(ctx, s.dataset, table, evt); err != nil {
			metrics.WriteFailures.WithLabelValues("store").Inc()
			slog.Error("Failed to insert event",
				"error", err, "log_id", evt.LogID, "table", table)
			s.notifier.Notify(ctx, alert.FormatFailure("event insert", evt.Service, err))
		}
	}()

	go func() {
		defer wg.Done()
		if err := s.mirror.Write(ctx, evt); err != nil {
			metrics.WriteFailures.WithLabelValues("mirror").Inc()
			slog.Error("Failed to mirror event",
				"error", err, "log_id", evt.LogID, "service", evt.Service)
		}
	}()

	wg.Wait()
}

func serviceLabel(evt *v1.LogEvent) string {
	if evt.Service == "" {
		return "unknown"
	}
	return evt.Service
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
