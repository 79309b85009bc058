package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/loglens-io/loglens/internal/core/storage"
)

var _ storage.EventWriter = (*Adapter)(nil)

// InsertEvent performs a single-row append of a canonical event.
// Precondition: dataset and table are provisioned.
func (a *Adapter) InsertEvent(ctx context.Context, dataset, table string, evt *v1.LogEvent) error {
	browserJSON, err := json.Marshal(evt.Browser)
	if err != nil {
		return fmt.Errorf("failed to marshal browser: %w", err)
	}
	actionJSON, err := json.Marshal(evt.Action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	actorJSON, err := json.Marshal(evt.Actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}
	fileDetailsJSON, err := marshalOptionalRecord(evt.FileDetails != nil, evt.FileDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal file_details: %w", err)
	}
	apiResponseJSON, err := marshalOptionalRecord(evt.APIResponse != nil, evt.APIResponse)
	if err != nil {
		return fmt.Errorf("failed to marshal api_response: %w", err)
	}

	_, err = a.db.ExecContext(ctx, insertEventQuery(dataset, table),
		evt.LogID,
		evt.EventName,
		evt.Service,
		evt.Region,
		evt.SourceIdentifier,
		evt.Status != nil && *evt.Status,
		browserJSON,
		actionJSON,
		actorJSON,
		fileDetailsJSON,
		apiResponseJSON,
		nullableString(evt.DescriptiveInfo),
		evt.LogSeverity,
		derefInt64(evt.TimeInMsec),
		derefInt64(evt.TimeOutMsec),
		evt.TimeAPIDelay,
		evt.TimestampSec,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	slog.Debug("[Postgres] Inserted event",
		"dataset", dataset,
		"table", table,
		"log_id", evt.LogID,
		"event_name", evt.EventName)
	return nil
}

// GetEventByID fetches the full stored event by its unique identifier.
func (a *Adapter) GetEventByID(ctx context.Context, dataset, table, logID string) (*v1.LogEvent, error) {
	row := a.db.QueryRowContext(ctx, getEventQuery(dataset, table), logID)

	var (
		evt             v1.LogEvent
		status          bool
		browserJSON     []byte
		actionJSON      []byte
		actorJSON       []byte
		fileDetailsJSON []byte
		apiResponseJSON []byte
		descriptiveInfo sql.NullString
		timeIn          int64
		timeOut         int64
		ts              time.Time
	)

	err := row.Scan(
		&evt.LogID,
		&evt.EventName,
		&evt.Service,
		&evt.Region,
		&evt.SourceIdentifier,
		&status,
		&browserJSON,
		&actionJSON,
		&actorJSON,
		&fileDetailsJSON,
		&apiResponseJSON,
		&descriptiveInfo,
		&evt.LogSeverity,
		&timeIn,
		&timeOut,
		&evt.TimeAPIDelay,
		&ts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}

	evt.Status = &status
	evt.TimeInMsec = &timeIn
	evt.TimeOutMsec = &timeOut
	evt.TimestampSec = ts.Unix()
	if descriptiveInfo.Valid {
		evt.DescriptiveInfo = &descriptiveInfo.String
	}

	if err := json.Unmarshal(browserJSON, &evt.Browser); err != nil {
		return nil, fmt.Errorf("failed to unmarshal browser: %w", err)
	}
	if err := json.Unmarshal(actionJSON, &evt.Action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action: %w", err)
	}
	if err := json.Unmarshal(actorJSON, &evt.Actor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	if len(fileDetailsJSON) > 0 {
		if err := json.Unmarshal(fileDetailsJSON, &evt.FileDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file_details: %w", err)
		}
	}
	if len(apiResponseJSON) > 0 {
		if err := json.Unmarshal(apiResponseJSON, &evt.APIResponse); err != nil {
			return nil, fmt.Errorf("failed to unmarshal api_response: %w", err)
		}
	}

	return &evt, nil
}

func insertEventQuery(dataset, table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (
			log_id, event_name, service, region, source_identifier, status,
			browser, action, actor, file_details, api_response,
			descriptive_info, log_severity,
			time_in_msec, time_out_msec, time_api_delay, "timestamp"
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, to_timestamp($17))
	`, qualifiedTable(dataset, table))
}

func getEventQuery(dataset, table string) string {
	return fmt.Sprintf(`
		SELECT
			log_id, event_name, service, region, source_identifier, status,
			browser, action, actor, file_details, api_response,
			descriptive_info, log_severity,
			time_in_msec, time_out_msec, time_api_delay, "timestamp"
		FROM %s
		WHERE log_id = $1
	`, qualifiedTable(dataset, table))
}

// marshalOptionalRecord returns SQL NULL (nil) for absent optional
// records rather than the JSON string "null".
func marshalOptionalRecord(present bool, v any) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
