package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loglens-io/loglens/internal/core/storage"
	"github.com/lib/pq"
)

// Postgres error codes for idempotent-create conflicts.
const (
	pqDuplicateSchema = "42P06"
	pqDuplicateTable  = "42P07"
)

var _ storage.ProvisionStore = (*Adapter)(nil)

// CreateDataset creates the schema backing one deployment environment's
// dataset. Returns storage.ErrAlreadyExists on a duplicate, which
// callers treat as success.
func (a *Adapter) CreateDataset(ctx context.Context, dataset, region string) error {
	query := fmt.Sprintf(`CREATE SCHEMA %s`, pq.QuoteIdentifier(dataset))

	if _, err := a.db.ExecContext(ctx, query); err != nil {
		if isDuplicate(err, pqDuplicateSchema) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create dataset %s: %w", dataset, err)
	}

	slog.Info("[Postgres] Dataset created", "dataset", dataset, "region", region)
	return nil
}

// CreateTable creates a (service, region) table with the fixed event
// schema. The nested records of the canonical event are JSONB columns;
// the region is recorded in the table comment since Postgres has no
// per-table storage location.
func (a *Adapter) CreateTable(ctx context.Context, dataset, table, region string) error {
	if _, err := a.db.ExecContext(ctx, createTableQuery(dataset, table)); err != nil {
		if isDuplicate(err, pqDuplicateTable) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create table %s.%s: %w", dataset, table, err)
	}

	comment := fmt.Sprintf(`COMMENT ON TABLE %s IS 'location=%s'`,
		qualifiedTable(dataset, table), region)
	if _, err := a.db.ExecContext(ctx, comment); err != nil {
		// The table exists and is usable; the location annotation is
		// informational only.
		slog.Warn("[Postgres] Failed to record table location",
			"dataset", dataset, "table", table, "error", err)
	}

	slog.Info("[Postgres] Table created",
		"dataset", dataset, "table", table, "region", region)
	return nil
}

// createTableQuery builds the fixed-schema DDL. Columns correspond 1:1
// to the canonical LogEvent shape.
func createTableQuery(dataset, table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		log_id TEXT NOT NULL PRIMARY KEY,
		event_name TEXT NOT NULL,
		service TEXT NOT NULL,
		region TEXT,
		source_identifier TEXT NOT NULL,
		status BOOLEAN NOT NULL,
		browser JSONB NOT NULL,
		action JSONB NOT NULL,
		actor JSONB NOT NULL,
		file_details JSONB,
		api_response JSONB,
		descriptive_info TEXT,
		log_severity TEXT DEFAULT 'INFO',
		time_in_msec BIGINT NOT NULL,
		time_out_msec BIGINT NOT NULL,
		time_api_delay BIGINT DEFAULT 0,
		"timestamp" TIMESTAMPTZ
	)`, qualifiedTable(dataset, table))
}

func isDuplicate(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
