package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/shopspring/decimal"
)

// ErrAlreadyExists is returned by provisioning calls when the dataset or
// table is already present. Callers treat it as success (idempotent create).
var ErrAlreadyExists = errors.New("dataset or table already exists")

// ErrNoData marks a report query that ran fine but matched zero rows.
// Distinct from a query error by contract.
var ErrNoData = errors.New("no data found")

// ErrNotFound is returned by point lookups when no entry matches the id.
var ErrNotFound = errors.New("log entry not found")

// ProvisionStore creates the analytic namespaces on first use.
type ProvisionStore interface {
	// CreateDataset creates the dataset for a deployment environment,
	// carrying the region as its storage location.
	CreateDataset(ctx context.Context, dataset, region string) error

	// CreateTable creates a (service, region)-scoped table with the fixed
	// event schema inside an existing dataset.
	CreateTable(ctx context.Context, dataset, table, region string) error
}

// EventWriter appends one canonical event to a provisioned table.
type EventWriter interface {
	InsertEvent(ctx context.Context, dataset, table string, evt *v1.LogEvent) error
}

// LatencyRow is one partition of the latency ranking: the per-event_name
// window statistics plus the sampled max-latency occurrence.
type LatencyRow struct {
	EventName    string
	MaxLatencyMs int64
	AvgLatencyMs decimal.Decimal
	MinLatencyMs int64
	Timestamp    time.Time
	UserIP       string
	LogID        string
}

// ReportStore serves the analytical read path. Queries are read-only and
// run concurrently with ingestion without coordination.
type ReportStore interface {
	// LatenciesByEvent ranks successful events of one day by latency,
	// one row per event_name, sorted by max latency descending. A zero
	// day means the store's current date. Returns ErrNoData when the
	// query matches nothing.
	LatenciesByEvent(ctx context.Context, dataset, table string, day time.Time) ([]LatencyRow, error)

	// GetEventByID fetches the full stored event, or ErrNotFound.
	GetEventByID(ctx context.Context, dataset, table, logID string) (*v1.LogEvent, error)
}
