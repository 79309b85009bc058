package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/loglens-io/loglens/internal/core/storage"
)

// reportRowLimit caps the latency ranking output.
const reportRowLimit = 10000

var _ storage.ReportStore = (*Adapter)(nil)

// LatenciesByEvent ranks one day's successful events by latency.
//
// The query partitions by event_name, computes the windowed min/avg/max
// of time_api_delay per partition, and keeps the single highest-latency
// row of each partition (ties broken by the store's row order). Output
// is sorted by max latency descending, capped at reportRowLimit rows.
func (a *Adapter) LatenciesByEvent(ctx context.Context, dataset, table string, day time.Time) ([]storage.LatencyRow, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if day.IsZero() {
		rows, err = a.db.QueryContext(ctx, latenciesQuery(dataset, table, false))
	} else {
		rows, err = a.db.QueryContext(ctx, latenciesQuery(dataset, table, true), day.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latencies: %w", err)
	}
	defer rows.Close()

	var results []storage.LatencyRow
	for rows.Next() {
		var (
			row    storage.LatencyRow
			userIP sql.NullString
		)
		if err := rows.Scan(
			&row.EventName,
			&row.MaxLatencyMs,
			&row.AvgLatencyMs,
			&row.MinLatencyMs,
			&row.Timestamp,
			&userIP,
			&row.LogID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan latency row: %w", err)
		}
		row.UserIP = userIP.String
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latency rows: %w", err)
	}

	if len(results) == 0 {
		return nil, storage.ErrNoData
	}

	slog.Debug("[Postgres] Latency ranking computed",
		"dataset", dataset, "table", table, "rows", len(results))
	return results, nil
}

// latenciesQuery builds the windowed ranking statement. A zero report
// day uses the store's current date.
func latenciesQuery(dataset, table string, withDate bool) string {
	dateFilter := "CURRENT_DATE"
	if withDate {
		dateFilter = "$1::date"
	}

	return fmt.Sprintf(`
		WITH ranked_events AS (
			SELECT
				event_name,
				time_api_delay,
				"timestamp",
				browser->>'userip' AS userip,
				log_id,
				ROW_NUMBER() OVER (
					PARTITION BY event_name
					ORDER BY time_api_delay DESC
				) AS rnk,
				MIN(time_api_delay) OVER (PARTITION BY event_name) AS min_latency_msecs,
				AVG(time_api_delay) OVER (PARTITION BY event_name) AS avg_latency_msecs,
				MAX(time_api_delay) OVER (PARTITION BY event_name) AS max_latency_msecs
			FROM %s
			WHERE status = true
			  AND ("timestamp")::date = %s
		)
		SELECT
			event_name,
			max_latency_msecs,
			avg_latency_msecs,
			min_latency_msecs,
			"timestamp",
			userip,
			log_id
		FROM ranked_events
		WHERE rnk = 1
		ORDER BY max_latency_msecs DESC
		LIMIT %d
	`, qualifiedTable(dataset, table), dateFilter, reportRowLimit)
}
