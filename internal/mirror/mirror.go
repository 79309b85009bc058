// Package mirror forwards accepted events to an operational log sink,
// in addition to the analytic store. Mirror failures never fail the
// ingest that triggered them.
package mirror

import (
	"context"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
)

// Sink receives a copy of every accepted event.
type Sink interface {
	Write(ctx context.Context, evt *v1.LogEvent) error
}
