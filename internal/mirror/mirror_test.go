package mirror

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func TestRedisSink_StreamKey(t *testing.T) {
	sink := NewRedisSinkWithClient(nil, "prod", 0)
	require.Equal(t, "prod_portal", sink.StreamKey("portal"))
	require.Equal(t, "prod_checkout", sink.StreamKey("checkout"))
}

func TestSlogSink_Write(t *testing.T) {
	tests := []struct {
		name      string
		severity  string
		wantLevel string
	}{
		{name: "info events log at info", severity: v1.SeverityInfo, wantLevel: "INFO"},
		{name: "warn events log at warn", severity: v1.SeverityWarn, wantLevel: "WARN"},
		{name: "error events log at error", severity: v1.SeverityError, wantLevel: "ERROR"},
		{name: "fatal events log at error", severity: v1.SeverityFatal, wantLevel: "ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			sink := NewSlogSink(logger)

			err := sink.Write(context.Background(), &v1.LogEvent{
				Service:     "portal",
				EventName:   "LOGIN",
				LogID:       "log-1",
				LogSeverity: tc.severity,
			})
			require.NoError(t, err)

			out := buf.String()
			require.Contains(t, out, "level="+tc.wantLevel)
			require.Contains(t, out, "service=portal")
			require.Contains(t, out, "log_id=log-1")
		})
	}
}
