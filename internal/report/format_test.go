package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		ms   decimal.Decimal
		want string
	}{
		{name: "plain milliseconds", ms: decimal.NewFromInt(200), want: "200.00ms"},
		{name: "fractional average", ms: decimal.RequireFromString("156.6667"), want: "156.67ms"},
		{name: "seconds and milliseconds", ms: decimal.NewFromInt(3004), want: "3s 4.00ms"},
		{name: "full span", ms: decimal.NewFromInt(3723004), want: "1h 2m 3s 4.00ms"},
		{name: "exact minute omits other units", ms: decimal.NewFromInt(60000), want: "1m"},
		{name: "zero renders empty", ms: decimal.Zero, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatMilliseconds(tc.ms))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2023, 6, 30, 8, 36, 40, 0, time.UTC)
	require.Equal(t, "30-06-2023 08:36:40 UTC", FormatTimestamp(ts))

	// Non-UTC inputs are rendered in UTC.
	offset := time.FixedZone("UTC+7", 7*3600)
	require.Equal(t, "30-06-2023 08:36:40 UTC",
		FormatTimestamp(time.Date(2023, 6, 30, 15, 36, 40, 0, offset)))
}

func TestLookupURL(t *testing.T) {
	got := lookupURL("https://loglens.example.com", "log-1", "portal", "asia-southeast1")
	require.Equal(t,
		"https://loglens.example.com/v1/logs/entry?log_id=log-1&service=portal&region=asia-southeast1",
		got)
}
