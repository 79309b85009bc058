package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	msPerSecond = decimal.NewFromInt(1000)
	msPerMinute = decimal.NewFromInt(1000 * 60)
	msPerHour   = decimal.NewFromInt(1000 * 60 * 60)
)

// FormatMilliseconds renders a latency as "1h 2m 3s 4.00ms", omitting
// zero-valued units. The millisecond remainder keeps two decimals
// since averages are fractional.
func FormatMilliseconds(ms decimal.Decimal) string {
	hours := ms.Div(msPerHour).Floor()
	ms = ms.Mod(msPerHour)

	minutes := ms.Div(msPerMinute).Floor()
	ms = ms.Mod(msPerMinute)

	seconds := ms.Div(msPerSecond).Floor()
	millis := ms.Mod(msPerSecond)

	var parts []string
	if hours.IsPositive() {
		parts = append(parts, hours.String()+"h")
	}
	if minutes.IsPositive() {
		parts = append(parts, minutes.String()+"m")
	}
	if seconds.IsPositive() {
		parts = append(parts, seconds.String()+"s")
	}
	if millis.IsPositive() {
		parts = append(parts, millis.StringFixed(2)+"ms")
	}

	return strings.Join(parts, " ")
}

// FormatTimestamp renders a stored timestamp as
// "DD-MM-YYYY HH:MM:SS UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("02-01-2006 15:04:05") + " UTC"
}

// humanDate is the report date header, e.g. "Fri Jun 30 2023".
func humanDate(t time.Time) string {
	return t.UTC().Format("Mon Jan 02 2006")
}

// lookupURL points the max-lag log reference at the point lookup
// endpoint.
func lookupURL(publicURL, logID, service, region string) string {
	return fmt.Sprintf("%s/v1/logs/entry?log_id=%s&service=%s&region=%s",
		publicURL, logID, service, region)
}
