package util

import "time"

// DateLayout is the ISO calendar-day layout used for daily bars.
const DateLayout = "2006-01-02"

// FormatDate renders t as an ISO calendar day in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// UnixDate renders a unix-seconds timestamp as an ISO calendar day in UTC.
func UnixDate(sec int64) string {
	return FormatDate(time.Unix(sec, 0))
}

// EpochMillis normalizes a provider timestamp to epoch milliseconds. Values that
// already look like milliseconds are returned as is.
func EpochMillis(ts int64) int64 {
	// 1e11 seconds is year 5138, so anything larger is already in milliseconds.
	if ts > 1e11 || ts < -1e11 {
		return ts
	}
	return ts * 1000
}
