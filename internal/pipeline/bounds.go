package pipeline

import (
	"strings"
	"time"
)

// ParseBound parses an RFC 3339 timestamp or a YYYY-MM-DD date in loc.
// A date used as an upper bound covers that whole day, so it resolves to the
// following midnight. Empty or unparsable values return nil (unbounded).
func ParseBound(value string, loc *time.Location, upper bool) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil
	}
	if upper {
		day = day.AddDate(0, 0, 1)
	}
	return &day
}

// DaysBack returns the start of a window covering the last n days before now,
// truncated to the minute. n < 1 returns nil.
func DaysBack(now time.Time, n int) *time.Time {
	if n < 1 {
		return nil
	}
	t := now.Truncate(time.Minute).AddDate(0, 0, -n)
	return &t
}
