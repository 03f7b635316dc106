package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, a bare YYYY-MM-DD date, and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// AlignFromTo rounds the time range to bar boundaries for the timeframe.
func AlignFromTo(from, to time.Time, tf string) (time.Time, time.Time) {
	switch tf {
	case "1w":
		from = StartOfWeek(from)
		to = StartOfWeek(to)
	default: // 1d
		from = from.Truncate(24 * time.Hour)
		to = to.Truncate(24 * time.Hour)
	}
	return from, to
}

// StartOfWeek truncates t to the Monday of its ISO week.
func StartOfWeek(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	return t.AddDate(0, 0, 1-wd)
}
