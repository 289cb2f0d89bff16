package leave

import (
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a calendar date. Timestamps are accepted and cut to their
// date part so that "2026-03-01T00:00:00Z" and "2026-03-01" agree.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DurationDays counts calendar days from start to end inclusive, minus half a
// day for a half-day leave. A range that ends before it starts has no
// duration.
func DurationDays(start, end time.Time, halfDay bool) float64 {
	diff := end.Sub(start)
	if diff < 0 {
		return 0
	}
	days := math.Ceil(diff.Hours()/24) + 1
	if halfDay {
		days -= 0.5
	}
	return days
}

func DurationDaysFromStrings(start, end string, halfDay bool) float64 {
	s, ok := ParseDate(start)
	if !ok {
		return 0
	}
	e, ok := ParseDate(end)
	if !ok {
		return 0
	}
	return DurationDays(s, e, halfDay)
}

// civilDate returns midnight UTC of t's calendar day in t's own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
