package ics

import (
	"strings"
	"time"
)

// ParseStamp parses a raw ICS date/date-time value into a UTC time.Time.
// It accepts the three forms reservation exports actually use:
//
//   - UTC date-time:      20250101T090000Z
//   - floating date-time: 20250101T090000
//   - date only:          20250101
//
// Floating and date-only values are interpreted in UTC, not the host zone,
// so identities derived from these stamps are stable across machines.
// The second return value is false for empty or malformed input.
func ParseStamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}

	var (
		t   time.Time
		err error
	)
	switch {
	case strings.HasSuffix(v, "Z"):
		t, err = time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		t, err = time.ParseInLocation("20060102T150405", v, time.UTC)
	default:
		t, err = time.ParseInLocation("20060102", v, time.UTC)
	}
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC(), true
}
