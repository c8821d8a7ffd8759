package ics

import (
	"testing"
	"time"
)

func TestParseStampUTCDateTime(t *testing.T) {
	got, ok := ParseStamp("20250101T090000Z")
	if !ok {
		t.Fatalf("expected ok for UTC date-time")
	}
	want := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseStampFloatingDateTimeIsUTC(t *testing.T) {
	got, ok := ParseStamp("20250101T090000")
	if !ok {
		t.Fatalf("expected ok for floating date-time")
	}
	// Floating values are pinned to UTC so identities do not depend on the
	// host timezone.
	want := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestParseStampDateOnly(t *testing.T) {
	got, ok := ParseStamp("20240710")
	if !ok {
		t.Fatalf("expected ok for date-only")
	}
	want := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseStampInvalid(t *testing.T) {
	for _, v := range []string{"", "   ", "not-a-date", "2024-07-10", "20241310", "20240710T", "20240710T256000"} {
		if _, ok := ParseStamp(v); ok {
			t.Errorf("expected parse failure for %q", v)
		}
	}
}

func TestParseStampTrimsWhitespace(t *testing.T) {
	got, ok := ParseStamp("  20240710 ")
	if !ok {
		t.Fatalf("expected ok for padded date-only value")
	}
	if got.Day() != 10 {
		t.Fatalf("unexpected day: %d", got.Day())
	}
}
