package merge

import (
	"strings"
	"testing"
	"time"

	"blockcal/internal/model"
)

func testRanges() []model.BlockedRange {
	return []model.BlockedRange{
		{
			Start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			AllDay:   true,
			Identity: "airbnb:X",
		},
		{
			// Timed source range; the output must still render it all-day.
			Start:    time.Date(2024, 7, 10, 15, 30, 0, 0, time.UTC),
			End:      time.Date(2024, 7, 12, 11, 0, 0, 0, time.UTC),
			AllDay:   false,
			Identity: "booking:2024-07-10T00:00:00.000Z-2024-07-12T00:00:00.000Z",
		},
	}
}

func TestBuildEmitsEveryRangeOnce(t *testing.T) {
	out := BuildAt(testRanges(), time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("expected 2 VEVENTs, got %d:\n%s", got, out)
	}
	if strings.Count(out, "UID:airbnb:X\r\n") != 1 {
		t.Errorf("expected exactly one airbnb:X entry:\n%s", out)
	}
	if strings.Count(out, "UID:booking:2024-07-10T00:00:00.000Z-2024-07-12T00:00:00.000Z\r\n") != 1 {
		t.Errorf("expected exactly one booking fallback entry:\n%s", out)
	}
}

func TestBuildAlwaysRendersAllDay(t *testing.T) {
	out := BuildAt(testRanges(), time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	// Both entries are whole-range blocks, including the timed one.
	if got := strings.Count(out, "DTSTART;VALUE=DATE:"); got != 2 {
		t.Fatalf("expected 2 all-day starts, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, "DTEND;VALUE=DATE:"); got != 2 {
		t.Fatalf("expected 2 all-day ends, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20240601\r\n") {
		t.Errorf("missing airbnb start:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART;VALUE=DATE:20240710\r\n") {
		t.Errorf("missing booking start:\n%s", out)
	}
}

func TestBuildStripsGuestData(t *testing.T) {
	out := BuildAt(testRanges(), time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	if got := strings.Count(out, "SUMMARY:Blocked\r\n"); got != 2 {
		t.Fatalf("expected fixed Blocked summary on both entries, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, "DESCRIPTION:\r\n"); got != 2 {
		t.Errorf("expected empty descriptions, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, "LOCATION:\r\n"); got != 2 {
		t.Errorf("expected empty locations, got %d:\n%s", got, out)
	}
}

func TestBuildCalendarHeader(t *testing.T) {
	out := BuildAt(nil, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	if !strings.Contains(out, "X-WR-CALNAME:Reservations (Airbnb + Booking) — Blocked Dates\r\n") {
		t.Errorf("missing calendar name:\n%s", out)
	}
	if !strings.Contains(out, "X-WR-TIMEZONE:UTC\r\n") {
		t.Errorf("missing UTC timezone declaration:\n%s", out)
	}
	if !strings.Contains(out, "METHOD:PUBLISH\r\n") {
		t.Errorf("missing publish method:\n%s", out)
	}
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(out, "END:VCALENDAR\r\n") {
		t.Errorf("unexpected document framing:\n%s", out)
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	out := BuildAt(testRanges(), time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))

	airbnbIdx := strings.Index(out, "UID:airbnb:X")
	bookingIdx := strings.Index(out, "UID:booking:")
	if airbnbIdx < 0 || bookingIdx < 0 {
		t.Fatalf("missing entries:\n%s", out)
	}
	if airbnbIdx > bookingIdx {
		t.Fatalf("expected airbnb entry before booking entry:\n%s", out)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	out := BuildAt(nil, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Fatalf("expected no events:\n%s", out)
	}
}
