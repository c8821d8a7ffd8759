package merge

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"blockcal/internal/model"
)

const (
	// calendarName is the calendar-level display name of the merged output.
	calendarName = "Reservations (Airbnb + Booking) — Blocked Dates"

	productID = "-//blockcal//blockcal 1.0//EN"

	// blockedSummary is the only label the output ever carries; guest data
	// from the source feeds is never emitted.
	blockedSummary = "Blocked"
)

// Build serializes blocked ranges into one ICS document.
//
// Ranges are emitted in input order, one VEVENT each, always as all-day
// blocks: the output intentionally discards the timed/all-day distinction
// because a booked night blocks the whole day regardless of check-in time.
func Build(ranges []model.BlockedRange) string {
	return BuildAt(ranges, time.Now().UTC())
}

// BuildAt is Build with an explicit DTSTAMP instant, for deterministic
// output in tests.
func BuildAt(ranges []model.BlockedRange, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone("UTC")

	for _, r := range ranges {
		ev := cal.AddEvent(r.Identity)
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(r.Start)
		ev.SetAllDayEndAt(r.End)
		ev.SetSummary(blockedSummary)
		ev.SetDescription("")
		ev.SetLocation("")
	}

	return cal.Serialize()
}
