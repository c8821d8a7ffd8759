package model

import "time"

// BlockedRange is the canonical representation of one reservation as an
// opaque busy interval. It is the only domain entity: guest name,
// description and location never exist on this type, so they cannot leak
// into the published calendar.
//
// A BlockedRange is built once during normalization and never mutated.
type BlockedRange struct {
	// Start / End are the range boundaries in UTC. End is not required to
	// be after Start; feeds are passed through as-is.
	Start time.Time
	End   time.Time

	// AllDay records whether the source marked the range as whole-day
	// dates. The published calendar always renders all-day blocks, but the
	// flag is kept for logging and inspection.
	AllDay bool

	// Identity uniquely identifies the range within one run's output:
	// "<channel>:<uid>" when the source component carried a UID, else
	// "<channel>:<start>-<end>" with millisecond UTC stamps.
	Identity string
}
