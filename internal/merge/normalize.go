package merge

import (
	"blockcal/internal/ics"
	appLog "blockcal/internal/log"
	"blockcal/internal/model"
)

// identityStampLayout is the millisecond UTC layout used for UID-less
// fallback identities. It must not change between releases: clients that
// already imported the merged calendar match entries by UID.
const identityStampLayout = "2006-01-02T15:04:05.000Z"

// Normalize maps one raw component plus its channel name into at most one
// BlockedRange.
//
// Components that are not timed events, or whose start/end stamps do not
// parse, produce nothing; a single malformed entry in an otherwise valid
// feed is not an error. Start is never compared against end: some feeds
// express zero-length or exclusive ranges with end <= start and reordering
// them would corrupt the output.
func Normalize(channel string, rc ics.RawComponent) (model.BlockedRange, bool) {
	if rc.Kind != ics.KindEvent {
		return model.BlockedRange{}, false
	}

	start, ok := ics.ParseStamp(rc.DTStart)
	if !ok {
		return model.BlockedRange{}, false
	}
	end, ok := ics.ParseStamp(rc.DTEnd)
	if !ok {
		return model.BlockedRange{}, false
	}

	identity := channel + ":"
	if rc.UID != "" {
		identity += rc.UID
	} else {
		// Deterministic fallback: repeated runs against an unchanged feed
		// produce the same identity.
		identity += start.Format(identityStampLayout) + "-" + end.Format(identityStampLayout)
	}

	return model.BlockedRange{
		Start:    start,
		End:      end,
		AllDay:   rc.DateOnly,
		Identity: identity,
	}, true
}

// NormalizeAll normalizes a feed's components in order, dropping anything
// Normalize rejects.
func NormalizeAll(channel string, comps []ics.RawComponent) []model.BlockedRange {
	out := make([]model.BlockedRange, 0, len(comps))
	dropped := 0
	for _, rc := range comps {
		br, ok := Normalize(channel, rc)
		if !ok {
			dropped++
			continue
		}
		out = append(out, br)
	}
	if dropped > 0 {
		appLog.Debug("normalize dropped components", "channel", channel, "dropped", dropped, "kept", len(out))
	}
	return out
}
