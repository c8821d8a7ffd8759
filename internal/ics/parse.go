package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "blockcal/internal/log"
)

// Kind discriminates the raw component union. Only timed events carry the
// fields the normalizer needs; everything else (VTIMEZONE, VTODO, ...) is
// tagged KindOther and filtered downstream.
type Kind int

const (
	KindOther Kind = iota
	KindEvent
)

// RawComponent is one top-level component of a parsed ICS document. For
// KindEvent components the DTStart/DTEnd fields hold the raw property values
// exactly as they appeared on the wire; timestamp validation happens in the
// normalizer, not here.
type RawComponent struct {
	Kind Kind

	// UID may be empty; reservation exports do not always set one.
	UID string

	// DTStart / DTEnd are raw ICS stamp values (e.g. "20240601" or
	// "20240601T120000Z").
	DTStart string
	DTEnd   string

	// DateOnly is true when DTSTART carries VALUE=DATE or its value has no
	// time-of-day part.
	DateOnly bool
}

// Parse decodes an ICS payload into a list of RawComponent, one per
// top-level component, preserving document order. A malformed document is an
// error; an individual component is never an error here.
func Parse(src Source, body []byte) ([]RawComponent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "channel", src.Name, "url", redactURL(src.URL))
		return nil, err
	}

	comps := make([]RawComponent, 0, len(cal.Components))
	events := 0
	for _, c := range cal.Components {
		ve, ok := c.(*ical.VEvent)
		if !ok {
			comps = append(comps, RawComponent{Kind: KindOther})
			continue
		}
		comps = append(comps, rawEvent(ve))
		events++
	}

	appLog.Info("ics parse completed",
		"channel", src.Name,
		"url", redactURL(src.URL),
		"component_count", len(comps),
		"event_count", events,
	)
	return comps, nil
}

func rawEvent(ve *ical.VEvent) RawComponent {
	out := RawComponent{Kind: KindEvent}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		out.DTStart = p.Value
		// VALUE=DATE or no 'T' in the value means a whole-day date.
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.DateOnly = true
			}
		}
		if !strings.Contains(p.Value, "T") {
			out.DateOnly = true
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		out.DTEnd = p.Value
	}

	return out
}
