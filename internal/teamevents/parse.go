package teamevents

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// parsedEvent is the normalized VEVENT shape recurrence expansion works on.
type parsedEvent struct {
	Summary   string
	Start     time.Time
	End       time.Time
	AllDay    bool
	RawRRule  string
	ExDates   []time.Time
	Attendees []string
}

// parseCalendar parses an ICS payload. Attendees are filtered to accepted
// participants where the feed carries participation status; the common
// name is preferred over the raw mailto value.
func parseCalendar(body []byte) ([]parsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]parsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			// Skip the malformed VEVENT, keep the rest of the feed.
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (parsedEvent, error) {
	var out parsedEvent

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// Events without DTEND are treated as zero-length.
		end = start
	}
	out.Start = start
	out.End = end

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		if name, ok := acceptedAttendee(p); ok {
			out.Attendees = append(out.Attendees, name)
		}
	}

	return out, nil
}

// acceptedAttendee returns the display name for an ATTENDEE that has
// accepted (or carries no participation status at all).
func acceptedAttendee(p *ical.IANAProperty) (string, bool) {
	if params := p.ICalParameters; params != nil {
		if ps, ok := params["PARTSTAT"]; ok && len(ps) > 0 && !strings.EqualFold(ps[0], "ACCEPTED") {
			return "", false
		}
		if cn, ok := params["CN"]; ok && len(cn) > 0 && cn[0] != "" {
			return cn[0], true
		}
	}

	return strings.TrimPrefix(p.Value, "mailto:"), true
}

// parseICSTime handles the basic DATE / DATE-TIME / UTC forms used by
// EXDATE values.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
