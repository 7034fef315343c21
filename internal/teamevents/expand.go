package teamevents

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps runaway recurrence rules.
const maxOccurrencesPerEvent = 1000

// expandEvents turns parsed VEVENTs into concrete occurrences inside
// [from, to), sorted by start time ascending.
func expandEvents(events []parsedEvent, from, to time.Time) []TeamEvent {
	out := make([]TeamEvent, 0, len(events))

	for _, ev := range events {
		if ev.RawRRule == "" {
			if overlaps(ev.Start, ev.End, from, to) {
				out = append(out, makeOccurrence(ev, ev.Start, ev.End))
			}
			continue
		}
		out = append(out, expandRecurring(ev, from, to)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].Name < out[j].Name
		}
		return out[i].Start.Before(out[j].Start)
	})

	return out
}

func expandRecurring(ev parsedEvent, from, to time.Time) []TeamEvent {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	occTimes := set.Between(from.In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		occTimes = occTimes[:maxOccurrencesPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]TeamEvent, 0, len(occTimes))
	for _, occStart := range occTimes {
		// the window is half-open, an occurrence exactly at to is out
		if !occStart.Before(to) {
			continue
		}
		occEnd := occStart.Add(dur)
		if ev.AllDay {
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(24 * time.Hour)
		}
		out = append(out, makeOccurrence(ev, occStart, occEnd))
	}

	return out
}

func makeOccurrence(ev parsedEvent, start, end time.Time) TeamEvent {
	attendees := ev.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return TeamEvent{
		Name:      ev.Summary,
		Start:     start,
		End:       end,
		Attendees: attendees,
	}
}

// overlaps reports whether [aStart, aEnd) intersects the half-open window
// [bStart, bEnd). A zero-length event counts as the instant aStart.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
