package teamevents

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func icsFixture(lines ...string) []byte {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func TestParseCalendar_SingleEvent(t *testing.T) {
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-1",
		"SUMMARY:Town hall",
		"DTSTART:20260910T100000Z",
		"DTEND:20260910T110000Z",
		"END:VEVENT",
	)

	events, err := parseCalendar(body)
	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		ev := events[0]
		assert.Equal(t, "Town hall", ev.Summary)
		assert.Equal(t, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC), ev.Start.UTC())
		assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
		assert.False(t, ev.AllDay)
		assert.Empty(t, ev.RawRRule)
	}
}

func TestParseCalendar_AllDayAndRRule(t *testing.T) {
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-2",
		"SUMMARY:Company day",
		"DTSTART;VALUE=DATE:20260915",
		"DTEND;VALUE=DATE:20260916",
		"RRULE:FREQ=YEARLY",
		"END:VEVENT",
	)

	events, err := parseCalendar(body)
	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		assert.True(t, events[0].AllDay)
		assert.Equal(t, "FREQ=YEARLY", events[0].RawRRule)
	}
}

func TestParseCalendar_AttendeePartstatFilter(t *testing.T) {
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-3",
		"SUMMARY:Planning",
		"DTSTART:20260910T100000Z",
		"DTEND:20260910T110000Z",
		"ATTENDEE;CN=Alice;PARTSTAT=ACCEPTED:mailto:alice@example.com",
		"ATTENDEE;PARTSTAT=DECLINED:mailto:bob@example.com",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION:mailto:carol@example.com",
		"ATTENDEE:mailto:dave@example.com",
		"END:VEVENT",
	)

	events, err := parseCalendar(body)
	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		// accepted keeps CN, declined and undecided drop out, no
		// PARTSTAT at all counts as attending
		assert.Equal(t, []string{"Alice", "dave@example.com"}, events[0].Attendees)
	}
}

func TestParseCalendar_ExDates(t *testing.T) {
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:ev-4",
		"SUMMARY:Standup",
		"DTSTART:20260901T090000Z",
		"DTEND:20260901T091500Z",
		"RRULE:FREQ=DAILY",
		"EXDATE:20260902T090000Z,20260903T090000Z",
		"END:VEVENT",
	)

	events, err := parseCalendar(body)
	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		assert.Len(t, events[0].ExDates, 2)
		assert.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), events[0].ExDates[0].UTC())
	}
}

func TestParseCalendar_SkipsMalformedEvent(t *testing.T) {
	body := icsFixture(
		"BEGIN:VEVENT",
		"UID:broken",
		"SUMMARY:No start",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok",
		"SUMMARY:Fine",
		"DTSTART:20260910T100000Z",
		"DTEND:20260910T110000Z",
		"END:VEVENT",
	)

	events, err := parseCalendar(body)
	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "Fine", events[0].Summary)
	}
}

func TestParseCalendar_EmptyBody(t *testing.T) {
	_, err := parseCalendar(nil)
	assert.Error(t, err)
}

func TestParseICSTime(t *testing.T) {
	got, err := parseICSTime("20260902T090000Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), got)

	got, err = parseICSTime("20260902")
	assert.NoError(t, err)
	assert.Equal(t, 2, got.Day())

	_, err = parseICSTime("")
	assert.Error(t, err)
}
