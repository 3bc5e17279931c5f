package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/jivetime/jivetime/pkg/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendar(events ...string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//test//EN"}
	for _, e := range events {
		lines = append(lines, "BEGIN:VEVENT", e, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.ReplaceAll(strings.Join(lines, "\n"), "\n", "\r\n")
}

func decode(t *testing.T, loc *time.Location, limit int, events ...string) ([]Entry, []Skipped) {
	t.Helper()
	entries, skipped, err := NewDecoder(loc, limit, time.Hour).Decode(strings.NewReader(calendar(events...)))
	require.NoError(t, err)
	return entries, skipped
}

func TestDecoder_Decode(t *testing.T) {
	cet := time.FixedZone("CET", 3600)

	t.Run("single event", func(t *testing.T) {
		entries, skipped := decode(t, time.UTC, 0,
			"UID:single@test\nSUMMARY:Dentist\nDESCRIPTION:bring card\nDTSTART:20240105T140000Z\nDTEND:20240105T143000Z")

		assert.Empty(t, skipped)
		require.Len(t, entries, 1)
		assert.Equal(t, "single@test", entries[0].Uid)
		assert.Equal(t, "Dentist", entries[0].Title)
		assert.Equal(t, "bring card", entries[0].Description)
		require.Len(t, entries[0].Spans, 1)
		assert.True(t, time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC).Equal(entries[0].Spans[0].Start))
		assert.Equal(t, 30*time.Minute, entries[0].Spans[0].Duration())
	})

	t.Run("weekly rule with an excluded date", func(t *testing.T) {
		entries, skipped := decode(t, time.UTC, 0,
			"UID:weekly@test\nSUMMARY:Standup\nDTSTART:20240101T090000Z\nDTEND:20240101T091500Z\n"+
				"RRULE:FREQ=WEEKLY;COUNT=3;BYDAY=MO\nEXDATE:20240108T090000Z")

		assert.Empty(t, skipped)
		require.Len(t, entries, 1)
		spans := entries[0].Spans
		require.Len(t, spans, 2)
		assert.True(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Equal(spans[0].Start))
		assert.True(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC).Equal(spans[1].Start))
		assert.Equal(t, 15*time.Minute, spans[1].Duration())
	})

	t.Run("all day event in the group timezone", func(t *testing.T) {
		entries, _ := decode(t, cet, 0, "UID:allday@test\nSUMMARY:Holiday\nDTSTART;VALUE=DATE:20240210")

		require.Len(t, entries, 1)
		span := entries[0].Spans[0]
		assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, cet), span.Start)
		assert.Equal(t, time.Date(2024, 2, 11, 0, 0, 0, 0, cet), span.End)
	})

	t.Run("floating time without end uses the default duration", func(t *testing.T) {
		entries, _ := decode(t, cet, 0, "UID:floating@test\nSUMMARY:Lunch\nDTSTART:20240301T120000")

		require.Len(t, entries, 1)
		span := entries[0].Spans[0]
		assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 0, cet).Equal(span.Start))
		assert.Equal(t, time.Hour, span.Duration())
	})

	t.Run("long summaries are truncated and missing ones replaced", func(t *testing.T) {
		entries, _ := decode(t, time.UTC, 0,
			"UID:a@test\nSUMMARY:"+strings.Repeat("x", 40)+"\nDTSTART:20240101T090000Z",
			"UID:b@test\nDTSTART:20240101T100000Z")

		require.Len(t, entries, 2)
		assert.Len(t, entries[0].Title, 32)
		assert.Equal(t, untitled, entries[1].Title)
	})

	t.Run("unusable events are skipped", func(t *testing.T) {
		entries, skipped := decode(t, time.UTC, 10,
			"UID:nostart@test\nSUMMARY:Nothing",
			"UID:forever@test\nSUMMARY:Daily\nDTSTART:20240101T090000Z\nRRULE:FREQ=DAILY",
			"UID:inverted@test\nSUMMARY:Back\nDTSTART:20240101T090000Z\nDTEND:20240101T080000Z",
			"UID:ok@test\nSUMMARY:Fine\nDTSTART:20240101T090000Z\nRRULE:FREQ=DAILY;COUNT=10")

		require.Len(t, entries, 1)
		assert.Equal(t, "ok@test", entries[0].Uid)
		assert.Len(t, entries[0].Spans, 10)
		require.Len(t, skipped, 3)
		assert.Equal(t, "nostart@test", skipped[0].Uid)
		assert.Contains(t, skipped[1].Reason, "more than 10")
		assert.Equal(t, "inverted@test", skipped[2].Uid)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, _, err := NewDecoder(time.UTC, 0, time.Hour).Decode(strings.NewReader("not a calendar"))

		assert.ErrorIs(t, err, ErrInvalidCalendar)
	})
}

func TestNewDecoder_DefaultCap(t *testing.T) {
	assert.Equal(t, recurrence.DefaultMaxOccurrences, NewDecoder(time.UTC, 0, time.Hour).maxOccurrences)
}
