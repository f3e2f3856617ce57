package recurrence

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvent(t *testing.T, lines ...string) *ical.Component {
	t.Helper()

	body := strings.Join(append(append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//Test//EN",
		"BEGIN:VEVENT",
		"UID:series@example.com",
		"DTSTAMP:20250101T000000Z",
	}, lines...), "END:VEVENT", "END:VCALENDAR"), "\r\n") + "\r\n"

	cal, err := ical.NewDecoder(strings.NewReader(body)).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	return events[0].Component
}

func TestRuleFromComponent(t *testing.T) {
	t.Run("timed event with exceptions", func(t *testing.T) {
		comp := decodeEvent(t,
			"SUMMARY:Standup",
			"DTSTART;TZID=Europe/Berlin:20250106T093000",
			"RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR;UNTIL=20250131T235959Z",
			"EXDATE;TZID=Europe/Berlin:20250108T093000,20250110T093000",
			"EXDATE;VALUE=DATE:20250115",
		)

		rule, err := RuleFromComponent(comp)
		require.NoError(t, err)
		assert.Equal(t, Rule{
			Frequency:     Weekly,
			Interval:      1,
			StartDate:     "2025-01-06",
			EndDate:       mo.Some("2025-01-31"),
			DaysOfWeek:    []int{1, 3, 5},
			ExcludedDates: []string{"2025-01-08", "2025-01-10", "2025-01-15"},
		}, rule)

		assert.Equal(t, []string{
			"2025-01-06", "2025-01-13", "2025-01-17", "2025-01-20", "2025-01-22",
			"2025-01-24", "2025-01-27", "2025-01-29", "2025-01-31",
		}, Expand(rule, NewWindow("2025-01-01", "2025-03-31")))
	})

	t.Run("all-day event", func(t *testing.T) {
		comp := decodeEvent(t,
			"DTSTART;VALUE=DATE:20240229",
			"RRULE:FREQ=YEARLY;COUNT=3",
		)

		rule, err := RuleFromComponent(comp)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-02-29", "2025-02-28", "2026-02-28"},
			Expand(rule, NewWindow("2024-01-01", "2030-12-31")))
	})

	t.Run("no recurrence", func(t *testing.T) {
		comp := decodeEvent(t, "DTSTART;VALUE=DATE:20250101")
		_, err := RuleFromComponent(comp)
		assert.ErrorIs(t, err, ErrUnsupportedRule)
	})

	t.Run("extra dates", func(t *testing.T) {
		comp := decodeEvent(t,
			"DTSTART;VALUE=DATE:20250101",
			"RRULE:FREQ=DAILY",
			"RDATE;VALUE=DATE:20250301",
		)
		_, err := RuleFromComponent(comp)
		assert.ErrorIs(t, err, ErrUnsupportedRule)
	})

	t.Run("unsupported RRULE", func(t *testing.T) {
		comp := decodeEvent(t,
			"DTSTART;VALUE=DATE:20250101",
			"RRULE:FREQ=MONTHLY;BYDAY=-1FR",
		)
		_, err := RuleFromComponent(comp)
		assert.ErrorIs(t, err, ErrUnsupportedRule)
	})

	t.Run("missing start", func(t *testing.T) {
		comp := ical.NewComponent(ical.CompEvent)
		_, err := RuleFromComponent(comp)
		assert.ErrorIs(t, err, ErrUnsupportedRule)
	})

	t.Run("malformed start", func(t *testing.T) {
		comp := decodeEvent(t,
			"DTSTART;VALUE=DATE:2025",
			"RRULE:FREQ=DAILY",
		)
		_, err := RuleFromComponent(comp)
		var dateErr *DateError
		require.True(t, errors.As(err, &dateErr))
		assert.Equal(t, FieldStartDate, dateErr.Field)
	})
}

func TestOccurrenceCalendar(t *testing.T) {
	dates := []string{"2025-01-31", "2025-02-28"}

	cal, err := OccurrenceCalendar("Rent", dates)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
	out := buf.String()
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250131")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250301")

	decoded, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)
	events := decoded.Events()
	require.Len(t, events, 2)

	uids := make([]string, 0, len(events))
	for i, event := range events {
		summary, err := event.Props.Text(ical.PropSummary)
		require.NoError(t, err)
		assert.Equal(t, "Rent", summary)

		start := event.Props.Get(ical.PropDateTimeStart)
		require.NotNil(t, start)
		assert.Equal(t, strings.ReplaceAll(dates[i], "-", ""), start.Value)

		uid, err := event.Props.Text(ical.PropUID)
		require.NoError(t, err)
		uids = append(uids, uid)
	}
	assert.NotEqual(t, uids[0], uids[1])

	t.Run("UIDs are stable", func(t *testing.T) {
		again, err := OccurrenceCalendar("Rent", dates[:1])
		require.NoError(t, err)
		uid, err := again.Events()[0].Props.Text(ical.PropUID)
		require.NoError(t, err)
		assert.Equal(t, uids[0], uid)

		other, err := OccurrenceCalendar("Insurance", dates[:1])
		require.NoError(t, err)
		uid, err = other.Events()[0].Props.Text(ical.PropUID)
		require.NoError(t, err)
		assert.NotEqual(t, uids[0], uid)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		_, err := OccurrenceCalendar("Rent", []string{"2025/02/28"})
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})

	t.Run("rolls overlong days forward", func(t *testing.T) {
		cal, err := OccurrenceCalendar("Rent", []string{"2025-02-30"})
		require.NoError(t, err)
		event := cal.Events()[0]
		assert.Equal(t, "20250302", event.Props.Get(ical.PropDateTimeStart).Value)
		assert.Equal(t, "20250303", event.Props.Get(ical.PropDateTimeEnd).Value)
	})
}

func TestSeriesEvent(t *testing.T) {
	rule := Rule{
		Frequency:     Weekly,
		Interval:      1,
		StartDate:     "2025-01-06",
		DaysOfWeek:    []int{1, 3, 5},
		ExcludedDates: []string{"2025-01-08", "2025-1-10", "2025-02-30"},
	}

	event, err := SeriesEvent(rule, "Standup")
	require.NoError(t, err)

	rruleProp := event.Props.Get(ical.PropRecurrenceRule)
	require.NotNil(t, rruleProp)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR", rruleProp.Value)

	start := event.Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, start)
	assert.Equal(t, "20250106", start.Value)
	assert.Equal(t, []string{"DATE"}, start.Params["VALUE"])

	exdates := event.Props[ical.PropExceptionDates]
	require.Len(t, exdates, 1, "non-canonical exclusions are dropped")
	assert.Equal(t, "20250108", exdates[0].Value)

	parsed, err := RuleFromComponent(event.Component)
	require.NoError(t, err)
	assert.Equal(t, Expand(rule, NewWindow("2025-01-01", "2025-02-28")),
		Expand(parsed, NewWindow("2025-01-01", "2025-02-28")))

	t.Run("calendar encodes", func(t *testing.T) {
		cal, err := SeriesCalendar(rule, "Standup")
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
		assert.Contains(t, buf.String(), "RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR")
		assert.Contains(t, buf.String(), "EXDATE;VALUE=DATE:20250108")
	})

	t.Run("unsupported rule", func(t *testing.T) {
		_, err := SeriesEvent(Rule{Frequency: "hourly", StartDate: "2025-01-01"}, "")
		assert.ErrorIs(t, err, ErrUnsupportedRule)
	})

	t.Run("malformed start", func(t *testing.T) {
		_, err := SeriesEvent(Rule{Frequency: Daily, StartDate: "soon"}, "")
		assert.ErrorIs(t, err, ErrInvalidDateFormat)

		_, err = SeriesEvent(Rule{Frequency: Daily, StartDate: "2025-02-31"}, "")
		var dateErr *DateError
		require.ErrorAs(t, err, &dateErr)
		assert.Equal(t, FieldStartDate, dateErr.Field)
	})
}
