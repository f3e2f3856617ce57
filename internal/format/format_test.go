package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cyp0633/librecur/internal/xml"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dates = []string{"2025-01-06", "2025-01-08", "2025-01-10"}

func TestParse(t *testing.T) {
	for _, name := range []string{"text", "json", "XML", " ics "} {
		f, err := Parse(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, f.ContentType())
	}

	_, err := Parse("csv")
	assert.Error(t, err)
}

func TestFromAccept(t *testing.T) {
	tests := []struct {
		accept string
		want   Format
	}{
		{"", JSON},
		{"*/*", JSON},
		{"application/json", JSON},
		{"application/xml", XML},
		{"text/xml; charset=utf-8", XML},
		{"text/calendar", ICS},
		{"text/plain", Text},
		{"text/html, application/xml;q=0.9, */*;q=0.8", XML},
		{"image/png", JSON},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAccept(tt.accept))
		})
	}
}

func TestFromMediaType(t *testing.T) {
	f, ok := FromMediaType("application/json; charset=utf-8")
	assert.True(t, ok)
	assert.Equal(t, JSON, f)

	_, ok = FromMediaType("application/x-www-form-urlencoded")
	assert.False(t, ok)

	_, ok = FromMediaType(";;")
	assert.False(t, ok)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, dates, Options{}))
	assert.Equal(t, "2025-01-06\n2025-01-08\n2025-01-10\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, Text, nil, Options{}))
	assert.Empty(t, buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, nil, Options{}))
	assert.JSONEq(t, `{"dates":[]}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, JSON, dates, Options{}))
	var result recurrence.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, dates, result.Dates)
}

func TestWrite_XML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XML, dates, Options{}))

	doc, err := xml.ReadDocument(buf.Bytes())
	require.NoError(t, err)
	var resp xml.OccurrencesResponse
	require.NoError(t, resp.Parse(doc))
	assert.Equal(t, dates, resp.Dates)
}

func TestWrite_ICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ICS, dates, Options{Summary: "Gym"}))
	assert.True(t, strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR"))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, len(dates))
	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Gym", summary)
}

func TestWrite_Unknown(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("csv"), dates, Options{}))
}

func TestWriteSeries(t *testing.T) {
	rule := recurrence.Rule{
		Frequency:  recurrence.Weekly,
		Interval:   2,
		StartDate:  "2025-01-06",
		DaysOfWeek: []int{1, 4},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, rule, "Gym"))
	assert.Contains(t, buf.String(), "RRULE:FREQ=WEEKLY;INTERVAL=2;WKST=SU;BYDAY=MO,TH")

	assert.ErrorIs(t, WriteSeries(&buf, recurrence.Rule{Frequency: "hourly", StartDate: "2025-01-06"}, ""),
		recurrence.ErrUnsupportedRule)
}
