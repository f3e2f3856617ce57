// Package format renders occurrence lists for the command line and the HTTP service.
package format

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/cyp0633/librecur/internal/xml"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/emersion/go-ical"
)

// Format is an output representation of an occurrence list
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	XML  Format = "xml"
	ICS  Format = "ics"
)

var contentTypes = map[Format]string{
	Text: "text/plain; charset=utf-8",
	JSON: "application/json",
	XML:  "application/xml; charset=utf-8",
	ICS:  "text/calendar; charset=utf-8",
}

var mediaTypes = map[string]Format{
	"text/plain":       Text,
	"application/json": JSON,
	"application/xml":  XML,
	"text/xml":         XML,
	"text/calendar":    ICS,
}

// Parse returns the format called name
func Parse(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("unknown format %q (want text, json, xml or ics)", name)
	}
	return f, nil
}

// ContentType returns the MIME type to send f with
func (f Format) ContentType() string {
	return contentTypes[f]
}

// FromMediaType maps a Content-Type or single Accept entry to a format
func FromMediaType(value string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return "", false
	}
	f, ok := mediaTypes[mediaType]
	return f, ok
}

// FromAccept picks the first supported type listed in an Accept header.
// Quality values are not weighed. JSON is the fallback.
func FromAccept(accept string) Format {
	for _, entry := range strings.Split(accept, ",") {
		if f, ok := FromMediaType(strings.TrimSpace(entry)); ok {
			return f
		}
	}
	return JSON
}

// Options tune rendering
type Options struct {
	// Summary names the events of iCalendar output
	Summary string
}

// Write renders dates to w in format f
func Write(w io.Writer, f Format, dates []string, opts Options) error {
	if dates == nil {
		dates = []string{}
	}

	switch f {
	case Text:
		bw := bufio.NewWriter(w)
		for _, date := range dates {
			if _, err := fmt.Fprintln(bw, date); err != nil {
				return err
			}
		}
		return bw.Flush()
	case JSON:
		return json.NewEncoder(w).Encode(recurrence.Result{Dates: dates})
	case XML:
		resp := xml.OccurrencesResponse{Dates: dates}
		doc := resp.ToXML()
		doc.Indent(2)
		_, err := doc.WriteTo(w)
		return err
	case ICS:
		cal, err := recurrence.OccurrenceCalendar(opts.Summary, dates)
		if err != nil {
			return err
		}
		return encodeCalendar(w, cal)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteSeries renders rule itself, rather than its occurrences, as a
// VCALENDAR holding one recurring event
func WriteSeries(w io.Writer, rule recurrence.Rule, summary string) error {
	cal, err := recurrence.SeriesCalendar(rule, summary)
	if err != nil {
		return err
	}
	return encodeCalendar(w, cal)
}

func encodeCalendar(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
