package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyp0633/librecur/caldate"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//librecur//Recurrence Expander//EN"

// uidNamespace seeds the name-based UIDs of generated events
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/cyp0633/librecur"))

// RuleFromComponent extracts a Rule from a VEVENT or VTODO. DTSTART supplies
// the start date and may be a DATE or a DATE-TIME, of which only the date as
// written is used. Every EXDATE property is read, including comma-separated
// lists. RDATE cannot be represented and is rejected.
func RuleFromComponent(comp *ical.Component) (Rule, error) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil || startProp.Value == "" {
		return Rule{}, fmt.Errorf("%w: component has no DTSTART", ErrUnsupportedRule)
	}
	start, err := parseICalDate(startProp.Value)
	if err != nil {
		return Rule{}, &DateError{Field: FieldStartDate, Value: startProp.Value, Err: err}
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		return Rule{}, fmt.Errorf("%w: component has no RRULE", ErrUnsupportedRule)
	}
	if rdate := comp.Props.Get(ical.PropRecurrenceDates); rdate != nil && rdate.Value != "" {
		return Rule{}, fmt.Errorf("%w: RDATE", ErrUnsupportedRule)
	}

	rule, err := ParseRRULE(rruleProp.Value, start.String())
	if err != nil {
		return Rule{}, fmt.Errorf("failed to parse RRULE %q: %w", rruleProp.Value, err)
	}

	for _, prop := range comp.Props[ical.PropExceptionDates] {
		for _, value := range strings.Split(prop.Value, ",") {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			d, err := parseICalDate(value)
			if err != nil {
				return Rule{}, fmt.Errorf("failed to parse EXDATE %q: %w", value, err)
			}
			rule.ExcludedDates = append(rule.ExcludedDates, d.String())
		}
	}

	return rule, nil
}

// parseICalDate reads the leading YYYYMMDD of a DATE or DATE-TIME value
func parseICalDate(value string) (caldate.Date, error) {
	if len(value) < 8 {
		return caldate.Date{}, &caldate.ParseError{Text: value, Reason: "too short for an iCalendar date"}
	}
	t, err := time.Parse("20060102", value[:8])
	if err != nil {
		return caldate.Date{}, &caldate.ParseError{Text: value, Reason: "not an iCalendar date"}
	}
	return caldate.FromTime(t), nil
}

// OccurrenceCalendar builds a VCALENDAR with one all-day VEVENT per date.
// UIDs are derived from the summary and the date, so exporting the same
// series twice yields the same UIDs.
func OccurrenceCalendar(summary string, dates []string) (*ical.Calendar, error) {
	cal := newCalendar()
	stamp := time.Now().UTC()

	for _, text := range dates {
		d, err := caldate.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to export occurrence: %w", err)
		}
		// a start such as 2025-02-31 is emitted as written
		d = d.Normalize()

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, occurrenceUID(summary, d))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		setDateProp(event.Component, ical.PropDateTimeStart, d)
		setDateProp(event.Component, ical.PropDateTimeEnd, d.AddDays(1))
		if summary != "" {
			event.Props.SetText(ical.PropSummary, summary)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

// SeriesEvent describes rule as a single all-day VEVENT carrying an RRULE and
// its EXDATEs. Excluded dates that are not in canonical form could never match
// an occurrence and are left out.
func SeriesEvent(rule Rule, summary string) (*ical.Event, error) {
	start, err := parseStrictField(FieldStartDate, rule.StartDate)
	if err != nil {
		return nil, err
	}
	value, err := rule.RRULE()
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, seriesUID(summary, value, start))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	setDateProp(event.Component, ical.PropDateTimeStart, start)
	if summary != "" {
		event.Props.SetText(ical.PropSummary, summary)
	}

	// SetText would escape the commas in BYDAY lists.
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = value
	event.Props[ical.PropRecurrenceRule] = []ical.Prop{*rruleProp}

	for _, text := range rule.ExcludedDates {
		d, err := caldate.Parse(text)
		if err != nil || !d.Valid() || d.String() != text {
			continue
		}
		event.Props.Add(&ical.Prop{
			Name:   ical.PropExceptionDates,
			Value:  d.Compact(),
			Params: ical.Params{"VALUE": []string{"DATE"}},
		})
	}

	return event, nil
}

// SeriesCalendar wraps SeriesEvent in a VCALENDAR
func SeriesCalendar(rule Rule, summary string) (*ical.Calendar, error) {
	event, err := SeriesEvent(rule, summary)
	if err != nil {
		return nil, err
	}
	cal := newCalendar()
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func setDateProp(comp *ical.Component, name string, d caldate.Date) {
	comp.Props[name] = []ical.Prop{{
		Name:   name,
		Value:  d.Compact(),
		Params: ical.Params{"VALUE": []string{"DATE"}},
	}}
}

func occurrenceUID(summary string, d caldate.Date) string {
	return uuid.NewSHA1(uidNamespace, []byte(summary+"\x00"+d.String())).String()
}

func seriesUID(summary, rrule string, start caldate.Date) string {
	return uuid.NewSHA1(uidNamespace, []byte(summary+"\x00"+start.String()+"\x00"+rrule)).String()
}
