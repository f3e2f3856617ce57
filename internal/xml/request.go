package xml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/cyp0633/librecur/recurrence"
)

// ExpandRequest is the XML form of recurrence.ExpandRequest:
//
//	<expand xmlns="urn:x-librecur:recurrence">
//	  <rule>
//	    <frequency>weekly</frequency>
//	    <interval>1</interval>
//	    <start-date>2025-01-06</start-date>
//	    <day-of-week>1</day-of-week>
//	    <day-of-week>3</day-of-week>
//	  </rule>
//	  <range-start>2025-01-06</range-start>
//	  <range-end>2025-01-12</range-end>
//	</expand>
type ExpandRequest struct {
	Request recurrence.ExpandRequest
}

// Parse parses an expand request from an XML document
func (r *ExpandRequest) Parse(doc *etree.Document) error {
	root, err := rootElement(doc, TagExpand)
	if err != nil {
		return err
	}

	r.Request = recurrence.ExpandRequest{}

	rule := root.SelectElement(TagRule)
	if rule == nil {
		return fmt.Errorf("missing %s element", TagRule)
	}
	if err := parseRule(rule, &r.Request.Rule); err != nil {
		return err
	}

	r.Request.RangeStart, _ = childText(root, TagRangeStart)
	r.Request.RangeEnd, _ = childText(root, TagRangeEnd)
	return nil
}

func parseRule(elem *etree.Element, in *recurrence.Input) error {
	in.Frequency, _ = childText(elem, TagFrequency)
	in.StartDate, _ = childText(elem, TagStartDate)

	interval, _, err := childInt(elem, TagInterval)
	if err != nil {
		return err
	}
	in.Interval = interval

	if text, ok := childText(elem, TagEndDate); ok {
		in.EndDate = &text
	}
	if n, ok, err := childInt(elem, TagMaxOccurrences); err != nil {
		return err
	} else if ok {
		in.MaxOccurrences = &n
	}
	if n, ok, err := childInt(elem, TagDayOfMonth); err != nil {
		return err
	} else if ok {
		in.DayOfMonth = &n
	}

	for _, day := range elem.SelectElements(TagDayOfWeek) {
		text := strings.TrimSpace(day.Text())
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", TagDayOfWeek, text, err)
		}
		in.DaysOfWeek = append(in.DaysOfWeek, n)
	}
	for _, date := range elem.SelectElements(TagExcludedDate) {
		in.ExcludedDates = append(in.ExcludedDates, strings.TrimSpace(date.Text()))
	}

	return nil
}

// ToXML converts an ExpandRequest to an XML document
func (r *ExpandRequest) ToXML() *etree.Document {
	doc := etree.NewDocument()
	root := createRoot(doc, TagExpand)

	in := r.Request.Rule
	rule := root.CreateElement(TagRule)
	addText(rule, TagFrequency, in.Frequency)
	addText(rule, TagInterval, strconv.Itoa(in.Interval))
	addText(rule, TagStartDate, in.StartDate)
	if in.EndDate != nil {
		addText(rule, TagEndDate, *in.EndDate)
	}
	if in.MaxOccurrences != nil {
		addText(rule, TagMaxOccurrences, strconv.Itoa(*in.MaxOccurrences))
	}
	for _, day := range in.DaysOfWeek {
		addText(rule, TagDayOfWeek, strconv.Itoa(day))
	}
	if in.DayOfMonth != nil {
		addText(rule, TagDayOfMonth, strconv.Itoa(*in.DayOfMonth))
	}
	for _, date := range in.ExcludedDates {
		addText(rule, TagExcludedDate, date)
	}

	addText(root, TagRangeStart, r.Request.RangeStart)
	addText(root, TagRangeEnd, r.Request.RangeEnd)
	return doc
}
