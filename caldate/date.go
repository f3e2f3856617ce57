package caldate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat is returned when text is not a YYYY-MM-DD calendar date
var ErrInvalidFormat = errors.New("invalid date format")

// ParseError describes why a date string was rejected
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidFormat, e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidFormat
}

// Date is a calendar date with no time of day and no zone.
// The zero value is not a valid date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// New returns the date with the given components. It does not validate them.
func New(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Parse reads a date written as three hyphen-separated integers, year first.
// Components need not be zero padded ("2025-1-5" is accepted) and are not
// range checked: "2025-02-31" parses, and its ordinal is that of 2025-03-03.
// Use ParseStrict to reject dates that do not exist.
func Parse(text string) (Date, error) {
	parts := strings.Split(text, "-")
	if len(parts) != 3 {
		return Date{}, &ParseError{Text: text, Reason: fmt.Sprintf("expected 3 components, got %d", len(parts))}
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, &ParseError{Text: text, Reason: fmt.Sprintf("component %d is not an integer", i+1)}
		}
		fields[i] = n
	}

	return Date{Year: fields[0], Month: fields[1], Day: fields[2]}, nil
}

// ParseStrict is like Parse but also requires the month to be 1-12 and the
// day to exist in that month
func ParseStrict(text string) (Date, error) {
	d, err := Parse(text)
	if err != nil {
		return Date{}, err
	}
	if d.Month < 1 || d.Month > 12 {
		return Date{}, &ParseError{Text: text, Reason: "month out of range"}
	}
	if !d.Valid() {
		return Date{}, &ParseError{Text: text, Reason: "day out of range"}
	}
	return d, nil
}

// MustParse is like Parse but panics on malformed input. Intended for constants and tests.
func MustParse(text string) Date {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the calendar date of t in t's own location
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns midnight UTC at the start of d
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether d names a day that exists in the Gregorian calendar
func (d Date) Valid() bool {
	return d.Month >= 1 && d.Month <= 12 && d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// Normalize rolls an out-of-range month or day into the date with the same
// ordinal, e.g. 2025-02-31 becomes 2025-03-03
func (d Date) Normalize() Date {
	return FromTime(d.Time())
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// Format returns the canonical zero-padded YYYY-MM-DD form.
// Years outside 0-9999 are not supported.
func Format(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// String returns the canonical YYYY-MM-DD form of d
func (d Date) String() string {
	return Format(d.Year, d.Month, d.Day)
}

// Compact returns d as YYYYMMDD, the iCalendar DATE form
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}
