package recurrence

import (
	"errors"
	"fmt"

	"github.com/cyp0633/librecur/caldate"
)

// Names of the date fields a DateError can refer to
const (
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldRangeStart = "range_start"
	FieldRangeEnd   = "range_end"
)

var (
	// ErrInvalidDateFormat matches every DateError via errors.Is
	ErrInvalidDateFormat = caldate.ErrInvalidFormat

	// ErrUnsupportedRule is returned when a rule cannot be converted to or from
	// another representation such as RRULE
	ErrUnsupportedRule = errors.New("unsupported recurrence rule")

	// ErrIterationLimit is returned when an engine's iteration budget runs out
	ErrIterationLimit = errors.New("recurrence iteration limit exceeded")
)

// DateError reports a rule or window date that could not be parsed
type DateError struct {
	Field string
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

func parseField(field, value string) (caldate.Date, error) {
	return parseFieldWith(caldate.Parse, field, value)
}

func parseStrictField(field, value string) (caldate.Date, error) {
	return parseFieldWith(caldate.ParseStrict, field, value)
}

func parseFieldWith(parse func(string) (caldate.Date, error), field, value string) (caldate.Date, error) {
	d, err := parse(value)
	if err != nil {
		return caldate.Date{}, &DateError{Field: field, Value: value, Err: err}
	}
	return d, nil
}

// Validate checks that every date of rule and window names a day that exists.
// Expansion itself accepts overlong days such as 2025-02-31 and rolls them
// into the next month; Validate is for callers that want to reject them.
// The first offending field is reported as a *DateError.
func Validate(rule Rule, window Window) error {
	fields := []struct{ name, value string }{
		{FieldStartDate, rule.StartDate},
		{FieldRangeStart, window.Start},
		{FieldRangeEnd, window.End},
	}
	if text, ok := rule.EndDate.Get(); ok {
		fields = append(fields, struct{ name, value string }{FieldEndDate, text})
	}
	for _, f := range fields {
		if _, err := parseStrictField(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
