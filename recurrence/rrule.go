package recurrence

import (
	"fmt"
	"slices"
	"time"

	"github.com/cyp0633/librecur/caldate"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// rruleWeekdays maps a weekday index (0 = Sunday) to its rrule-go value
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var rruleFrequencies = map[rrule.Frequency]Frequency{
	rrule.DAILY:   Daily,
	rrule.WEEKLY:  Weekly,
	rrule.MONTHLY: Monthly,
	rrule.YEARLY:  Yearly,
}

// ParseRRULE converts an RFC 5545 RRULE value, with or without the "RRULE:"
// prefix, into a Rule anchored at startDate. If startDate is empty, a DTSTART
// line preceding the rule supplies it.
//
// Only the subset the engine can reproduce is accepted: FREQ from DAILY to
// YEARLY, INTERVAL, COUNT, UNTIL, BYDAY without ordinals on weekly rules and a
// single positive BYMONTHDAY on monthly rules. Everything else fails with
// ErrUnsupportedRule.
//
// Weekday-filtered rules count weeks from Sunday. A rule skipping weeks
// (INTERVAL > 1) under another WKST is rejected when the difference would show:
// when it selects Sunday or starts on one.
func ParseRRULE(text, startDate string) (Rule, error) {
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrUnsupportedRule, err)
	}

	freq, ok := rruleFrequencies[opt.Freq]
	if !ok {
		return Rule{}, fmt.Errorf("%w: frequency %s", ErrUnsupportedRule, opt.Freq)
	}
	if err := checkUnsupportedParts(opt); err != nil {
		return Rule{}, err
	}

	if startDate == "" {
		if opt.Dtstart.IsZero() {
			return Rule{}, fmt.Errorf("%w: no start date", ErrUnsupportedRule)
		}
		startDate = caldate.FromTime(opt.Dtstart.UTC()).String()
	}

	rule := Rule{
		Frequency: freq,
		Interval:  max(opt.Interval, 1),
		StartDate: startDate,
	}
	if opt.Count > 0 {
		rule.MaxOccurrences = mo.Some(opt.Count)
	}
	if !opt.Until.IsZero() {
		rule.EndDate = mo.Some(caldate.FromTime(opt.Until.UTC()).String())
	}

	if len(opt.Byweekday) > 0 {
		if freq != Weekly {
			return Rule{}, fmt.Errorf("%w: BYDAY on a %s rule", ErrUnsupportedRule, freq)
		}
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return Rule{}, fmt.Errorf("%w: BYDAY ordinal %s", ErrUnsupportedRule, wd)
			}
			// rrule-go counts from Monday.
			day := (wd.Day() + 1) % 7
			if !slices.Contains(rule.DaysOfWeek, day) {
				rule.DaysOfWeek = append(rule.DaysOfWeek, day)
			}
		}
	}

	if len(rule.DaysOfWeek) > 0 && rule.Interval > 1 && opt.Wkst != rrule.SU {
		if slices.Contains(rule.DaysOfWeek, int(time.Sunday)) || startsOnSunday(startDate) {
			return Rule{}, fmt.Errorf("%w: INTERVAL with WKST=%s", ErrUnsupportedRule, opt.Wkst)
		}
	}

	if len(opt.Bymonthday) > 0 {
		if freq != Monthly || len(opt.Bymonthday) > 1 || opt.Bymonthday[0] < 1 {
			return Rule{}, fmt.Errorf("%w: BYMONTHDAY=%v on a %s rule", ErrUnsupportedRule, opt.Bymonthday, freq)
		}
		rule.DayOfMonth = mo.Some(opt.Bymonthday[0])
	}

	return rule, nil
}

func startsOnSunday(text string) bool {
	d, err := caldate.Parse(text)
	return err == nil && d.Weekday() == time.Sunday
}

func checkUnsupportedParts(opt *rrule.ROption) error {
	parts := []struct {
		name   string
		values []int
	}{
		{"BYSETPOS", opt.Bysetpos},
		{"BYMONTH", opt.Bymonth},
		{"BYYEARDAY", opt.Byyearday},
		{"BYWEEKNO", opt.Byweekno},
		{"BYHOUR", opt.Byhour},
		{"BYMINUTE", opt.Byminute},
		{"BYSECOND", opt.Bysecond},
		{"BYEASTER", opt.Byeaster},
	}
	for _, part := range parts {
		if len(part.values) > 0 {
			return fmt.Errorf("%w: %s", ErrUnsupportedRule, part.name)
		}
	}
	return nil
}

// RRULE formats r as an RFC 5545 RRULE value without the "RRULE:" prefix.
// The start date and excluded dates are not part of an RRULE and are left out.
//
// The two notations differ in two places. COUNT counts occurrences from the
// start date, while MaxOccurrences counts only those inside the query window,
// so they agree when the window starts on or before the start date. A
// BYMONTHDAY beyond a month's length skips that month, while DayOfMonth clamps
// to the last day. A DayOfMonth after the start day takes effect from the
// following month, while BYMONTHDAY already matches in the start month.
func (r Rule) RRULE() (string, error) {
	opt := rrule.ROption{}
	switch r.Frequency {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	case Yearly:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("%w: frequency %q", ErrUnsupportedRule, r.Frequency)
	}

	if r.Interval > 1 {
		opt.Interval = r.Interval
	}
	if n, ok := r.MaxOccurrences.Get(); ok {
		if n < 1 {
			return "", fmt.Errorf("%w: COUNT=%d", ErrUnsupportedRule, n)
		}
		opt.Count = n
	}
	if text, ok := r.EndDate.Get(); ok {
		end, err := parseField(FieldEndDate, text)
		if err != nil {
			return "", err
		}
		opt.Until = end.Time()
	}

	if r.Frequency == Weekly && len(r.DaysOfWeek) > 0 {
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return "", fmt.Errorf("%w: weekday %d", ErrUnsupportedRule, d)
			}
		}
		if r.Interval > 1 {
			opt.Wkst = rrule.SU
		}
		set := newWeekdaySet(r.DaysOfWeek)
		for d := range rruleWeekdays {
			if set.has(time.Weekday(d)) {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
			}
		}
	}

	if day, ok := r.DayOfMonth.Get(); ok && r.Frequency == Monthly && day >= 1 {
		if day > 31 {
			return "", fmt.Errorf("%w: day of month %d", ErrUnsupportedRule, day)
		}
		opt.Bymonthday = []int{day}
	}

	return opt.RRuleString(), nil
}
