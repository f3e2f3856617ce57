package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cyp0633/librecur/internal/rulefile"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// ruleFlags describe a rule on the command line, either field by field, as an
// RRULE, or as a rule file
type ruleFlags struct {
	frequency  string
	interval   int
	start      string
	endDate    string
	count      int
	exclude    []string
	days       []string
	dayOfMonth int
	rrule      string
	ruleFile   string
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.frequency, "freq", "", "Frequency: daily, weekly, monthly or yearly")
	flags.IntVar(&f.interval, "interval", 1, "Step between periods")
	flags.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD), also DTSTART for --rrule")
	flags.StringVar(&f.endDate, "end-date", "", "Last date the rule may produce")
	flags.IntVar(&f.count, "count", 0, "Maximum number of occurrences in the window")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Dates to skip (repeatable or comma-separated)")
	flags.StringSliceVar(&f.days, "days", nil, "Weekly days: names (mon, tuesday) or numbers 0-6 with Sunday = 0")
	flags.IntVar(&f.dayOfMonth, "day-of-month", 0, "Monthly day (clamped to short months)")
	flags.StringVar(&f.rrule, "rrule", "", "RFC 5545 RRULE, e.g. FREQ=WEEKLY;BYDAY=MO,WE")
	flags.StringVar(&f.ruleFile, "rule-file", "", "JSON, JSONC or YAML file holding the rule and optionally its window")

	cmd.MarkFlagsMutuallyExclusive("freq", "rrule", "rule-file")
}

// build returns the rule and whatever window came with it. Only rule files
// carry a window. Field flags given alongside --rule-file or --rrule override
// the matching fields of that rule.
func (f *ruleFlags) build(cmd *cobra.Command) (recurrence.Rule, recurrence.Window, error) {
	var (
		rule   recurrence.Rule
		window recurrence.Window
	)

	switch {
	case f.ruleFile != "":
		req, err := rulefile.ReadFile(f.ruleFile)
		if err != nil {
			return rule, window, err
		}
		rule, window = req.Rule.Rule(), req.Window()
	case f.rrule != "":
		var err error
		if rule, err = recurrence.ParseRRULE(f.rrule, f.start); err != nil {
			return rule, window, err
		}
	case f.frequency != "":
		rule = recurrence.Rule{
			Frequency: recurrence.Frequency(strings.ToLower(f.frequency)),
			Interval:  f.interval,
			StartDate: f.start,
		}
		if !rule.Frequency.Valid() {
			return rule, window, fmt.Errorf("unknown frequency %q", f.frequency)
		}
	default:
		return rule, window, fmt.Errorf("one of --freq, --rrule or --rule-file is required")
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		rule.StartDate = f.start
	}
	if flags.Changed("interval") {
		rule.Interval = f.interval
	}
	if flags.Changed("end-date") {
		rule.EndDate = mo.Some(f.endDate)
	}
	if flags.Changed("count") {
		rule.MaxOccurrences = mo.Some(f.count)
	}
	if flags.Changed("day-of-month") {
		rule.DayOfMonth = mo.Some(f.dayOfMonth)
	}
	if len(f.days) > 0 {
		days, err := parseWeekdays(f.days)
		if err != nil {
			return rule, window, err
		}
		rule.DaysOfWeek = days
	}
	rule.ExcludedDates = append(rule.ExcludedDates, f.exclude...)

	return rule, window, nil
}

// overridden reports whether any field flag refines the rule beyond what
// --rrule, --start and --exclude express
func (f *ruleFlags) overridden(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	for _, name := range []string{"interval", "end-date", "count", "day-of-month", "days"} {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

var weekdayNames = map[string]int{
	"su": 0, "sun": 0, "sunday": 0,
	"mo": 1, "mon": 1, "monday": 1,
	"tu": 2, "tue": 2, "tuesday": 2,
	"we": 3, "wed": 3, "wednesday": 3,
	"th": 4, "thu": 4, "thursday": 4,
	"fr": 5, "fri": 5, "friday": 5,
	"sa": 6, "sat": 6, "saturday": 6,
}

func parseWeekdays(values []string) ([]int, error) {
	days := make([]int, 0, len(values))
	for _, value := range values {
		name := strings.ToLower(strings.TrimSpace(value))
		if n, ok := weekdayNames[name]; ok {
			days = append(days, n)
			continue
		}
		n, err := strconv.Atoi(name)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid day %q", value)
		}
		days = append(days, n)
	}
	return days, nil
}
