package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// Frequency is the unit a rule repeats in
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Valid reports whether f is one of the four recognized frequencies
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Rule describes a recurring series of calendar dates. Dates are YYYY-MM-DD
// strings; they are parsed when the rule is expanded, not when it is built.
type Rule struct {
	Frequency Frequency
	// Interval is the step between periods. Values below 1 are treated as 1.
	Interval  int
	StartDate string
	// EndDate is an inclusive bound on the rule's lifetime, independent of the query window.
	EndDate        mo.Option[string]
	MaxOccurrences mo.Option[int]
	// ExcludedDates must be in canonical zero-padded form to match.
	ExcludedDates []string
	// DaysOfWeek holds weekday indices, 0 = Sunday. Only used by weekly rules.
	DaysOfWeek []int
	// DayOfMonth pins monthly rules to a fixed day, clamped to short months.
	DayOfMonth mo.Option[int]
}

// Window is the inclusive range of dates a caller wants occurrences for
type Window struct {
	Start string
	End   string
}

// NewWindow returns the window [start, end]
func NewWindow(start, end string) Window {
	return Window{Start: start, End: end}
}

// weekdaySet is a bitset over time.Weekday. Bit i is set when weekday i is selected.
type weekdaySet uint8

func newWeekdaySet(days []int) weekdaySet {
	var s weekdaySet
	for _, d := range days {
		if d >= 0 && d <= 6 {
			s |= 1 << uint(d)
		}
	}
	return s
}

func (s weekdaySet) has(w time.Weekday) bool {
	return s&(1<<uint(w)) != 0
}

type dateSet map[string]struct{}

func newDateSet(dates []string) dateSet {
	set := make(dateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (s dateSet) contains(date string) bool {
	_, ok := s[date]
	return ok
}
