/*
Package recurrence expands recurring date rules into concrete occurrence dates.

A Rule repeats daily, weekly, monthly or yearly from a start date, optionally
every N periods, restricted to certain weekdays (weekly) or a fixed day of the
month (monthly), and ends at an end date or after a number of occurrences.
Expanding it over a Window yields the matching dates in ascending order:

	rule := recurrence.Rule{
		Frequency:  recurrence.Weekly,
		Interval:   1,
		StartDate:  "2025-01-06",
		DaysOfWeek: []int{1, 3, 5},
	}
	dates := recurrence.Expand(rule, recurrence.NewWindow("2025-01-06", "2025-01-12"))
	// [2025-01-06 2025-01-08 2025-01-10]

Monthly and yearly rules remember the start date's day. A rule starting on
January 31 lands on the last day of February and returns to the 31st in March;
a yearly rule starting on February 29 falls on February 28 in common years.

Expand fails empty: a malformed date anywhere in the rule or window produces
no dates. Occurrences returns the same dates together with a *DateError, so
callers that need to tell bad input from an empty series can.

The package also converts rules to and from RFC 5545 RRULE values and
iCalendar components.
*/
package recurrence
