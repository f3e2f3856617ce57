package recurrence

import "github.com/samber/mo"

// Input is the serialized form of a Rule as exchanged over JSON and YAML.
// Optional fields are pointers so an absent field differs from a zero one.
type Input struct {
	Frequency      string   `json:"frequency" yaml:"frequency"`
	Interval       int      `json:"interval" yaml:"interval"`
	StartDate      string   `json:"start_date" yaml:"start_date"`
	EndDate        *string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	MaxOccurrences *int     `json:"max_occurrences,omitempty" yaml:"max_occurrences,omitempty"`
	ExcludedDates  []string `json:"excluded_dates,omitempty" yaml:"excluded_dates,omitempty"`
	DaysOfWeek     []int    `json:"days_of_week,omitempty" yaml:"days_of_week,omitempty"`
	DayOfMonth     *int     `json:"day_of_month,omitempty" yaml:"day_of_month,omitempty"`
}

// Rule converts the input to a Rule. Nothing is validated here; malformed
// dates surface when the rule is expanded.
func (in Input) Rule() Rule {
	rule := Rule{
		Frequency:     Frequency(in.Frequency),
		Interval:      in.Interval,
		StartDate:     in.StartDate,
		ExcludedDates: in.ExcludedDates,
		DaysOfWeek:    in.DaysOfWeek,
	}
	if in.EndDate != nil {
		rule.EndDate = mo.Some(*in.EndDate)
	}
	if in.MaxOccurrences != nil {
		rule.MaxOccurrences = mo.Some(*in.MaxOccurrences)
	}
	if in.DayOfMonth != nil {
		rule.DayOfMonth = mo.Some(*in.DayOfMonth)
	}
	return rule
}

// InputFromRule is the inverse of Input.Rule
func InputFromRule(rule Rule) Input {
	in := Input{
		Frequency:     string(rule.Frequency),
		Interval:      rule.Interval,
		StartDate:     rule.StartDate,
		ExcludedDates: rule.ExcludedDates,
		DaysOfWeek:    rule.DaysOfWeek,
	}
	if v, ok := rule.EndDate.Get(); ok {
		in.EndDate = &v
	}
	if v, ok := rule.MaxOccurrences.Get(); ok {
		in.MaxOccurrences = &v
	}
	if v, ok := rule.DayOfMonth.Get(); ok {
		in.DayOfMonth = &v
	}
	return in
}

// ExpandRequest pairs a rule with the window to expand it in
type ExpandRequest struct {
	Rule       Input  `json:"rule" yaml:"rule"`
	RangeStart string `json:"range_start" yaml:"range_start"`
	RangeEnd   string `json:"range_end" yaml:"range_end"`
}

// Window returns the request's query window
func (r ExpandRequest) Window() Window {
	return NewWindow(r.RangeStart, r.RangeEnd)
}

// Result is the serialized list of occurrence dates
type Result struct {
	Dates []string `json:"dates" yaml:"dates"`
}

// ExpandInput expands in over [rangeStart, rangeEnd] with the default engine.
// Like Expand it never fails; bad dates produce an empty list.
func ExpandInput(in Input, rangeStart, rangeEnd string) Result {
	return Result{Dates: Expand(in.Rule(), NewWindow(rangeStart, rangeEnd))}
}
