package recurrence

import (
	"log/slog"

	"github.com/cyp0633/librecur/caldate"
)

// Engine expands recurrence rules into occurrence dates. An Engine holds only
// its configuration and is safe for concurrent use.
type Engine struct {
	logger        *slog.Logger
	maxIterations int
}

// NewEngine creates a new recurrence engine instance with DefaultEngineConfig
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

var defaultEngine = NewEngine()

// Expand returns the occurrences of rule inside window using the default engine.
// See Engine.Expand.
func Expand(rule Rule, window Window) []string {
	return defaultEngine.Expand(rule, window)
}

// Occurrences is Engine.Occurrences on the default engine
func Occurrences(rule Rule, window Window) ([]string, error) {
	return defaultEngine.Occurrences(rule, window)
}

// HasOccurrence is Engine.HasOccurrence on the default engine
func HasOccurrence(rule Rule, window Window) bool {
	return defaultEngine.HasOccurrence(rule, window)
}

// Expand returns the ascending, duplicate-free YYYY-MM-DD dates on which rule
// occurs inside window. Dates are not range checked, so 2025-02-31 stands for
// 2025-03-03; see Validate. Any malformed date in the rule or window yields an
// empty list, as does an exhausted iteration budget. The result is never nil.
func (e *Engine) Expand(rule Rule, window Window) []string {
	dates, err := e.Occurrences(rule, window)
	if err != nil {
		e.logger.Debug("recurrence expansion collapsed to empty",
			"frequency", rule.Frequency,
			"start_date", rule.StartDate,
			"error", err)
		return []string{}
	}
	return dates
}

// Occurrences is like Expand but reports why an expansion failed. Malformed
// dates return a *DateError and no dates. When the iteration budget runs out
// the dates found so far are returned together with ErrIterationLimit.
func (e *Engine) Occurrences(rule Rule, window Window) ([]string, error) {
	p, err := newPlan(rule, window)
	if err != nil {
		return []string{}, err
	}
	return e.run(p)
}

// HasOccurrence reports whether rule occurs at least once inside window.
// It stops at the first match instead of expanding the whole window.
func (e *Engine) HasOccurrence(rule Rule, window Window) bool {
	p, err := newPlan(rule, window)
	if err != nil {
		return false
	}
	if p.limit < 0 || p.limit > 1 {
		p.limit = 1
	}
	dates, err := e.run(p)
	return err == nil && len(dates) > 0
}

func (e *Engine) run(p *plan) ([]string, error) {
	if !p.frequency.Valid() {
		return []string{}, nil
	}
	b := budget{remaining: e.maxIterations, limited: e.maxIterations > 0}
	if p.frequency == Weekly && p.filterWeekdays {
		return scanWeeks(p, &b)
	}
	return stepCursor(p, &b)
}

// plan is a rule and window resolved to ordinals, ready to iterate
type plan struct {
	frequency Frequency
	interval  int

	start    caldate.Date
	startOrd int

	rangeStartOrd int
	// lastOrd is the smaller of the window end and the rule's end date
	lastOrd int
	// limit is the maximum number of dates to emit, -1 when unbounded
	limit int

	excluded       dateSet
	weekdays       weekdaySet
	filterWeekdays bool

	originalDay int
	// dayOfMonth is 0 when the rule does not pin a day
	dayOfMonth int
}

func newPlan(rule Rule, window Window) (*plan, error) {
	start, err := parseField(FieldStartDate, rule.StartDate)
	if err != nil {
		return nil, err
	}
	rangeStart, err := parseField(FieldRangeStart, window.Start)
	if err != nil {
		return nil, err
	}
	rangeEnd, err := parseField(FieldRangeEnd, window.End)
	if err != nil {
		return nil, err
	}

	p := &plan{
		frequency:      rule.Frequency,
		interval:       max(rule.Interval, 1),
		start:          start,
		startOrd:       start.Ordinal(),
		rangeStartOrd:  rangeStart.Ordinal(),
		lastOrd:        rangeEnd.Ordinal(),
		limit:          -1,
		excluded:       newDateSet(rule.ExcludedDates),
		weekdays:       newWeekdaySet(rule.DaysOfWeek),
		filterWeekdays: len(rule.DaysOfWeek) > 0,
		originalDay:    start.Day,
	}

	if text, ok := rule.EndDate.Get(); ok {
		end, err := parseField(FieldEndDate, text)
		if err != nil {
			return nil, err
		}
		p.lastOrd = min(p.lastOrd, end.Ordinal())
	}
	if n, ok := rule.MaxOccurrences.Get(); ok {
		p.limit = max(n, 0)
	}
	if day, ok := rule.DayOfMonth.Get(); ok && day >= 1 {
		p.dayOfMonth = day
	}

	return p, nil
}

// done reports whether the iteration must stop before considering a date at ord
func (p *plan) done(ord, emitted int) bool {
	return ord > p.lastOrd || (p.limit >= 0 && emitted >= p.limit)
}

// budget counts iterations against an engine's MaxIterations
type budget struct {
	remaining int
	limited   bool
}

func (b *budget) spend() error {
	if !b.limited {
		return nil
	}
	if b.remaining == 0 {
		return ErrIterationLimit
	}
	b.remaining--
	return nil
}
