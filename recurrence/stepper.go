package recurrence

import "github.com/cyp0633/librecur/caldate"

// stepCursor expands every rule that is not a weekday-filtered weekly rule by
// moving a single cursor forward one period at a time.
func stepCursor(p *plan, b *budget) ([]string, error) {
	dates := []string{}
	cursor := p.start

	for {
		if err := b.spend(); err != nil {
			return dates, err
		}

		ord := cursor.Ordinal()
		if p.done(ord, len(dates)) {
			return dates, nil
		}
		if ord >= p.rangeStartOrd && p.includes(cursor) {
			if s := cursor.String(); !p.excluded.contains(s) {
				dates = append(dates, s)
			}
		}

		cursor = p.advance(cursor)
	}
}

// includes reports whether a cursor position is an occurrence. Only monthly
// rules pinned to a day of the month can land on a position that is not.
func (p *plan) includes(cursor caldate.Date) bool {
	if p.frequency != Monthly || p.dayOfMonth == 0 {
		return true
	}
	return cursor.Day == min(p.dayOfMonth, caldate.DaysInMonth(cursor.Year, cursor.Month))
}

// advance moves the cursor one interval forward. Monthly and yearly steps
// re-derive the day from the target day rather than the cursor, so a date
// clamped in a short month recovers in the following long one.
func (p *plan) advance(cursor caldate.Date) caldate.Date {
	switch p.frequency {
	case Daily:
		return cursor.AddDays(p.interval)
	case Weekly:
		return cursor.AddDays(p.interval * 7)
	case Monthly:
		target := p.originalDay
		if p.dayOfMonth != 0 {
			target = p.dayOfMonth
		}
		return withClampedDay(cursor.AddMonths(p.interval), target)
	default:
		return withClampedDay(cursor.AddMonths(p.interval*12), p.originalDay)
	}
}

func withClampedDay(d caldate.Date, day int) caldate.Date {
	d.Day = min(day, caldate.DaysInMonth(d.Year, d.Month))
	return d
}
