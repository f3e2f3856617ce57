package recurrence

// scanWeeks expands a weekly rule with explicit weekdays. Weeks run Sunday to
// Saturday starting with the week containing the start date; every interval-th
// week is scanned day by day and matching weekdays are emitted.
func scanWeeks(p *plan, b *budget) ([]string, error) {
	dates := []string{}
	anchor := p.start.AddDays(-int(p.start.Weekday()))

	for {
		for offset := 0; offset < 7; offset++ {
			if err := b.spend(); err != nil {
				return dates, err
			}

			candidate := anchor.AddDays(offset)
			ord := candidate.Ordinal()
			if ord < p.startOrd {
				continue
			}
			if p.done(ord, len(dates)) {
				return dates, nil
			}
			if ord < p.rangeStartOrd || !p.weekdays.has(candidate.Weekday()) {
				continue
			}
			if s := candidate.String(); !p.excluded.contains(s) {
				dates = append(dates, s)
			}
		}
		anchor = anchor.AddDays(p.interval * 7)
	}
}
