package caldate

import "time"

// 2000-01-01 fell on a Saturday. Weekday derives every other date from it.
const (
	referenceYear    = 2000
	referenceMonth   = 1
	referenceDay     = 1
	referenceWeekday = time.Saturday
)

// IsLeapYear reports whether year has a February 29 in the Gregorian calendar
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the length of month in year.
// Months outside 1-12 report 30.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 30
	}
}

// Ordinal returns a day number that increases by exactly one per calendar day.
// January and February count as months 13 and 14 of the previous year so the
// leap day falls at the end of the shifted year.
func Ordinal(year, month, day int) int {
	a, b := year, month
	if month <= 2 {
		a, b = year-1, month+12
	}
	return 365*a + floorDiv(a, 4) - floorDiv(a, 100) + floorDiv(a, 400) + (153*(b-3)+2)/5 + day
}

// Ordinal returns the day number of d. See the package-level Ordinal.
func (d Date) Ordinal() int {
	return Ordinal(d.Year, d.Month, d.Day)
}

// Weekday returns the day of the week, Sunday = 0
func Weekday(year, month, day int) time.Weekday {
	diff := Ordinal(year, month, day) - Ordinal(referenceYear, referenceMonth, referenceDay)
	// diff%7 may be negative; the +7 lifts it before the final reduction.
	return time.Weekday((diff%7 + 7 + int(referenceWeekday)) % 7)
}

// Weekday returns the day of the week of d
func (d Date) Weekday() time.Weekday {
	return Weekday(d.Year, d.Month, d.Day)
}

// AddDays shifts d by delta days, which may be negative.
// The day component is carried into neighbouring months one month at a time,
// so a day beyond its month's length settles into the following months even
// when delta is 0.
func (d Date) AddDays(delta int) Date {
	y, m := d.Year, d.Month
	day := d.Day + delta

	for day > DaysInMonth(y, m) {
		day -= DaysInMonth(y, m)
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	for day < 1 {
		m--
		if m < 1 {
			m = 12
			y--
		}
		day += DaysInMonth(y, m)
	}

	return Date{Year: y, Month: m, Day: day}
}

// AddMonths shifts d by delta months, which may be negative. The day is
// clamped to the length of the target month, so Jan 31 + 1 month is the
// last day of February.
func (d Date) AddMonths(delta int) Date {
	y, m := normalizeMonth(d.Year, d.Month+delta)
	return Date{Year: y, Month: m, Day: min(d.Day, DaysInMonth(y, m))}
}

// Compare returns -1, 0 or +1 as d is before, equal to or after other
func (d Date) Compare(other Date) int {
	a, b := d.Ordinal(), other.Ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// normalizeMonth folds an out-of-range month into 1-12, carrying whole years
func normalizeMonth(year, month int) (int, int) {
	total := year*12 + (month - 1)
	return floorDiv(total, 12), floorMod(total, 12) + 1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
