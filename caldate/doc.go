// Package caldate implements proleptic Gregorian calendar arithmetic on plain
// year/month/day dates: parsing and formatting YYYY-MM-DD, leap years, month
// lengths, a day ordinal for comparison and subtraction, weekdays, and
// shifting by days or months with end-of-month clamping.
//
// All functions are pure. Nothing is cached, so they are safe to call from any
// number of goroutines.
package caldate
