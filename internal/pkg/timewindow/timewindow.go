package timewindow

import "time"

// Resolve computes the half-open [from, to) range covered by a partial date.
// The window is one day when day is given, one month plus a next-day rollover
// when only month is given, and one year when only year is given. Missing
// parts default to 1, so from is always midnight UTC of the most specific
// supplied date.
func Resolve(year int, month, day *int) (from, to time.Time) {
	m, d := 1, 1
	if month != nil {
		m = *month
	}
	if day != nil {
		d = *day
	}
	from = time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)

	switch {
	case day != nil:
		to = from.AddDate(0, 0, 1)
	case month != nil:
		// month window, then next-day rollover
		to = from.AddDate(0, 1, 1)
	default:
		to = from.AddDate(1, 0, 0)
	}
	return from, to
}
