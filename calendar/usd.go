package calendar

import "time"

// isUSDHoliday follows the SIFMA-style US government bond calendar rules for fixed and
// floating federal holidays, with Saturday holidays observed on Friday and Sunday holidays
// on Monday.
func isUSDHoliday(t time.Time) bool {
	y, m, d := t.Date()
	wd := t.Weekday()

	switch {
	// New Year's Day (Monday if Sunday).
	case (d == 1 || (d == 2 && wd == time.Monday)) && m == time.January:
		return true
	// Martin Luther King Jr. Day, third Monday of January (since 1983).
	case y >= 1983 && m == time.January && wd == time.Monday && d >= 15 && d <= 21:
		return true
	// Presidents' Day, third Monday of February.
	case m == time.February && wd == time.Monday && d >= 15 && d <= 21:
		return true
	// Memorial Day, last Monday of May.
	case m == time.May && wd == time.Monday && d >= 25:
		return true
	// Juneteenth (since 2022).
	case y >= 2022 && m == time.June && isObserved(d, wd, 19):
		return true
	// Independence Day.
	case m == time.July && isObserved(d, wd, 4):
		return true
	// Labor Day, first Monday of September.
	case m == time.September && wd == time.Monday && d <= 7:
		return true
	// Columbus Day, second Monday of October.
	case m == time.October && wd == time.Monday && d >= 8 && d <= 14:
		return true
	// Veterans Day, no Friday observance for Saturday.
	case m == time.November && (d == 11 || (d == 12 && wd == time.Monday)):
		return true
	// Thanksgiving, fourth Thursday of November.
	case m == time.November && wd == time.Thursday && d >= 22 && d <= 28:
		return true
	// Christmas.
	case m == time.December && isObserved(d, wd, 25):
		return true
	}
	return false
}

func isObserved(d int, wd time.Weekday, holiday int) bool {
	return d == holiday ||
		(d == holiday+1 && wd == time.Monday) ||
		(d == holiday-1 && wd == time.Friday)
}
