package utils

import "time"

// ActActISDA is the ACT/ACT (ISDA) year fraction: the interval is split at calendar year
// boundaries and the days in each year are divided by that year's length.
func ActActISDA(start, end time.Time) float64 {
	if end.Before(start) {
		return -ActActISDA(end, start)
	}
	if start.Year() == end.Year() {
		return Days(start, end) / daysInYear(start.Year())
	}
	nextYear := time.Date(start.Year()+1, 1, 1, 0, 0, 0, 0, start.Location())
	lastYear := time.Date(end.Year(), 1, 1, 0, 0, 0, 0, end.Location())
	yf := Days(start, nextYear) / daysInYear(start.Year())
	yf += float64(end.Year() - start.Year() - 1)
	yf += Days(lastYear, end) / daysInYear(end.Year())
	return yf
}

func daysInYear(year int) float64 {
	if time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 366
	}
	return 365
}

// ICMAFraction is the ACT/ACT (ICMA, "Bond") accrual for [start, end] inside the regular
// coupon period [refStart, refEnd] of a bond paying freq coupons a year.
//
// A full regular period accrues exactly 1/freq; a stub accrues pro rata on actual days.
func ICMAFraction(start, end, refStart, refEnd time.Time, freq int) float64 {
	periodDays := Days(refStart, refEnd)
	if periodDays <= 0 || freq <= 0 {
		return 0
	}
	return Days(start, end) / (periodDays * float64(freq))
}
