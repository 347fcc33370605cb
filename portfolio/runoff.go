package portfolio

// MonthsToRunoff returns the first month at which the outstanding balance fraction falls
// below pct (e.g. 0.5 for half the pool repaid). ok is false if it never does.
func (f Forecast) MonthsToRunoff(pct float64) (month int, ok bool) {
	for t, frac := range f.BalFrac {
		if frac < pct {
			return t, true
		}
	}
	return 0, false
}

// AverageRunoff is the mean principal paid over months 1..months, capped at MaxWAM.
func (f Forecast) AverageRunoff(months int) float64 {
	if months > f.MaxWAM {
		months = f.MaxWAM
	}
	if months <= 0 {
		return 0
	}
	sum := 0.0
	for t := 1; t <= months; t++ {
		sum += f.Principal[t]
	}
	return sum / float64(months)
}

// Cashflow returns interest plus principal received in month t.
func (f Forecast) Cashflow(t int) float64 {
	return f.Interest[t] + f.Principal[t]
}
