package bond

import "time"

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are per 100 face.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// PV discounts cfs with df, skipping flows dated on or before settlement.
func PV(settlement time.Time, cfs []Cashflow, df func(time.Time) float64) float64 {
	pv := 0.0
	for _, cf := range cfs {
		if !cf.Date.After(settlement) {
			continue
		}
		pv += cf.Amount() * df(cf.Date)
	}
	return pv
}
