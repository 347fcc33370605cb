package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/rmbs/calendar"
	"github.com/meenmo/rmbs/utils"
)

// Face is the notional of a synthetic par bond.
const Face = 100.0

// ParBondSpec describes a fixed-rate bullet bond issued at the valuation date.
type ParBondSpec struct {
	Issue     time.Time
	Maturity  time.Time
	CouponPct float64 // annual percent
	Frequency int     // coupons per year
	Calendar  calendar.CalendarID
	// Convention adjusts payment dates; accrual always runs on unadjusted dates.
	Convention calendar.Convention
}

// ParBond generates the cashflows of spec per 100 face.
//
// The schedule rolls backward from maturity (end-of-month rule when maturity is a month
// end), so any short stub sits at the front. Coupons accrue ACT/ACT ICMA: a regular period
// pays CouponPct/Frequency, a stub pays pro rata against its notional regular period.
func ParBond(spec ParBondSpec) ([]Cashflow, error) {
	if spec.Frequency <= 0 || 12%spec.Frequency != 0 {
		return nil, fmt.Errorf("ParBond: unsupported frequency %d", spec.Frequency)
	}
	if !spec.Maturity.After(spec.Issue) {
		return nil, fmt.Errorf("ParBond: maturity %s must be after issue %s",
			utils.FormatDate(spec.Maturity), utils.FormatDate(spec.Issue))
	}
	months := 12 / spec.Frequency

	// Unadjusted coupon dates, latest first. Each is computed from maturity directly to
	// avoid day drift from repeated month arithmetic.
	var ends []time.Time
	for i := 0; ; i++ {
		d := utils.AddMonthEOM(spec.Maturity, -months*i)
		if !d.After(spec.Issue) {
			break
		}
		ends = append(ends, d)
	}

	cfs := make([]Cashflow, 0, len(ends))
	start := spec.Issue
	for i := len(ends) - 1; i >= 0; i-- {
		end := ends[i]
		periodRef := utils.AddMonthEOM(spec.Maturity, -months*(i+1))
		accrual := utils.ICMAFraction(start, end, periodRef, end, spec.Frequency)
		cf := Cashflow{
			Date:   calendar.Adjust(spec.Calendar, spec.Convention, end),
			Coupon: Face * spec.CouponPct / 100 * accrual,
		}
		if i == 0 {
			cf.Principal = Face
		}
		cfs = append(cfs, cf)
		start = end
	}
	return cfs, nil
}
