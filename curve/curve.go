// Package curve bootstraps a discount curve from par bond quotes and answers discount
// factor and forward rate queries by month offset from the valuation date.
package curve

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/rmbs/bond"
	"github.com/meenmo/rmbs/calendar"
	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/utils"
)

// CouponFrequency is the coupon frequency of the synthetic par bonds.
const CouponFrequency = 2

// Spec is a par curve as quoted: maturities (tenors such as "3M" or "10Y") paired with par
// coupon rates in annual percent, as of ValuationDate.
type Spec struct {
	ValuationDate time.Time
	Maturities    []string
	Rates         []float64

	// Calendar and Convention adjust coupon payment dates. The zero values mean the USD
	// calendar and no adjustment.
	Calendar   calendar.CalendarID
	Convention calendar.Convention
}

// Node is a fitted curve pillar.
type Node struct {
	Tenor    string
	Maturity time.Time
	Time     float64
	ParRate  float64 // percent
	DF       float64
}

// Curve is an immutable discount curve. Log discount factors are interpolated with a natural
// cubic spline in ACT/ACT time and extrapolated flat-forward past the last pillar.
type Curve struct {
	valuation  time.Time
	nodes      []Node
	times      []float64 // includes t = 0
	logDF      []float64 // includes 0 at t = 0
	spline     interp.Predictor
	iterations int
	residual   float64
}

func (s Spec) validate() error {
	if s.ValuationDate.IsZero() {
		return errs.Input("curve: valuation date is required")
	}
	if len(s.Maturities) == 0 || len(s.Rates) == 0 {
		return errs.Input("curve: maturities and rates must not be empty")
	}
	if len(s.Maturities) != len(s.Rates) {
		return errs.Input("curve: %d maturities but %d rates", len(s.Maturities), len(s.Rates))
	}
	for i, r := range s.Rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return errs.Input("curve: rate %d (%s) is not a number", i, s.Maturities[i])
		}
	}
	return nil
}

// quotedBond is one synthetic par bond with its cashflow times precomputed.
type quotedBond struct {
	node    Node
	times   []float64
	amounts []float64
}

func (s Spec) bonds() ([]quotedBond, error) {
	cal := s.Calendar
	if cal == "" {
		cal = calendar.USD
	}
	conv := s.Convention
	if conv == "" {
		conv = calendar.Unadjusted
	}

	out := make([]quotedBond, 0, len(s.Maturities))
	for i, tenor := range s.Maturities {
		months, err := TenorMonths(tenor)
		if err != nil {
			return nil, err
		}
		maturity := utils.AddMonth(s.ValuationDate, months)
		cfs, err := bond.ParBond(bond.ParBondSpec{
			Issue:      s.ValuationDate,
			Maturity:   maturity,
			CouponPct:  s.Rates[i],
			Frequency:  CouponFrequency,
			Calendar:   cal,
			Convention: conv,
		})
		if err != nil {
			return nil, errs.Input("curve: %s bond: %v", tenor, err)
		}
		qb := quotedBond{
			node: Node{
				Tenor:    tenor,
				Maturity: maturity,
				Time:     utils.ActActISDA(s.ValuationDate, maturity),
				ParRate:  s.Rates[i],
			},
		}
		for _, cf := range cfs {
			qb.times = append(qb.times, utils.ActActISDA(s.ValuationDate, cf.Date))
			qb.amounts = append(qb.amounts, cf.Amount())
		}
		out = append(out, qb)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].node.Time < out[j].node.Time })
	for i := 1; i < len(out); i++ {
		if out[i].node.Maturity.Equal(out[i-1].node.Maturity) {
			return nil, errs.Input("curve: tenors %s and %s share maturity %s",
				out[i-1].node.Tenor, out[i].node.Tenor, utils.FormatDate(out[i].node.Maturity))
		}
	}
	return out, nil
}

// fitLogDF interpolates log discount factors through the pillars.
func fitLogDF(times, logDF []float64) (interp.Predictor, error) {
	if len(times) < 3 {
		var pl interp.PiecewiseLinear
		if err := pl.Fit(times, logDF); err != nil {
			return nil, err
		}
		return &pl, nil
	}
	var nc interp.NaturalCubic
	if err := nc.Fit(times, logDF); err != nil {
		return nil, err
	}
	return &nc, nil
}

// logDFAt evaluates the log discount factor at curve time t.
func logDFAt(spline interp.Predictor, times, logDF []float64, t float64) float64 {
	if t <= 0 {
		return 0
	}
	last := len(times) - 1
	if t <= times[last] {
		return spline.Predict(t)
	}
	slope := (logDF[last] - logDF[last-1]) / (times[last] - times[last-1])
	return logDF[last] + slope*(t-times[last])
}

// ValuationDate returns the date at which DiscountFactor(0) = 1.
func (c *Curve) ValuationDate() time.Time {
	return c.valuation
}

// Nodes returns the fitted pillars, shortest maturity first.
func (c *Curve) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Iterations is the number of Newton steps the fit took.
func (c *Curve) Iterations() int {
	return c.iterations
}

// Residual is the largest absolute repricing error of the input bonds, per 100 face.
func (c *Curve) Residual() float64 {
	return c.residual
}

// DF returns the discount factor for date t.
func (c *Curve) DF(t time.Time) float64 {
	yf := utils.ActActISDA(c.valuation, t)
	return math.Exp(logDFAt(c.spline, c.times, c.logDF, yf))
}

// MonthDate is the valuation date moved forward m months, the day clamped to the month length.
func (c *Curve) MonthDate(m int) time.Time {
	return utils.AddMonth(c.valuation, m)
}

// DiscountFactor is the present value of 1 paid m months after the valuation date.
func (c *Curve) DiscountFactor(m int) float64 {
	if m == 0 {
		return 1
	}
	return c.DF(c.MonthDate(m))
}

// ForwardRate is the simple annualized one-month forward rate starting m months after the
// valuation date, as a decimal, accrued ACT/ACT (bond basis).
func (c *Curve) ForwardRate(m int) float64 {
	start, end := c.MonthDate(m), c.MonthDate(m+1)
	tau := utils.ICMAFraction(start, end, start, end, 12)
	return (c.DiscountFactor(m)/c.DiscountFactor(m+1) - 1) / tau
}

// ZeroRate is the continuously compounded zero rate in percent for month m.
func (c *Curve) ZeroRate(m int) float64 {
	if m == 0 {
		return 0
	}
	yf := utils.ActActISDA(c.valuation, c.MonthDate(m))
	return -math.Log(c.DiscountFactor(m)) / yf * 100
}

// DiscountTable returns DiscountFactor(0..months).
func (c *Curve) DiscountTable(months int) []float64 {
	out := make([]float64, months+1)
	for m := range out {
		out[m] = c.DiscountFactor(m)
	}
	return out
}

// ForwardTable returns ForwardRate(0..months-1).
func (c *Curve) ForwardTable(months int) []float64 {
	out := make([]float64, months)
	for m := range out {
		out[m] = c.ForwardRate(m)
	}
	return out
}

// Anomalies lists negative discount factors, discount factors above one (negative zero
// rates) and negative forward rates over months 0..months. They are implied by the quotes
// and are not errors.
func (c *Curve) Anomalies(months int) []errs.Anomaly {
	var out []errs.Anomaly
	for m := 0; m <= months; m++ {
		switch df := c.DiscountFactor(m); {
		case df < 0:
			out = append(out, errs.Anomaly{Month: m, Kind: errs.NegativeDiscountFactor, Value: df})
		case m > 0 && df > 1:
			out = append(out, errs.Anomaly{Month: m, Kind: errs.NegativeZeroRate, Value: df})
		}
		if m == months {
			break
		}
		if fwd := c.ForwardRate(m); fwd < 0 {
			out = append(out, errs.Anomaly{Month: m, Kind: errs.NegativeForwardRate, Value: fwd})
		}
	}
	return out
}
