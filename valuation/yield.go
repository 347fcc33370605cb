package valuation

import (
	"fmt"
	"math"

	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/loan"
)

const (
	yieldFloor   = -0.99
	yieldCeiling = 1.0
)

// Yield solves for the annual mortgage yield y (percent, monthly compounding) at which the
// schedule's cashflows are worth price per 100 of current balance:
//
//	price/100 * balance[0] = Σ_k CF_k / (1 + y/1200)^k
//
// The solver uses Newton-Raphson with analytic first derivative.
func Yield(s loan.Schedule, price float64, cfg config.Config) (float64, int, error) {
	cfg = cfg.WithDefaults()
	if s.Len() < 2 || s.Balance[0] <= 0 {
		return 0, 0, fmt.Errorf("Yield: schedule has no cashflows")
	}
	if price <= 0 {
		return 0, 0, fmt.Errorf("Yield: price must be positive")
	}
	target := price / 100 * s.Balance[0]

	// Initial guess: the coupon the schedule pays in its first month, annualized.
	y := clamp(12*s.Interest[1]/s.Balance[0], yieldFloor, yieldCeiling)
	for iter := 0; iter < cfg.MaxYieldIterations; iter++ {
		pv, dPdy := pvAndDeriv(s, y)
		f := pv - target
		if math.Abs(f) < cfg.YieldTolerance*s.Balance[0]/100 {
			return y * 100, iter + 1, nil
		}
		if math.Abs(dPdy) < cfg.DerivativeThreshold {
			return y * 100, iter + 1, fmt.Errorf("Yield: derivative too small at iter %d", iter)
		}
		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}
	return y * 100, cfg.MaxYieldIterations, fmt.Errorf("Yield: did not converge after %d iterations", cfg.MaxYieldIterations)
}

// pvAndDeriv returns (pv, dPV/dy) for an annual yield y compounded monthly.
//
//	pv    = Σ CF_k (1+y/12)^-k
//	dP/dy = Σ -k/12 · CF_k (1+y/12)^-(k+1)
func pvAndDeriv(s loan.Schedule, y float64) (float64, float64) {
	g := 1 + y/12
	var pv, deriv float64
	for k := 1; k < s.Len(); k++ {
		cf := s.Cashflow(k)
		disc := math.Pow(g, -float64(k))
		pv += cf * disc
		deriv += -float64(k) / 12 * cf * disc / g
	}
	return pv, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
