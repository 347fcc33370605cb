package gap

import (
	"math"

	"github.com/meenmo/rmbs/errs"
)

// FundingCurve holds annualized simple funding rates (decimals). Rate(k) is the rate paid
// over month k, k = 1..Len().
type FundingCurve struct {
	rates []float64
}

// NewFundingCurve wraps rates, where rates[k-1] applies to month k.
func NewFundingCurve(rates []float64) (FundingCurve, error) {
	if len(rates) == 0 {
		return FundingCurve{}, errs.Input("NewFundingCurve: no rates")
	}
	for i, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return FundingCurve{}, errs.Input("NewFundingCurve: rate for month %d is not a number", i+1)
		}
	}
	return FundingCurve{rates: append([]float64(nil), rates...)}, nil
}

// FlatFunding is a constant rate over months 1..months.
func FlatFunding(rate float64, months int) (FundingCurve, error) {
	if months <= 0 {
		return FundingCurve{}, errs.Input("FlatFunding: months %d must be positive", months)
	}
	rates := make([]float64, months)
	for i := range rates {
		rates[i] = rate
	}
	return NewFundingCurve(rates)
}

// ForwardCurve is the part of a discount curve the funding constructor needs.
type ForwardCurve interface {
	ForwardRate(m int) float64
}

// FundingFromCurve funds month k at the one-month forward starting at month k-1 plus a
// spread in basis points.
func FundingFromCurve(c ForwardCurve, months int, spreadBP float64) (FundingCurve, error) {
	if months <= 0 {
		return FundingCurve{}, errs.Input("FundingFromCurve: months %d must be positive", months)
	}
	rates := make([]float64, months)
	for k := 1; k <= months; k++ {
		rates[k-1] = c.ForwardRate(k-1) + spreadBP/10000
	}
	return NewFundingCurve(rates)
}

// Len is the number of months covered.
func (f FundingCurve) Len() int {
	return len(f.rates)
}

// Rate returns the annualized rate for month k (1-based).
func (f FundingCurve) Rate(k int) float64 {
	return f.rates[k-1]
}
