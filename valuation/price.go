// Package valuation prices loans by discounting their projected cashflows off a curve.
package valuation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

// PricedLoan is a loan's price per 100 of current balance.
type PricedLoan struct {
	ID      string
	Price   float64
	Balance float64
}

// PriceSchedule discounts a projected schedule:
//
//	price = 100 * Σ_{k=1..n} dfs[k] * (interest[k] + principal[k]) / balance[0]
//
// dfs[k] is the discount factor k months after the valuation date and must cover every
// month of the schedule.
func PriceSchedule(s loan.Schedule, dfs []float64) (float64, error) {
	if s.Len() == 0 || s.Balance[0] <= 0 {
		return 0, errs.Input("PriceSchedule: empty schedule")
	}
	if len(dfs) < s.Len() {
		return 0, errs.Domain("PriceSchedule: discount table covers %d months, schedule needs %d",
			len(dfs)-1, s.Len()-1)
	}
	pv := 0.0
	for k := 1; k < s.Len(); k++ {
		pv += dfs[k] * s.Cashflow(k)
	}
	return 100 * pv / s.Balance[0], nil
}

// Price projects every loan under cpr and prices it off dfs, concurrently across loans.
// Results are in input order. A discount table shorter than the longest remaining term is
// rejected before any loan is priced.
func Price(ctx context.Context, recs []loan.Record, cpr float64, dfs []float64, workers int) ([]PricedLoan, error) {
	if len(recs) == 0 {
		return nil, errs.Input("Price: empty pool")
	}
	if err := loan.ValidateCPR(cpr); err != nil {
		return nil, err
	}
	if need := loan.MaxRemaining(recs); len(dfs) < need+1 {
		return nil, errs.Domain("Price: discount table covers %d months, pool needs %d", len(dfs)-1, need)
	}

	out := make([]PricedLoan, len(recs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(loan.Workers(workers))
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			s, err := loan.Amortize(rec, cpr)
			if err != nil {
				return err
			}
			px, err := PriceSchedule(s, dfs)
			if err != nil {
				return err
			}
			out[i] = PricedLoan{ID: rec.ID, Price: px, Balance: rec.CurrentBalance}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PortfolioPrice is the balance-weighted average price.
func PortfolioPrice(priced []PricedLoan) float64 {
	var num, den float64
	for _, p := range priced {
		num += p.Price * p.Balance
		den += p.Balance
	}
	if den == 0 {
		return 0
	}
	return num / den
}
