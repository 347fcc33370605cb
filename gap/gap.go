// Package gap measures net interest margin: pool interest income against the cost of
// funding the outstanding balance.
package gap

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
	"github.com/meenmo/rmbs/portfolio"
)

// Row is one month of the gap forecast.
type Row struct {
	T           int
	IntReceived float64
	FundingPaid float64 // <= 0 for positive rates
	Gap         float64
}

// Forecast covers months 1..MaxWAM; no cashflow occurs at the valuation date.
type Forecast struct {
	MaxWAM int
	Rows   []Row
}

// Compute projects every loan under cpr and nets its interest against funding:
//
//	funding_paid[k] = -balance[k-1] * rate(k) / 12
//
// Per-loan streams are summed on the absolute month axis through private per-worker
// partial sums. A funding curve shorter than the pool's longest remaining term is rejected.
func Compute(ctx context.Context, recs []loan.Record, cpr float64, funding FundingCurve, workers int) (Forecast, error) {
	if len(recs) == 0 {
		return Forecast{}, errs.Input("gap.Compute: empty pool")
	}
	if err := loan.ValidateCPR(cpr); err != nil {
		return Forecast{}, err
	}
	for _, r := range recs {
		if err := r.Validate(); err != nil {
			return Forecast{}, err
		}
	}
	maxWAM := loan.MaxRemaining(recs)
	if funding.Len() < maxWAM {
		return Forecast{}, errs.Input("gap.Compute: funding curve covers %d months, pool needs %d", funding.Len(), maxWAM)
	}

	chunks := portfolio.Chunks(len(recs), loan.Workers(workers))
	incomes := make([][]float64, len(chunks))
	costs := make([][]float64, len(chunks))

	g, _ := errgroup.WithContext(ctx)
	for c, bounds := range chunks {
		c, bounds := c, bounds
		g.Go(func() error {
			income := make([]float64, maxWAM+1)
			cost := make([]float64, maxWAM+1)
			for _, rec := range recs[bounds[0]:bounds[1]] {
				s, err := loan.Amortize(rec, cpr)
				if err != nil {
					return err
				}
				for k := 1; k < s.Len(); k++ {
					income[k] += s.Interest[k]
					cost[k] -= s.Balance[k-1] * funding.Rate(k) / 12
				}
			}
			incomes[c], costs[c] = income, cost
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Forecast{}, err
	}

	income, cost := incomes[0], costs[0]
	for c := 1; c < len(chunks); c++ {
		floats.Add(income, incomes[c])
		floats.Add(cost, costs[c])
	}

	rows := make([]Row, maxWAM)
	for t := 1; t <= maxWAM; t++ {
		rows[t-1] = Row{T: t, IntReceived: income[t], FundingPaid: cost[t], Gap: income[t] + cost[t]}
	}
	return Forecast{MaxWAM: maxWAM, Rows: rows}, nil
}

// Cumulative returns the running sum of the gap by month.
func (f Forecast) Cumulative() []float64 {
	out := make([]float64, len(f.Rows))
	sum := 0.0
	for i, r := range f.Rows {
		sum += r.Gap
		out[i] = sum
	}
	return out
}

// Total is the undiscounted sum of the gap over the forecast.
func (f Forecast) Total() float64 {
	total := 0.0
	for _, r := range f.Rows {
		total += r.Gap
	}
	return total
}
