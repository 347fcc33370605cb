// Package portfolio aggregates loan schedules onto a shared absolute-month axis.
package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
)

// Forecast is the pool's projected path indexed by absolute month t = 0..MaxWAM, where
// month 0 is the valuation date for every loan regardless of its age.
type Forecast struct {
	MaxWAM    int
	Balance   []float64
	Interest  []float64
	Principal []float64
	BalFrac   []float64
}

// Project amortizes every loan under cpr and aggregates the schedules.
func Project(ctx context.Context, recs []loan.Record, cpr float64, workers int) (Forecast, error) {
	if len(recs) == 0 {
		return Forecast{}, errs.Input("Project: empty pool")
	}
	schedules, err := loan.AmortizeAll(ctx, recs, cpr, workers)
	if err != nil {
		return Forecast{}, err
	}
	return Aggregate(ctx, schedules, workers)
}

// Aggregate sums schedules elementwise into fixed-length series of MaxWAM+1 months.
//
// Each loan contributes to the prefix [0, len(schedule)) and zero beyond its own horizon.
// Loans are split into contiguous chunks, one private partial sum per worker, and the
// partials are combined in chunk order once all workers finish.
func Aggregate(ctx context.Context, schedules []loan.Schedule, workers int) (Forecast, error) {
	if len(schedules) == 0 {
		return Forecast{}, errs.Input("Aggregate: no schedules")
	}
	maxWAM := 0
	for i, s := range schedules {
		if s.Len() == 0 || len(s.Interest) != s.Len() || len(s.Principal) != s.Len() {
			return Forecast{}, errs.Input("Aggregate: schedule %d has inconsistent series lengths", i)
		}
		if n := s.Len() - 1; n > maxWAM {
			maxWAM = n
		}
	}

	chunks := Chunks(len(schedules), loan.Workers(workers))
	partials := make([]Forecast, len(chunks))

	g, _ := errgroup.WithContext(ctx)
	for c, bounds := range chunks {
		c, bounds := c, bounds
		g.Go(func() error {
			acc := newForecast(maxWAM)
			for _, s := range schedules[bounds[0]:bounds[1]] {
				acc.add(s)
			}
			partials[c] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Forecast{}, err
	}

	out := partials[0]
	for _, p := range partials[1:] {
		floats.Add(out.Balance, p.Balance)
		floats.Add(out.Interest, p.Interest)
		floats.Add(out.Principal, p.Principal)
	}
	out.BalFrac = make([]float64, maxWAM+1)
	if out.Balance[0] > 0 {
		floats.ScaleTo(out.BalFrac, 1/out.Balance[0], out.Balance)
		out.BalFrac[0] = 1
	}
	return out, nil
}

func newForecast(maxWAM int) Forecast {
	return Forecast{
		MaxWAM:    maxWAM,
		Balance:   make([]float64, maxWAM+1),
		Interest:  make([]float64, maxWAM+1),
		Principal: make([]float64, maxWAM+1),
	}
}

// add writes s into the maturity-aligned prefix of each series.
func (f *Forecast) add(s loan.Schedule) {
	n := s.Len()
	floats.Add(f.Balance[:n], s.Balance)
	floats.Add(f.Interest[:n], s.Interest)
	floats.Add(f.Principal[:n], s.Principal)
}

// Chunks splits n items into at most parts contiguous [start, end) ranges of near-equal size.
func Chunks(n, parts int) [][2]int {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	out := make([][2]int, 0, parts)
	size, rem := n/parts, n%parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < rem {
			end++
		}
		out = append(out, [2]int{start, end})
		start = end
	}
	return out
}
