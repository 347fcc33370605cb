package loan

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/rmbs/errs"
)

// Schedule is a loan's projected monthly path, indexed by months since the valuation date.
//
// All three series have length Remaining()+1. Balance[0] is the current balance and
// Interest[0] = Principal[0] = 0; the cashflow for month k is paid at the end of month k.
type Schedule struct {
	Balance   []float64
	Interest  []float64
	Principal []float64
}

// Len is the number of months covered including month 0.
func (s Schedule) Len() int {
	return len(s.Balance)
}

// Cashflow returns interest plus principal paid in month k.
func (s Schedule) Cashflow(k int) float64 {
	return s.Interest[k] + s.Principal[k]
}

// Amortize projects rec under a constant CPR (annual percent).
//
// The balance factor for month k is the product of a prepayment survival (1-CPR/1200)^k and
// the level-payment scheduled balance factor
//
//	[(1+r)^T - (1+r)^(A+k)] / [(1+r)^T - (1+r)^A],   r = NoteRate/1200
//
// normalized to 1 at the loan's current age. Interest accrues at the pass-through coupon on
// the prior balance. A zero note rate uses the r -> 0 limit of that factor, straight-line
// amortization (T-A-k)/(T-A).
func Amortize(rec Record, cpr float64) (Schedule, error) {
	if err := rec.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := ValidateCPR(cpr); err != nil {
		return Schedule{}, err
	}

	survival := 1 - cpr/1200
	noteRate := rec.NoteRate / 1200
	coupon := rec.Coupon / 1200
	remaining := rec.Remaining()

	balance := make([]float64, remaining+1)
	interest := make([]float64, remaining+1)
	principal := make([]float64, remaining+1)

	balance[0] = rec.CurrentBalance
	scheduled, err := scheduledFactor(noteRate, rec.Term, rec.Age)
	if err != nil {
		return Schedule{}, errs.Domain("loan %q: %v", rec.ID, err)
	}
	surv := 1.0
	for k := 1; k <= remaining; k++ {
		surv *= survival
		balance[k] = rec.CurrentBalance * surv * scheduled(k)
		interest[k] = balance[k-1] * coupon
		principal[k] = balance[k-1] - balance[k]
	}
	return Schedule{Balance: balance, Interest: interest, Principal: principal}, nil
}

// scheduledFactor returns the no-prepayment balance factor k months after age, equal to 1
// at k = 0 and 0 at k = term-age. It fails when (1+r)^term is not representable.
func scheduledFactor(monthlyRate float64, term, age int) (func(k int) float64, error) {
	if monthlyRate == 0 {
		n := float64(term - age)
		return func(k int) float64 {
			return (n - float64(k)) / n
		}, nil
	}
	growth := 1 + monthlyRate
	full := math.Pow(growth, float64(term))
	denom := full - math.Pow(growth, float64(age))
	if math.IsInf(full, 0) || math.IsNaN(full) || math.IsInf(denom, 0) || math.IsNaN(denom) || denom == 0 {
		return nil, fmt.Errorf("annuity factor overflows at note rate %.4f%% over %d months", monthlyRate*1200, term)
	}
	return func(k int) float64 {
		return (full - math.Pow(growth, float64(age+k))) / denom
	}, nil
}

// AmortizeAll runs Amortize over the pool concurrently and returns schedules in input order.
// workers <= 0 means GOMAXPROCS.
func AmortizeAll(ctx context.Context, recs []Record, cpr float64, workers int) ([]Schedule, error) {
	if err := ValidateCPR(cpr); err != nil {
		return nil, err
	}
	out := make([]Schedule, len(recs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))
	for i := range recs {
		i := i
		g.Go(func() error {
			s, err := Amortize(recs[i], cpr)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Workers resolves a worker count, defaulting to GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
