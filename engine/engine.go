// Package engine runs a pool scenario end to end: load the loan snapshot, fit the discount
// curve, project the pool, price it and measure the funding gap.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/rmbs/calendar"
	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/curve"
	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/gap"
	"github.com/meenmo/rmbs/loan"
	"github.com/meenmo/rmbs/marketdata/treasury"
	"github.com/meenmo/rmbs/portfolio"
	"github.com/meenmo/rmbs/store"
	"github.com/meenmo/rmbs/valuation"
)

// Result holds everything a scenario run produces.
type Result struct {
	ValuationDate  time.Time
	CPR            float64
	Loans          []loan.Record
	Curve          *curve.Curve
	Forecast       portfolio.Forecast
	Prices         []valuation.PricedLoan
	PortfolioPrice float64
	Yield          float64 // pool yield in percent at PortfolioPrice
	YieldSolved    bool
	Gap            gap.Forecast
	Anomalies      []errs.Anomaly
}

// Runner executes scenarios. Quotes supplies par curves when a scenario carries none.
type Runner struct {
	log    zerolog.Logger
	Quotes treasury.QuoteSource
}

// NewRunner returns a runner logging to log and falling back to the bundled quotes.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log, Quotes: treasury.DefaultQuoteSource()}
}

// Run loads the scenario's loans and analyzes them.
func (r *Runner) Run(ctx context.Context, s config.Scenario) (Result, error) {
	src, closeSrc, err := OpenSource(ctx, s.Loans)
	if err != nil {
		return Result{}, err
	}
	defer closeSrc()

	start := time.Now()
	recs, err := src.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load loans: %w", err)
	}
	r.log.Info().Int("loans", len(recs)).Dur("elapsed", time.Since(start)).Msg("loan snapshot loaded")
	return r.Analyze(ctx, s, recs)
}

// Analyze runs the curve, forecast, valuation and gap stages for recs.
func (r *Runner) Analyze(ctx context.Context, s config.Scenario, recs []loan.Record) (Result, error) {
	date, err := s.Date()
	if err != nil {
		return Result{}, errs.Input("scenario: %v", err)
	}
	if err := loan.ValidateCPR(s.CPR); err != nil {
		return Result{}, err
	}
	cfg := s.Config()
	res := Result{ValuationDate: date, CPR: s.CPR, Loans: recs}

	if res.Curve, err = r.BuildCurve(s, cfg); err != nil {
		return Result{}, err
	}

	if res.Forecast, err = portfolio.Project(ctx, recs, s.CPR, cfg.Workers); err != nil {
		return Result{}, fmt.Errorf("forecast: %w", err)
	}
	maxWAM := res.Forecast.MaxWAM
	logRunoff(r.log, res.Forecast)

	res.Anomalies = res.Curve.Anomalies(maxWAM)
	for _, a := range res.Anomalies {
		r.log.Warn().Int("month", a.Month).Str("kind", string(a.Kind)).Float64("value", a.Value).Msg("curve anomaly")
	}

	dfs := res.Curve.DiscountTable(maxWAM)
	if res.Prices, err = valuation.Price(ctx, recs, s.CPR, dfs, cfg.Workers); err != nil {
		return Result{}, fmt.Errorf("price: %w", err)
	}
	res.PortfolioPrice = valuation.PortfolioPrice(res.Prices)
	ev := r.log.Info().Float64("price", res.PortfolioPrice).Float64("cpr", s.CPR)
	if res.Yield, res.YieldSolved = r.poolYield(res.Forecast, res.PortfolioPrice, cfg); res.YieldSolved {
		ev = ev.Float64("yield_pct", res.Yield)
	}
	ev.Msg("pool priced")

	funding, err := Funding(s.Funding, res.Curve, maxWAM)
	if err != nil {
		return Result{}, err
	}
	if res.Gap, err = gap.Compute(ctx, recs, s.CPR, funding, cfg.Workers); err != nil {
		return Result{}, fmt.Errorf("gap: %w", err)
	}
	r.log.Info().Str("funding", s.Funding.Source).Float64("total_gap", res.Gap.Total()).Msg("gap computed")
	return res, nil
}

// poolYield solves the yield of the aggregated pool cashflows at price. A solver failure is
// logged and reported as unsolved; it does not fail the run.
func (r *Runner) poolYield(f portfolio.Forecast, price float64, cfg config.Config) (float64, bool) {
	pool := loan.Schedule{Balance: f.Balance, Interest: f.Interest, Principal: f.Principal}
	y, iters, err := valuation.Yield(pool, price, cfg)
	if err != nil {
		r.log.Warn().Err(err).Float64("price", price).Msg("pool yield not solved")
		return 0, false
	}
	r.log.Debug().Int("iterations", iters).Msg("pool yield solved")
	return y, true
}

// BuildCurve fits the scenario's par curve, or the quote source's snapshot for the
// valuation date when the scenario has no quotes.
func (r *Runner) BuildCurve(s config.Scenario, cfg config.Config) (*curve.Curve, error) {
	spec, err := r.curveSpec(s)
	if err != nil {
		return nil, err
	}
	c, err := curve.Build(spec, cfg)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	r.log.Info().
		Int("pillars", len(spec.Maturities)).
		Int("iterations", c.Iterations()).
		Float64("residual", c.Residual()).
		Msg("discount curve fitted")
	return c, nil
}

func (r *Runner) curveSpec(s config.Scenario) (curve.Spec, error) {
	date, err := s.Date()
	if err != nil {
		return curve.Spec{}, errs.Input("scenario: %v", err)
	}
	cal, err := calendar.ParseCalendar(s.Treasury.Calendar)
	if err != nil {
		return curve.Spec{}, err
	}
	conv, err := calendar.ParseConvention(s.Treasury.Convention)
	if err != nil {
		return curve.Spec{}, err
	}

	var spec curve.Spec
	switch {
	case len(s.Treasury.Tenors) > 0:
		spec = curve.Spec{ValuationDate: date, Maturities: s.Treasury.Tenors, Rates: s.Treasury.Rates}
	case r.Quotes == nil:
		return curve.Spec{}, errs.Input("scenario: no treasury quotes")
	default:
		q, ok := r.Quotes.QuotesOn(date)
		if !ok {
			return curve.Spec{}, errs.Input("scenario: no treasury quotes for %s", s.ValuationDate)
		}
		r.log.Debug().Str("date", s.ValuationDate).Msg("using bundled treasury quotes")
		spec = q.Spec()
	}
	spec.Calendar = cal
	spec.Convention = conv
	return spec, nil
}

// Funding builds the funding curve for months 1..months. Flat funding is flat_rate percent
// plus the spread; treasury funding is the curve's one-month forwards plus the spread.
func Funding(fc config.FundingConfig, c *curve.Curve, months int) (gap.FundingCurve, error) {
	if months <= 0 {
		return gap.FundingCurve{}, errs.Input("funding: months %d must be positive", months)
	}
	switch strings.ToLower(fc.Source) {
	case config.FundingFlat:
		return gap.FlatFunding(fc.FlatRate/100+fc.SpreadBP/1e4, months)
	case config.FundingTreasury, "":
		if c == nil {
			return gap.FundingCurve{}, errs.Input("funding: treasury funding needs a curve")
		}
		return gap.FundingFromCurve(c, months, fc.SpreadBP)
	default:
		return gap.FundingCurve{}, errs.Input("funding: unsupported source %q", fc.Source)
	}
}

// OpenSource resolves the configured loan snapshot. The returned close function releases
// any database handle.
func OpenSource(ctx context.Context, lc config.LoansConfig) (store.Source, func() error, error) {
	noop := func() error { return nil }
	switch {
	case lc.CSV != "":
		return store.CSVSource{Path: lc.CSV}, noop, nil
	case lc.XLSX != "":
		return store.XLSXSource{Path: lc.XLSX, Sheet: lc.Sheet}, noop, nil
	case lc.PostgresDSN != "":
		db, err := store.OpenPostgres(ctx, lc.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return store.PostgresSource{DB: db, Table: lc.Table}, db.Close, nil
	default:
		return nil, noop, errs.Input("scenario: no loan source")
	}
}

func logRunoff(log zerolog.Logger, f portfolio.Forecast) {
	ev := log.Info().Int("max_wam", f.MaxWAM).Float64("balance", f.Balance[0])
	if m, ok := f.MonthsToRunoff(0.5); ok {
		ev = ev.Int("half_life_months", m)
	}
	ev.Float64("avg_runoff_12m", f.AverageRunoff(12)).Msg("pool projected")
}
