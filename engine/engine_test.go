package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/rmbs/calendar"
	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/curve"
	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/loan"
	"github.com/meenmo/rmbs/marketdata/treasury"
	"github.com/meenmo/rmbs/portfolio"
)

const loansCSV = `loan_id,note_rate,coupon,term,age,curr_bal
L1,6.25,5.75,360,12,310000
L2,5.50,5.00,360,48,180000
L3,4.75,4.25,180,30,95000
`

func scenario(t *testing.T) config.Scenario {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.csv")
	require.NoError(t, os.WriteFile(path, []byte(loansCSV), 0o644))
	return config.Scenario{
		ValuationDate: "2022-10-31",
		CPR:           8,
		Workers:       2,
		Loans:         config.LoansConfig{CSV: path},
		Funding:       config.FundingConfig{Source: config.FundingTreasury, SpreadBP: 25},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := NewRunner(zerolog.New(&logs))
	res, err := r.Run(context.Background(), scenario(t))
	require.NoError(t, err)

	assert.Len(t, res.Loans, 3)
	assert.Equal(t, 348, res.Forecast.MaxWAM)
	assert.Len(t, res.Prices, 3)
	assert.Len(t, res.Gap.Rows, 348)
	assert.Greater(t, res.PortfolioPrice, 80.0)
	assert.Less(t, res.PortfolioPrice, 120.0)
	assert.True(t, res.YieldSolved)
	assert.Greater(t, res.Yield, 2.0)
	assert.Less(t, res.Yield, 8.0)
	assert.InDelta(t, 1, res.Curve.DiscountFactor(0), 0)
	assert.Equal(t, time.Date(2022, 10, 31, 0, 0, 0, 0, time.UTC), res.ValuationDate)

	out := logs.String()
	assert.Contains(t, out, "loan snapshot loaded")
	assert.Contains(t, out, "discount curve fitted")
	assert.Contains(t, out, "pool priced")
	assert.Contains(t, out, "gap computed")
}

func TestRunner_AnalyzeWithScenarioQuotes(t *testing.T) {
	t.Parallel()

	q := treasury.Sample()
	s := config.Scenario{
		ValuationDate: "2022-10-31",
		CPR:           0,
		Treasury:      config.TreasuryConfig{Tenors: q.Tenors, Rates: q.Rates},
		Funding:       config.FundingConfig{Source: config.FundingFlat, FlatRate: 5.5},
	}
	recs := []loan.Record{{ID: "a", NoteRate: 6, Coupon: 5.5, Term: 120, Age: 0, CurrentBalance: 1000}}

	res, err := NewRunner(zerolog.Nop()).Analyze(context.Background(), s, recs)
	require.NoError(t, err)
	for _, row := range res.Gap.Rows {
		assert.InDelta(t, 0, row.Gap, 1e-9, "t=%d", row.T)
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Parallel()

	r := NewRunner(zerolog.Nop())
	ctx := context.Background()
	recs := []loan.Record{{ID: "a", NoteRate: 6, Coupon: 5.5, Term: 120, Age: 0, CurrentBalance: 1000}}

	s := scenario(t)
	s.ValuationDate = "2021-01-04"
	_, err := r.Analyze(ctx, s, recs)
	assert.ErrorIs(t, err, errs.ErrInput, "no bundled quotes")

	s = scenario(t)
	s.CPR = 1200
	_, err = r.Analyze(ctx, s, recs)
	assert.ErrorIs(t, err, errs.ErrInput)

	s = scenario(t)
	s.Loans = config.LoansConfig{CSV: filepath.Join(t.TempDir(), "missing.csv")}
	_, err = r.Run(ctx, s)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Funding(config.FundingConfig{Source: "libor"}, nil, 12)
	assert.ErrorIs(t, err, errs.ErrInput)
	_, err = Funding(config.FundingConfig{Source: config.FundingTreasury}, nil, 12)
	assert.ErrorIs(t, err, errs.ErrInput)

	_, _, err = OpenSource(ctx, config.LoansConfig{})
	assert.ErrorIs(t, err, errs.ErrInput)
}

func TestFunding_Flat(t *testing.T) {
	t.Parallel()

	f, err := Funding(config.FundingConfig{Source: config.FundingFlat, FlatRate: 4, SpreadBP: 50}, nil, 24)
	require.NoError(t, err)
	assert.Equal(t, 24, f.Len())
	assert.InDelta(t, 0.045, f.Rate(1), 1e-15)
	assert.InDelta(t, 0.045, f.Rate(24), 1e-15)
}

func TestRunner_WriteOutputs(t *testing.T) {
	t.Parallel()

	r := NewRunner(zerolog.Nop())
	res, err := r.Run(context.Background(), scenario(t))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := r.WriteOutputs(res, dir, "csv")
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, name := range []string{"forecast.csv", "curve.csv", "prices.csv", "gap.csv", "summary.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	raw, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "loans,3")

	paths, err = r.WriteOutputs(res, dir, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "rmbs.xlsx")}, paths)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	res, err := NewRunner(zerolog.Nop()).Run(context.Background(), scenario(t))
	require.NoError(t, err)

	got := map[string]any{}
	for _, m := range Summary(res) {
		got[m.Name] = m.Value
	}
	assert.Equal(t, "2022-10-31", got["valuation_date"])
	assert.Equal(t, 3, got["loans"])
	assert.Equal(t, 348, got["max_wam"])
	assert.Equal(t, "585000", got["balance"].(interface{ String() string }).String())
}

func TestRunner_PoolYieldFailureKeepsResults(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := NewRunner(zerolog.New(&logs))
	f, err := portfolio.Project(context.Background(), []loan.Record{
		{ID: "a", NoteRate: 6, Coupon: 5.5, Term: 120, Age: 0, CurrentBalance: 1000},
	}, 5, 1)
	require.NoError(t, err)

	strict := config.Config{MaxYieldIterations: 1, YieldTolerance: 1e-300}
	y, ok := r.poolYield(f, 97, strict)
	assert.False(t, ok)
	assert.Zero(t, y)
	assert.Contains(t, logs.String(), "pool yield not solved")

	y, ok = r.poolYield(f, 97, config.DefaultConfig)
	assert.True(t, ok)
	assert.Greater(t, y, 5.5)

	res := Result{ValuationDate: time.Date(2022, 10, 31, 0, 0, 0, 0, time.UTC), Forecast: f}
	for _, m := range Summary(resWithCurve(t, res)) {
		if m.Name == "yield_pct" {
			assert.Equal(t, "unsolved", m.Value)
		}
	}
}

func resWithCurve(t *testing.T, res Result) Result {
	t.Helper()
	c, err := curve.Build(treasury.Sample().Spec(), config.DefaultConfig)
	require.NoError(t, err)
	res.Curve = c
	return res
}

func TestRunner_CurveSpecCalendarAndConvention(t *testing.T) {
	t.Parallel()

	r := NewRunner(zerolog.Nop())
	s := scenario(t)
	spec, err := r.curveSpec(s)
	require.NoError(t, err)
	assert.Equal(t, calendar.USD, spec.Calendar)
	assert.Equal(t, calendar.Unadjusted, spec.Convention)

	s.Treasury.Calendar = "null"
	s.Treasury.Convention = "modified following"
	spec, err = r.curveSpec(s)
	require.NoError(t, err)
	assert.Equal(t, calendar.NullCalendar, spec.Calendar)
	assert.Equal(t, calendar.ModifiedFollowing, spec.Convention)
	assert.Len(t, spec.Maturities, 13)

	s.Treasury.Convention = "following"
	s.Treasury.Calendar = ""
	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, res.Prices, 3)

	s.Treasury.Convention = "nearest"
	_, err = r.curveSpec(s)
	assert.ErrorIs(t, err, errs.ErrInput)
}
