// Package report renders pool, curve, price and gap results as CSV, JSON or XLSX tables.
//
// Monetary columns are rounded to cents; ratios and rates keep a fixed number of decimals.
// Cells are strings, ints or decimal.Decimal values.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/rmbs/gap"
	"github.com/meenmo/rmbs/portfolio"
	"github.com/meenmo/rmbs/utils"
	"github.com/meenmo/rmbs/valuation"
)

// Decimal places per column kind.
const (
	CentPlaces  = 2
	PricePlaces = 6
	RatePlaces  = 8
	DFPlaces    = 10
)

// Table is a named header plus rows of cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Curve is the read side of a discount curve used by CurveTable.
type Curve interface {
	MonthDate(m int) time.Time
	DiscountFactor(m int) float64
	ZeroRate(m int) float64
	ForwardRate(m int) float64
}

func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// Cents rounds a monetary amount to two decimals.
func Cents(v float64) decimal.Decimal {
	return round(v, CentPlaces)
}

// ForecastTable lists the pool forecast by absolute month 0..MaxWAM.
func ForecastTable(f portfolio.Forecast) Table {
	t := Table{
		Name:   "forecast",
		Header: []string{"t", "balance", "interest", "principal", "cashflow", "bal_frac"},
		Rows:   make([][]any, 0, f.MaxWAM+1),
	}
	for m := 0; m <= f.MaxWAM; m++ {
		t.Rows = append(t.Rows, []any{
			m,
			Cents(f.Balance[m]),
			Cents(f.Interest[m]),
			Cents(f.Principal[m]),
			Cents(f.Cashflow(m)),
			round(f.BalFrac[m], RatePlaces),
		})
	}
	return t
}

// PricesTable lists per-loan prices per 100 of balance.
func PricesTable(priced []valuation.PricedLoan) Table {
	t := Table{
		Name:   "prices",
		Header: []string{"loan_id", "balance", "price"},
		Rows:   make([][]any, 0, len(priced)),
	}
	for _, p := range priced {
		t.Rows = append(t.Rows, []any{p.ID, Cents(p.Balance), round(p.Price, PricePlaces)})
	}
	return t
}

// GapTable lists the monthly interest margin and its running total.
func GapTable(f gap.Forecast) Table {
	t := Table{
		Name:   "gap",
		Header: []string{"t", "int_received", "funding_paid", "gap", "cumulative_gap"},
		Rows:   make([][]any, 0, len(f.Rows)),
	}
	cum := f.Cumulative()
	for i, r := range f.Rows {
		t.Rows = append(t.Rows, []any{r.T, Cents(r.IntReceived), Cents(r.FundingPaid), Cents(r.Gap), Cents(cum[i])})
	}
	return t
}

// CurveTable lists discount factors, zero rates (percent) and one-month forward rates
// (decimal) for months 0..months.
func CurveTable(c Curve, months int) Table {
	t := Table{
		Name:   "curve",
		Header: []string{"t", "date", "df", "zero_pct", "fwd"},
		Rows:   make([][]any, 0, max(months+1, 0)),
	}
	for m := 0; m <= months; m++ {
		t.Rows = append(t.Rows, []any{
			m,
			utils.FormatDate(c.MonthDate(m)),
			round(c.DiscountFactor(m), DFPlaces),
			round(c.ZeroRate(m), RatePlaces),
			round(c.ForwardRate(m), RatePlaces),
		})
	}
	return t
}

// Metric is one line of a run summary.
type Metric struct {
	Name  string
	Value any
}

// SummaryTable lists scalar results of a run in order.
func SummaryTable(metrics []Metric) Table {
	t := Table{Name: "summary", Header: []string{"metric", "value"}}
	for _, m := range metrics {
		t.Rows = append(t.Rows, []any{m.Name, m.Value})
	}
	return t
}
