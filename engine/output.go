package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meenmo/rmbs/report"
	"github.com/meenmo/rmbs/utils"
)

// Summary lists the headline numbers of a run.
func Summary(res Result) []report.Metric {
	f := res.Forecast
	yield := any("unsolved")
	if res.YieldSolved {
		yield = res.Yield
	}
	half := any("never")
	if m, ok := f.MonthsToRunoff(0.5); ok {
		half = m
	}
	return []report.Metric{
		{Name: "valuation_date", Value: utils.FormatDate(res.ValuationDate)},
		{Name: "cpr", Value: res.CPR},
		{Name: "loans", Value: len(res.Loans)},
		{Name: "max_wam", Value: f.MaxWAM},
		{Name: "balance", Value: report.Cents(f.Balance[0])},
		{Name: "portfolio_price", Value: res.PortfolioPrice},
		{Name: "yield_pct", Value: yield},
		{Name: "half_life_months", Value: half},
		{Name: "avg_runoff_12m", Value: report.Cents(f.AverageRunoff(12))},
		{Name: "total_gap", Value: report.Cents(res.Gap.Total())},
		{Name: "curve_iterations", Value: res.Curve.Iterations()},
		{Name: "curve_anomalies", Value: len(res.Anomalies)},
	}
}

// Tables renders a result as its output tables, summary last.
func Tables(res Result) []report.Table {
	return []report.Table{
		report.ForecastTable(res.Forecast),
		report.CurveTable(res.Curve, res.Forecast.MaxWAM),
		report.PricesTable(res.Prices),
		report.GapTable(res.Gap),
		report.SummaryTable(Summary(res)),
	}
}

// WriteOutputs writes one file per table into dir (csv, json), or a single workbook
// (xlsx), and returns the paths written.
func (r *Runner) WriteOutputs(res Result, dir, format string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("WriteOutputs: %w", err)
	}
	tables := Tables(res)
	if format == report.FormatXLSX {
		path := filepath.Join(dir, "rmbs.xlsx")
		if err := writeFile(path, func(f *os.File) error { return report.WriteXLSX(f, tables...) }); err != nil {
			return nil, err
		}
		r.log.Info().Str("path", path).Msg("report written")
		return []string{path}, nil
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+"."+format)
		if err := writeFile(path, func(f *os.File) error { return report.Write(f, format, t) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	r.log.Info().Str("dir", dir).Int("files", len(paths)).Msg("reports written")
	return paths, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteOutputs: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteOutputs: %w", err)
	}
	return nil
}
