package main

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/portfolio"
	"github.com/meenmo/rmbs/report"
)

func (a *app) forecastCmd() *cobra.Command {
	var lf loanFlags
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project pool balance, interest and principal by month",
		Example: `  rmbs forecast --loans loans.csv --cpr 8
  rmbs forecast --loans loans.xlsx --cpr 12 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadLoans(cmd.Context(), &lf)
			if err != nil {
				return err
			}
			f, err := portfolio.Project(cmd.Context(), recs, lf.cpr, a.workers)
			if err != nil {
				return err
			}
			ev := a.log.Info().Int("max_wam", f.MaxWAM).Float64("avg_runoff_12m", f.AverageRunoff(12))
			if m, ok := f.MonthsToRunoff(0.5); ok {
				ev = ev.Int("half_life_months", m)
			}
			ev.Msg("pool projected")
			return a.write(report.ForecastTable(f))
		},
	}
	lf.register(cmd)
	return cmd
}
