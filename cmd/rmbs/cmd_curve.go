package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/report"
)

type curveFlags struct {
	date       string
	tenors     []string
	rates      []float64
	calendar   string
	convention string
}

func (f *curveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Valuation date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&f.tenors, "tenors", nil, "Par curve tenors, e.g. 1M,3M,1Y,10Y (default bundled snapshot)")
	cmd.Flags().Float64SliceVar(&f.rates, "rates", nil, "Par rates in percent, one per tenor")
	cmd.Flags().StringVar(&f.calendar, "calendar", "USD", "Holiday calendar for par bond payment dates (USD|NULL)")
	cmd.Flags().StringVar(&f.convention, "convention", "Unadjusted",
		"Business-day convention for par bond payment dates (Unadjusted|Following|ModifiedFollowing|Preceding)")
	_ = cmd.MarkFlagRequired("date")
}

func (f *curveFlags) scenario() config.Scenario {
	return config.Scenario{
		ValuationDate: f.date,
		Treasury: config.TreasuryConfig{
			Tenors:     f.tenors,
			Rates:      f.rates,
			Calendar:   f.calendar,
			Convention: f.convention,
		},
	}
}

func (a *app) curveCmd() *cobra.Command {
	var (
		cf     curveFlags
		months int
	)
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Fit the treasury discount curve and print discount factors and forwards",
		Example: `  rmbs curve --date 2022-10-31
  rmbs curve --date 2024-06-28 --tenors 1Y,2Y,5Y,10Y,30Y --rates 5.1,4.7,4.3,4.4,4.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months < 0 {
				return fmt.Errorf("--months %d must not be negative", months)
			}
			s := cf.scenario()
			s.Workers = a.workers
			c, err := a.runner().BuildCurve(s, s.Config())
			if err != nil {
				return err
			}
			for _, an := range c.Anomalies(months) {
				a.log.Warn().Int("month", an.Month).Str("kind", string(an.Kind)).Float64("value", an.Value).Msg("curve anomaly")
			}
			return a.write(report.CurveTable(c, months))
		},
	}
	cf.register(cmd)
	cmd.Flags().IntVar(&months, "months", 360, "Months to tabulate")
	return cmd
}
