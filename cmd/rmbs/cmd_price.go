package main

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/report"
)

func (a *app) priceCmd() *cobra.Command {
	var (
		lf loanFlags
		cf curveFlags
	)
	cmd := &cobra.Command{
		Use:     "price",
		Short:   "Price each loan per 100 of balance off the treasury curve",
		Example: `  rmbs price --loans loans.csv --cpr 8 --date 2022-10-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadLoans(cmd.Context(), &lf)
			if err != nil {
				return err
			}
			s := cf.scenario()
			s.CPR = lf.cpr
			s.Workers = a.workers
			res, err := a.runner().Analyze(cmd.Context(), s, recs)
			if err != nil {
				return err
			}
			return a.write(report.PricesTable(res.Prices))
		},
	}
	lf.register(cmd)
	cf.register(cmd)
	return cmd
}
