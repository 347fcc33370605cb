package main

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/report"
)

func (a *app) gapCmd() *cobra.Command {
	var (
		lf      loanFlags
		cf      curveFlags
		funding config.FundingConfig
	)
	cmd := &cobra.Command{
		Use:   "gap",
		Short: "Net pool interest against the cost of funding its balance",
		Example: `  rmbs gap --loans loans.csv --cpr 8 --date 2022-10-31 --spread-bp 25
  rmbs gap --loans loans.csv --cpr 8 --date 2022-10-31 --funding flat --flat-rate 4.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadLoans(cmd.Context(), &lf)
			if err != nil {
				return err
			}
			s := cf.scenario()
			s.CPR = lf.cpr
			s.Workers = a.workers
			s.Funding = funding
			res, err := a.runner().Analyze(cmd.Context(), s, recs)
			if err != nil {
				return err
			}
			return a.write(report.GapTable(res.Gap))
		},
	}
	lf.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVar(&funding.Source, "funding", config.FundingTreasury, "Funding curve (treasury|flat)")
	cmd.Flags().Float64Var(&funding.FlatRate, "flat-rate", 0, "Flat funding rate in percent (with --funding flat)")
	cmd.Flags().Float64Var(&funding.SpreadBP, "spread-bp", 0, "Funding spread in basis points")
	return cmd
}
