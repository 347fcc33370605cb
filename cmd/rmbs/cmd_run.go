package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/config"
)

func (a *app) runCmd() *cobra.Command {
	var (
		path string
		out  string
	)
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a YAML scenario and write every result table",
		Example: `  rmbs run --config scenario.yaml --out results`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.LoadScenario(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				s.Workers = a.workers
			}
			if cmd.Flags().Changed("format") {
				s.Output.Format = a.format
			}
			if out != "" {
				s.Output.Dir = out
			}
			if s.Output.Dir == "" {
				s.Output.Dir = "."
			}

			r := a.runner()
			res, err := r.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			paths, err := r.WriteOutputs(res, s.Output.Dir, s.Output.Format)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "Scenario YAML file")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (overrides output.dir)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
