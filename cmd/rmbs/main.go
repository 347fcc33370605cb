package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/rmbs/config"
	"github.com/meenmo/rmbs/engine"
	"github.com/meenmo/rmbs/loan"
	"github.com/meenmo/rmbs/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries the flags and streams shared by every subcommand.
type app struct {
	stdout, stderr io.Writer
	logLevel       string
	workers        int
	format         string
	log            zerolog.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		a.log.Error().Err(err).Msg("rmbs failed")
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rmbs",
		Short: "Seasoned mortgage pool cashflows, treasury curve and valuation",
		Long: `rmbs projects monthly cashflows for a pool of fixed-rate mortgage loans under a CPR
assumption, fits a discount curve to treasury par yields, prices the pool off the curve and
measures its interest margin against a funding curve.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger()
		},
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "Per-loan workers (0 = GOMAXPROCS)")
	root.PersistentFlags().StringVar(&a.format, "format", report.FormatCSV, "Output format (csv|json|xlsx)")

	root.AddCommand(a.forecastCmd(), a.curveCmd(), a.priceCmd(), a.gapCmd(), a.runCmd())
	return root
}

func (a *app) setupLogger() error {
	level, err := zerolog.ParseLevel(strings.ToLower(a.logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	a.log = a.log.Level(level)
	return nil
}

func (a *app) runner() *engine.Runner {
	return engine.NewRunner(a.log)
}

func (a *app) write(t report.Table) error {
	return report.Write(a.stdout, a.format, t)
}

// loanFlags are the snapshot selectors shared by the pool commands.
type loanFlags struct {
	path  string
	sheet string
	dsn   string
	table string
	cpr   float64
}

func (f *loanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "loans", "", "Loan snapshot file (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet for an .xlsx snapshot (default first sheet)")
	cmd.Flags().StringVar(&f.dsn, "postgres-dsn", "", "Postgres DSN to read the snapshot from instead of a file")
	cmd.Flags().StringVar(&f.table, "table", "loans", "Snapshot table for --postgres-dsn")
	cmd.Flags().Float64Var(&f.cpr, "cpr", 0, "Constant prepayment rate, annual percent")
}

func (f *loanFlags) config() config.LoansConfig {
	lc := config.LoansConfig{Sheet: f.sheet, PostgresDSN: f.dsn, Table: f.table}
	if strings.EqualFold(filepath.Ext(f.path), ".xlsx") {
		lc.XLSX = f.path
	} else {
		lc.CSV = f.path
	}
	return lc
}

func (a *app) loadLoans(ctx context.Context, f *loanFlags) ([]loan.Record, error) {
	if (f.path == "") == (f.dsn == "") {
		return nil, fmt.Errorf("exactly one of --loans or --postgres-dsn is required")
	}
	src, closeSrc, err := engine.OpenSource(ctx, f.config())
	if err != nil {
		return nil, err
	}
	defer closeSrc()
	recs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.log.Info().Int("loans", len(recs)).Msg("loan snapshot loaded")
	return recs, nil
}
