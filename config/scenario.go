package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/rmbs/calendar"
	"github.com/meenmo/rmbs/errs"
	"github.com/meenmo/rmbs/utils"
)

// Funding sources for the gap engine.
const (
	FundingTreasury = "treasury"
	FundingFlat     = "flat"
)

// Scenario is one run of the pool analytics: a loan snapshot, a CPR, a par curve and a
// funding assumption, all pinned to a valuation date.
type Scenario struct {
	ValuationDate string  `yaml:"valuation_date"`
	CPR           float64 `yaml:"cpr"`
	Workers       int     `yaml:"workers"`

	Loans    LoansConfig    `yaml:"loans"`
	Treasury TreasuryConfig `yaml:"treasury"`
	Funding  FundingConfig  `yaml:"funding"`
	Output   OutputConfig   `yaml:"output"`
	Solver   SolverConfig   `yaml:"solver"`
}

// LoansConfig selects the loan snapshot source. Exactly one of CSV, XLSX or PostgresDSN is set.
type LoansConfig struct {
	CSV         string `yaml:"csv"`
	XLSX        string `yaml:"xlsx"`
	Sheet       string `yaml:"sheet"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Table       string `yaml:"table"`
}

// TreasuryConfig holds the par quotes for the discount curve. Empty quotes select the
// bundled snapshot for the valuation date.
type TreasuryConfig struct {
	Tenors []string  `yaml:"tenors"`
	Rates  []float64 `yaml:"rates"`

	// Calendar and Convention adjust the par bonds' payment dates (default USD, Unadjusted).
	Calendar   string `yaml:"calendar"`
	Convention string `yaml:"convention"`
}

// FundingConfig describes the funding curve.
type FundingConfig struct {
	Source   string  `yaml:"source"`
	FlatRate float64 `yaml:"flat_rate"` // percent
	SpreadBP float64 `yaml:"spread_bp"`
}

// OutputConfig controls where result tables are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // csv, json or xlsx
}

// SolverConfig overrides Config fields; zero values keep the defaults.
type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("LoadScenario: %w", err)
	}
	return ParseScenario(raw)
}

// ParseScenario decodes and validates a YAML scenario document.
func ParseScenario(raw []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Scenario{}, fmt.Errorf("ParseScenario: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Funding.Source == "" {
		s.Funding.Source = FundingTreasury
	}
	if s.Output.Format == "" {
		s.Output.Format = "csv"
	}
	if s.Loans.Table == "" {
		s.Loans.Table = "loans"
	}
}

// Validate checks the scenario for inconsistent settings.
func (s Scenario) Validate() error {
	if _, err := s.Date(); err != nil {
		return errs.Input("scenario: valuation_date %q: %v", s.ValuationDate, err)
	}
	if s.CPR < 0 || s.CPR >= 1200 {
		return errs.Input("scenario: cpr %.4f outside [0, 1200)", s.CPR)
	}
	sources := 0
	for _, v := range []string{s.Loans.CSV, s.Loans.XLSX, s.Loans.PostgresDSN} {
		if strings.TrimSpace(v) != "" {
			sources++
		}
	}
	if sources != 1 {
		return errs.Input("scenario: exactly one of loans.csv, loans.xlsx or loans.postgres_dsn is required")
	}
	if len(s.Treasury.Tenors) != len(s.Treasury.Rates) {
		return errs.Input("scenario: treasury tenors (%d) and rates (%d) must have equal length",
			len(s.Treasury.Tenors), len(s.Treasury.Rates))
	}
	if _, err := calendar.ParseCalendar(s.Treasury.Calendar); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if _, err := calendar.ParseConvention(s.Treasury.Convention); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	switch strings.ToLower(s.Funding.Source) {
	case FundingTreasury, FundingFlat:
	default:
		return errs.Input("scenario: unsupported funding.source %q", s.Funding.Source)
	}
	switch strings.ToLower(s.Output.Format) {
	case "csv", "json", "xlsx":
	default:
		return errs.Input("scenario: unsupported output.format %q", s.Output.Format)
	}
	return nil
}

// Date parses the valuation date.
func (s Scenario) Date() (time.Time, error) {
	return utils.ParseDate(strings.TrimSpace(s.ValuationDate))
}

// Config merges solver overrides onto DefaultConfig.
func (s Scenario) Config() Config {
	c := DefaultConfig
	c.ConvergenceTolerance = s.Solver.Tolerance
	c.MaxBootstrapIterations = s.Solver.MaxIterations
	c.Workers = s.Workers
	return c.WithDefaults()
}
