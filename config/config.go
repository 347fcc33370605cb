package config

// Config holds solver and curve construction parameters.
type Config struct {
	// ConvergenceTolerance is the max absolute repricing error (per 100 face) accepted
	// by the joint curve fit.
	ConvergenceTolerance float64

	// MaxBootstrapIterations is the maximum Newton iterations for the curve fit.
	MaxBootstrapIterations int

	// JacobianBump is the log-discount-factor bump used for the finite difference Jacobian.
	JacobianBump float64

	// DampingFactor caps a single Newton step on any log discount factor.
	DampingFactor float64

	// MaxYieldIterations is the maximum Newton iterations for price-to-yield.
	MaxYieldIterations int

	// YieldTolerance is the price tolerance for price-to-yield.
	YieldTolerance float64

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64

	// Workers bounds per-loan concurrency. Zero or negative means GOMAXPROCS.
	Workers int
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance:   1e-10,
	MaxBootstrapIterations: 100,
	JacobianBump:           1e-7,
	DampingFactor:          0.5,
	MaxYieldIterations:     100,
	YieldTolerance:         1e-10,
	DerivativeThreshold:    1e-15,
	Workers:                0,
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig
	if c.ConvergenceTolerance <= 0 {
		c.ConvergenceTolerance = d.ConvergenceTolerance
	}
	if c.MaxBootstrapIterations <= 0 {
		c.MaxBootstrapIterations = d.MaxBootstrapIterations
	}
	if c.JacobianBump <= 0 {
		c.JacobianBump = d.JacobianBump
	}
	if c.DampingFactor <= 0 {
		c.DampingFactor = d.DampingFactor
	}
	if c.MaxYieldIterations <= 0 {
		c.MaxYieldIterations = d.MaxYieldIterations
	}
	if c.YieldTolerance <= 0 {
		c.YieldTolerance = d.YieldTolerance
	}
	if c.DerivativeThreshold <= 0 {
		c.DerivativeThreshold = d.DerivativeThreshold
	}
	return c
}
