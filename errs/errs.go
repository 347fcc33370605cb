// Package errs holds the error taxonomy shared by the pool, curve and valuation packages.
//
// Input and domain failures are fatal and wrap one of the sentinels below so callers can
// test them with errors.Is. Market anomalies are not errors; they are reported as values.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks malformed or inconsistent inputs (length mismatch, empty curve inputs,
	// non-positive term, age >= term, CPR outside [0, 1200)).
	ErrInput = errors.New("input error")

	// ErrDomain marks cases the base formulas cannot handle, such as a discount table
	// shorter than a loan's horizon.
	ErrDomain = errors.New("domain error")
)

// Input returns an error wrapping ErrInput.
func Input(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// Domain returns an error wrapping ErrDomain.
func Domain(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}

// AnomalyKind names the quantity found out of its usual range.
type AnomalyKind string

const (
	NegativeDiscountFactor AnomalyKind = "negative_discount_factor"
	NegativeZeroRate       AnomalyKind = "negative_zero_rate"
	NegativeForwardRate    AnomalyKind = "negative_forward_rate"
)

// Anomaly is a market-implied oddity surfaced to the caller as a value.
type Anomaly struct {
	Month int
	Kind  AnomalyKind
	Value float64
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s at month %d: %.10f", a.Kind, a.Month, a.Value)
}
