// Package loan projects a single level-payment, fixed-rate mortgage under a constant
// prepayment assumption.
package loan

import (
	"math"

	"github.com/meenmo/rmbs/errs"
)

// MaxCPR is the exclusive upper bound on CPR; at or above it the monthly survival factor
// 1 - CPR/1200 is no longer positive.
const MaxCPR = 1200.0

// Record is one row of a loan snapshot.
//
// NoteRate and Coupon are annual percentages; Term and Age are in months.
type Record struct {
	ID             string
	NoteRate       float64
	Coupon         float64
	Term           int
	Age            int
	CurrentBalance float64
}

// Remaining is the number of monthly payments left (term minus age).
func (r Record) Remaining() int {
	return r.Term - r.Age
}

// Validate reports records the amortization math cannot accept.
func (r Record) Validate() error {
	switch {
	case r.Term <= 0:
		return errs.Input("loan %q: term %d must be positive", r.ID, r.Term)
	case r.Age < 0 || r.Age >= r.Term:
		return errs.Input("loan %q: age %d outside [0, %d)", r.ID, r.Age, r.Term)
	case !(r.CurrentBalance > 0) || math.IsInf(r.CurrentBalance, 0):
		return errs.Input("loan %q: current balance %.2f must be positive", r.ID, r.CurrentBalance)
	case !finite(r.NoteRate) || !finite(r.Coupon):
		return errs.Input("loan %q: rates must be finite numbers", r.ID)
	case r.NoteRate < 0:
		return errs.Input("loan %q: note rate %.4f must not be negative", r.ID, r.NoteRate)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateCPR checks a CPR (annual percent) against [0, MaxCPR).
func ValidateCPR(cpr float64) error {
	if math.IsNaN(cpr) || cpr < 0 || cpr >= MaxCPR {
		return errs.Input("cpr %.6f outside [0, %.0f)", cpr, MaxCPR)
	}
	return nil
}

// MaxRemaining returns the longest remaining term across recs.
func MaxRemaining(recs []Record) int {
	maxWAM := 0
	for _, r := range recs {
		if n := r.Remaining(); n > maxWAM {
			maxWAM = n
		}
	}
	return maxWAM
}
