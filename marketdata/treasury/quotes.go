package treasury

import (
	"time"

	"github.com/meenmo/rmbs/curve"
)

// ParQuotes is a par yield curve snapshot: tenors paired with par rates in percent.
type ParQuotes struct {
	Date   time.Time
	Tenors []string
	Rates  []float64
}

// Spec turns the snapshot into a curve specification valued at the snapshot date.
func (q ParQuotes) Spec() curve.Spec {
	return curve.Spec{
		ValuationDate: q.Date,
		Maturities:    append([]string(nil), q.Tenors...),
		Rates:         append([]float64(nil), q.Rates...),
	}
}

var standardTenors = []string{"1M", "2M", "3M", "4M", "6M", "1Y", "2Y", "3Y", "5Y", "7Y", "10Y", "20Y", "30Y"}

// bundled holds US Treasury daily par yield curve closes for development and tests.
var bundled = map[string][]float64{
	"2022-10-31": {3.73, 4.02, 4.22, 4.42, 4.57, 4.66, 4.51, 4.45, 4.27, 4.18, 4.10, 4.44, 4.22},
	"2023-10-31": {5.56, 5.57, 5.59, 5.62, 5.56, 5.44, 5.07, 4.86, 4.82, 4.88, 4.88, 5.15, 5.04},
}

// Sample returns the 2022-10-31 snapshot.
func Sample() ParQuotes {
	q, _ := Bundled(time.Date(2022, 10, 31, 0, 0, 0, 0, time.UTC))
	return q
}
