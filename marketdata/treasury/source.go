package treasury

import "time"

// QuoteSource supplies par curve snapshots by date.
type QuoteSource interface {
	QuotesOn(date time.Time) (ParQuotes, bool)
}

// MapQuoteSource is a static map-backed implementation for development/testing.
type MapQuoteSource struct {
	tenors []string
	rates  map[string][]float64
}

// NewMapQuoteSource builds a source whose snapshots share one tenor grid.
func NewMapQuoteSource(tenors []string, rates map[string][]float64) *MapQuoteSource {
	return &MapQuoteSource{tenors: tenors, rates: rates}
}

// DefaultQuoteSource serves the bundled snapshots.
func DefaultQuoteSource() QuoteSource {
	return NewMapQuoteSource(standardTenors, bundled)
}

func (m *MapQuoteSource) QuotesOn(date time.Time) (ParQuotes, bool) {
	rates, ok := m.rates[date.Format("2006-01-02")]
	if !ok {
		return ParQuotes{}, false
	}
	return ParQuotes{
		Date:   date,
		Tenors: append([]string(nil), m.tenors...),
		Rates:  append([]float64(nil), rates...),
	}, true
}

// Bundled looks up a bundled snapshot.
func Bundled(date time.Time) (ParQuotes, bool) {
	return DefaultQuoteSource().QuotesOn(date)
}
