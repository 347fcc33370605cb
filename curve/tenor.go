package curve

import (
	"strconv"
	"strings"

	"github.com/meenmo/rmbs/errs"
)

// TenorMonths converts tenor strings like "1M", "6M", "10Y" to a month count.
// A bare integer is read as months.
func TenorMonths(raw string) (int, error) {
	tenor := strings.TrimSpace(strings.ToUpper(raw))
	mult := 1
	switch {
	case strings.HasSuffix(tenor, "Y"):
		mult = 12
		tenor = strings.TrimSuffix(tenor, "Y")
	case strings.HasSuffix(tenor, "M"):
		tenor = strings.TrimSuffix(tenor, "M")
	}
	v, err := strconv.Atoi(tenor)
	if err != nil {
		return 0, errs.Input("tenor %q: %v", raw, err)
	}
	if v <= 0 {
		return 0, errs.Input("tenor %q must be positive", raw)
	}
	return v * mult, nil
}
