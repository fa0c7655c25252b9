package insights

import (
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// periodsPerYear drives the per-signal display conversion.
var periodsPerYear = map[models.Frequency]int64{
	models.FrequencyDaily:      365,
	models.FrequencyWeekly:     52,
	models.FrequencyBiWeekly:   26,
	models.FrequencyMonthly:    12,
	models.FrequencyQuarterly:  4,
	models.FrequencySemiAnnual: 2,
	models.FrequencyAnnual:     1,
}

// MonthlyAmount converts a single signal amount to its monthly equivalent
// using the signal's own declared frequency. An absent or unrecognised
// frequency leaves the amount unchanged.
//
// This is the display conversion. It differs from the group-level estimate
// produced by NormalizeGroup.
func MonthlyAmount(amount decimal.Decimal, freq models.Frequency) decimal.Decimal {
	n, ok := periodsPerYear[freq]
	if !ok || n == 12 {
		return amount
	}
	return amount.Mul(decimal.NewFromInt(n)).Div(twelve)
}
