package insights

import (
	"sort"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

// gapRange is an inclusive band of average day-gaps mapped to a frequency.
type gapRange struct {
	min, max  float64
	frequency models.Frequency
}

var gapRanges = []gapRange{
	{25, 35, models.FrequencyMonthly},
	{12, 16, models.FrequencyBiWeekly},
	{6, 8, models.FrequencyWeekly},
}

// InferFrequency estimates the recurrence interval of a merchant group.
// The group must be sorted most recent first (see SortByDateDesc).
//
// A single observation keeps its declared frequency and otherwise is assumed
// monthly; that default is a heuristic, not evidence. With two or more
// observations the mean gap between adjacent dates is classified against
// gapRanges; when it matches none, the most recent declared frequency (or
// unknown) is kept.
func InferFrequency(group []models.FinancialSignal) models.Frequency {
	if len(group) == 0 {
		return models.FrequencyUnknown
	}

	declared := group[0].Frequency
	if declared == "" {
		declared = models.FrequencyUnknown
	}

	if len(group) == 1 {
		if declared == models.FrequencyUnknown {
			return models.FrequencyMonthly
		}
		return declared
	}

	avg, ok := AverageGap(group)
	if !ok {
		return declared
	}
	for _, r := range gapRanges {
		if avg >= r.min && avg <= r.max {
			return r.frequency
		}
	}
	return declared
}

// AverageGap returns the mean number of days between temporally adjacent
// signals. ok is false for fewer than two signals or when any adjacent
// pair has an unparsable date, in which case no gap can be measured.
func AverageGap(sorted []models.FinancialSignal) (avg float64, ok bool) {
	if len(sorted) < 2 {
		return 0, false
	}
	total := 0
	prev, valid := sorted[0].ParsedDate()
	if !valid {
		return 0, false
	}
	for _, s := range sorted[1:] {
		d, valid := s.ParsedDate()
		if !valid {
			return 0, false
		}
		total += models.DaysBetween(prev, d)
		prev = d
	}
	return float64(total) / float64(len(sorted)-1), true
}

// monthlyEquivalent applies the group-level ratio table. Frequencies without
// an entry (daily, quarterly, semi-annual, unknown) pass through unchanged.
func monthlyEquivalent(amount decimal.Decimal, freq models.Frequency) decimal.Decimal {
	switch freq {
	case models.FrequencyBiWeekly:
		return amount.Mul(decimal.NewFromInt(2))
	case models.FrequencyWeekly:
		return amount.Mul(decimal.NewFromInt(4))
	case models.FrequencyAnnual:
		return amount.Div(twelve)
	}
	return amount
}

// NormalizeGroup turns one merchant group into a RecurringEntity. The monthly
// amount is derived from the most recent signal only. The input slice is not
// modified.
func NormalizeGroup(group []models.FinancialSignal) models.RecurringEntity {
	if len(group) == 0 {
		return models.RecurringEntity{Frequency: models.FrequencyUnknown, Amount: decimal.Zero}
	}
	sorted := make([]models.FinancialSignal, len(group))
	copy(sorted, group)
	SortByDateDesc(sorted)

	latest := sorted[0]
	freq := InferFrequency(sorted)
	return models.RecurringEntity{
		Merchant:  latest.Merchant,
		Amount:    monthlyEquivalent(latest.Amount, freq),
		Frequency: freq,
		LastDate:  latest.Date,
	}
}

// groupAndNormalize produces one RecurringEntity per merchant, ordered by
// merchant key so repeated calls return identical output.
func groupAndNormalize(signals []models.FinancialSignal) []models.RecurringEntity {
	groups := GroupByMerchant(signals)
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]models.RecurringEntity, 0, len(keys))
	for _, k := range keys {
		results = append(results, NormalizeGroup(groups[k]))
	}
	return results
}
