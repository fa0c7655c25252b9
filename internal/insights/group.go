package insights

import (
	"sort"

	"github.com/rocjay1/burnrate/internal/models"
)

// GroupByMerchant partitions signals by their normalised merchant name
// (lowercased and trimmed). Group order is map order; signal order within
// a group follows the input.
func GroupByMerchant(signals []models.FinancialSignal) map[string][]models.FinancialSignal {
	groups := make(map[string][]models.FinancialSignal)
	for _, s := range signals {
		key := s.MerchantKey()
		groups[key] = append(groups[key], s)
	}
	return groups
}

// SortByDateDesc orders signals most recent first, in place. Signals whose
// date cannot be parsed go to the end and keep their relative order.
func SortByDateDesc(signals []models.FinancialSignal) {
	type entry struct {
		signal models.FinancialSignal
		unix   int64
		valid  bool
	}
	entries := make([]entry, len(signals))
	for i, s := range signals {
		d, ok := s.ParsedDate()
		entries[i] = entry{signal: s, unix: d.UnixNano(), valid: ok}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		ea, eb := entries[a], entries[b]
		if ea.valid != eb.valid {
			return ea.valid
		}
		return ea.valid && ea.unix > eb.unix
	})
	for i, e := range entries {
		signals[i] = e.signal
	}
}
