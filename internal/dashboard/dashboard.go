// Package dashboard aggregates stored signals into the views shown on the
// dashboard: the cash-flow trend, the expense category split, the signal
// list and user-defined panels.
package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/rocjay1/burnrate/internal/insights"
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

const (
	monthLayout   = "2006-01"
	topCategories = 5
)

// MonthlyPoint is the inflow and outflow total for one calendar month.
type MonthlyPoint struct {
	Month   string          `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

// CategoryTotal is the outflow total for one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Overview is the payload of the dashboard endpoint.
type Overview struct {
	Trend      []MonthlyPoint  `json:"trend"`
	Categories []CategoryTotal `json:"categories"`
}

// SignalView is a signal with its display monthly amount.
type SignalView struct {
	models.FinancialSignal
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
}

// FilterByRange keeps signals whose date falls within [from, to], both ends
// inclusive as whole days. A zero bound is open. When both bounds are zero all
// signals are returned, otherwise signals with unparsable dates are dropped.
func FilterByRange(signals []models.FinancialSignal, from, to time.Time) []models.FinancialSignal {
	if from.IsZero() && to.IsZero() {
		return signals
	}
	start := startOfDay(from)
	end := startOfDay(to).AddDate(0, 0, 1)

	out := make([]models.FinancialSignal, 0, len(signals))
	for _, s := range signals {
		d, ok := s.ParsedDate()
		if !ok {
			continue
		}
		if !from.IsZero() && d.Before(start) {
			continue
		}
		if !to.IsZero() && !d.Before(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MonthlyTrend totals inflow and outflow per calendar month, oldest first.
// Signals with unparsable dates are skipped.
func MonthlyTrend(signals []models.FinancialSignal) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, s := range signals {
		d, ok := s.ParsedDate()
		if !ok {
			continue
		}
		key := d.Format(monthLayout)
		p, exists := byMonth[key]
		if !exists {
			p = &MonthlyPoint{Month: key, Inflow: decimal.Zero, Outflow: decimal.Zero}
			byMonth[key] = p
		}
		if s.Flow == models.FlowInflow {
			p.Inflow = p.Inflow.Add(s.Amount)
		} else {
			p.Outflow = p.Outflow.Add(s.Amount)
		}
	}

	points := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		points = append(points, *p)
	}
	// YYYY-MM sorts chronologically as a string.
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

// CategorySplit returns the five categories with the largest outflow total.
func CategorySplit(signals []models.FinancialSignal) []CategoryTotal {
	totals := make(map[models.Category]decimal.Decimal)
	for _, s := range signals {
		if s.Flow != models.FlowOutflow {
			continue
		}
		totals[s.Category] = totals[s.Category].Add(s.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for c, amount := range totals {
		out = append(out, CategoryTotal{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > topCategories {
		out = out[:topCategories]
	}
	return out
}

// BuildOverview filters signals to the range and computes the trend and category split.
func BuildOverview(signals []models.FinancialSignal, from, to time.Time) Overview {
	filtered := FilterByRange(signals, from, to)
	return Overview{
		Trend:      MonthlyTrend(filtered),
		Categories: CategorySplit(filtered),
	}
}

// SearchSignals returns signals newest first (unparsable dates last), keeping
// those whose merchant or category contains query case-insensitively. When
// recurringOnly is set, signals without a frequency are dropped.
func SearchSignals(signals []models.FinancialSignal, query string, recurringOnly bool) []SignalView {
	q := strings.ToLower(strings.TrimSpace(query))

	matched := make([]models.FinancialSignal, 0, len(signals))
	for _, s := range signals {
		if recurringOnly && s.Frequency == "" {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Merchant), q) &&
			!strings.Contains(strings.ToLower(string(s.Category)), q) {
			continue
		}
		matched = append(matched, s)
	}
	insights.SortByDateDesc(matched)

	views := make([]SignalView, len(matched))
	for i, s := range matched {
		views[i] = SignalView{
			FinancialSignal: s,
			MonthlyAmount:   insights.MonthlyAmount(s.Amount, s.Frequency),
		}
	}
	return views
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
