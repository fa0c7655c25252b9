package dashboard

import (
	"slices"
	"time"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

const (
	unknownKey = "Unknown"
	otherKey   = "Other"
	dayLabel   = "Jan 02"
)

// PanelPoint is one group of an evaluated panel.
type PanelPoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// RangeStart returns the inclusive start of a panel time range relative to now.
// Unrecognised ranges mean the last 30 days.
func RangeStart(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case models.TimeRange90Days:
		return now.AddDate(0, 0, -90)
	case models.TimeRangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case models.TimeRangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, 0, -30)
	}
}

// EvaluatePanel aggregates the signals inside the panel's time range. Groups
// appear in the order they are first seen, except date groups which are
// chronological. Sum and avg use absolute amounts.
func EvaluatePanel(panel models.DashboardPanel, signals []models.FinancialSignal, now time.Time) []PanelPoint {
	start := RangeStart(panel.Query.TimeRange, now)

	type bucket struct {
		name  string
		first time.Time
		sum   decimal.Decimal
		count int64
	}
	var order []*bucket
	byName := make(map[string]*bucket)

	for _, s := range signals {
		d, ok := s.ParsedDate()
		if !ok || d.Before(start) || d.After(now) {
			continue
		}
		key := groupKey(panel.Query, s, d)
		b, exists := byName[key]
		if !exists {
			b = &bucket{name: key, first: d, sum: decimal.Zero}
			byName[key] = b
			order = append(order, b)
		}
		if d.Before(b.first) {
			b.first = d
		}
		b.sum = b.sum.Add(s.Amount.Abs())
		b.count++
	}

	if panel.Query.GroupBy == models.GroupByDate {
		slices.SortStableFunc(order, func(a, b *bucket) int { return a.first.Compare(b.first) })
	}

	points := make([]PanelPoint, 0, len(order))
	for _, b := range order {
		var value decimal.Decimal
		switch panel.Query.Metric {
		case models.MetricCount:
			value = decimal.NewFromInt(b.count)
		case models.MetricAvg:
			value = b.sum.Div(decimal.NewFromInt(b.count))
		default:
			value = b.sum
		}
		points = append(points, PanelPoint{Name: b.name, Value: value})
	}
	return points
}

func groupKey(q models.PanelQuery, s models.FinancialSignal, d time.Time) string {
	switch q.GroupBy {
	case models.GroupByCategory:
		if s.Category == "" {
			return string(models.CategoryUncategorized)
		}
		return string(s.Category)
	case models.GroupByMerchant:
		if s.Merchant == "" {
			return unknownKey
		}
		return s.Merchant
	case models.GroupByDate:
		return d.Format(dayLabel)
	case models.GroupByCustomGroups:
		for _, g := range q.CustomGroups {
			if slices.Contains(g.Categories, s.Category) {
				return g.Name
			}
		}
		return otherKey
	}
	return unknownKey
}
