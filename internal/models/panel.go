package models

import "fmt"

// PanelMetric is the aggregation applied inside each panel group.
type PanelMetric string

const (
	MetricSum   PanelMetric = "sum"
	MetricAvg   PanelMetric = "avg"
	MetricCount PanelMetric = "count"
)

// PanelGroupBy selects the grouping key for a panel.
type PanelGroupBy string

const (
	GroupByCategory     PanelGroupBy = "category"
	GroupByMerchant     PanelGroupBy = "merchant"
	GroupByDate         PanelGroupBy = "date"
	GroupByCustomGroups PanelGroupBy = "custom_groups"
)

// Panel time ranges. Anything else is treated as the last 30 days.
const (
	TimeRange30Days    = "30_days"
	TimeRange90Days    = "90_days"
	TimeRangeThisMonth = "this_month"
	TimeRangeThisYear  = "this_year"
)

// CustomGroup maps a set of categories onto one display bucket.
type CustomGroup struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// PanelQuery describes which signals a panel aggregates and how.
type PanelQuery struct {
	Metric       PanelMetric   `json:"metric"`
	GroupBy      PanelGroupBy  `json:"groupBy"`
	CustomGroups []CustomGroup `json:"customGroups,omitempty"`
	TimeRange    string        `json:"timeRange"`
}

// PanelPresentation is opaque display configuration stored with the panel.
type PanelPresentation struct {
	Color      string   `json:"color,omitempty"`
	Units      string   `json:"units,omitempty"`
	Thresholds *float64 `json:"thresholds,omitempty"`
}

// DashboardPanel is a user-defined dashboard widget.
type DashboardPanel struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Type         string            `json:"type"` // stat, line, bar, pie
	Query        PanelQuery        `json:"query"`
	Presentation PanelPresentation `json:"presentation"`
}

// Validate checks the query fields that drive evaluation.
func (p *DashboardPanel) Validate() error {
	switch p.Query.Metric {
	case MetricSum, MetricAvg, MetricCount:
	default:
		return fmt.Errorf("invalid metric: %q", p.Query.Metric)
	}
	switch p.Query.GroupBy {
	case GroupByCategory, GroupByMerchant, GroupByDate, GroupByCustomGroups:
	default:
		return fmt.Errorf("invalid groupBy: %q", p.Query.GroupBy)
	}
	return nil
}
