package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/burnrate/internal/dashboard"
	"github.com/rocjay1/burnrate/internal/insights"
	"github.com/rocjay1/burnrate/internal/models"
)

// HandleInsights returns the disposable income summary over all signals.
func (d *Dependencies) HandleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if d.Cache != nil {
		if summary, ok := d.Cache.Get(); ok {
			slog.Debug("serving cached insights")
			WriteJSON(w, http.StatusOK, summary)
			return
		}
	}

	var gen uint64
	if d.Cache != nil {
		gen = d.Cache.Generation()
	}
	signals, err := d.Database.ListSignals(r.Context())
	if err != nil {
		slog.Error("failed to list signals for insights", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list signals: "+err.Error())
		return
	}
	summary := insights.Compute(signals)
	if d.Cache != nil && !d.Cache.SetIfGeneration(gen, summary) {
		slog.Debug("signals changed during insights computation, not caching")
	}
	slog.Info("computed insights",
		"signals_count", len(signals),
		"income_count", len(summary.RecurringIncome),
		"expense_count", len(summary.RecurringExpenses),
	)
	WriteJSON(w, http.StatusOK, summary)
}

// HandleDashboard returns the cash-flow trend and top expense categories for
// an optional from/to date range (YYYY-MM-DD, inclusive).
func (d *Dependencies) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	from, ok := parseDayParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDayParam(w, r, "to")
	if !ok {
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		WriteError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return
	}

	signals, err := d.Database.ListSignals(r.Context())
	if err != nil {
		slog.Error("failed to list signals for dashboard", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list signals: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, dashboard.BuildOverview(signals, from, to))
}

func parseDayParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(models.DateLayout, v)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid '"+name+"' date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
