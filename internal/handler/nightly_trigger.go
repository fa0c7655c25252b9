package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/burnrate/internal/insights"
)

// HandleNightlyTrigger e-mails the disposable income digest to the configured user.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.Info("starting nightly trigger processing")

	if d.UserEmail == "" {
		slog.Warn("USER_EMAIL is not set; skipping digest email")
		w.WriteHeader(http.StatusOK)
		return
	}
	if d.Email == nil {
		slog.Warn("email service is not configured; skipping digest email")
		w.WriteHeader(http.StatusOK)
		return
	}

	signals, err := d.Database.ListSignals(ctx)
	if err != nil {
		slog.Error("failed to list signals for digest", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list signals")
		return
	}

	summary := insights.Compute(signals)
	slog.Info("computed digest summary",
		"signals_count", len(signals),
		"disposable_income", summary.DisposableIncome.StringFixed(2),
	)

	if err := d.Email.SendDigestEmail(ctx, []string{d.UserEmail}, summary, d.now()); err != nil {
		slog.Error("failed to send digest email", "email", d.UserEmail, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to send digest email")
		return
	}

	slog.Info("nightly trigger processing complete", "email", d.UserEmail)
	w.WriteHeader(http.StatusOK)
}
