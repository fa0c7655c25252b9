package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/rocjay1/burnrate/internal/projection"
	"github.com/rocjay1/burnrate/internal/services"
)

const (
	defaultProjectionYears = 30
	maxProjectionYears     = 50
)

// HandleInvestments lists, saves and deletes investment accounts. Saving keeps
// the account's companion contribution signal in step with its monthly contribution.
func (d *Dependencies) HandleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := d.Database.ListInvestments(r.Context())
		if err != nil {
			slog.Error("failed to list investments", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list investments: "+err.Error())
			return
		}
		if accounts == nil {
			accounts = []models.InvestmentAccount{}
		}
		WriteJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var a models.InvestmentAccount
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			slog.Warn("invalid investment request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := a.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid account: "+err.Error())
			return
		}

		if a.ID == "" {
			a.ID = uuid.New().String()
			a.SignalID = ""
		} else {
			existing, err := d.Database.GetInvestment(r.Context(), a.ID)
			switch {
			case err == nil:
				a.SignalID = existing.SignalID
			case errors.Is(err, services.ErrNotFound):
				a.SignalID = ""
			default:
				slog.Error("failed to get investment", "id", a.ID, "error", err)
				WriteError(w, http.StatusInternalServerError, "Failed to get investment: "+err.Error())
				return
			}
		}

		prev, err := d.contributionSnapshot(r.Context(), a.SignalID)
		if err != nil {
			slog.Error("failed to get contribution signal", "signal_id", a.SignalID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get contribution signal: "+err.Error())
			return
		}
		if err := d.syncContributionSignal(r.Context(), &a); err != nil {
			slog.Error("failed to sync contribution signal", "account_id", a.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to sync contribution signal: "+err.Error())
			return
		}
		if err := d.Database.SaveInvestment(r.Context(), a); err != nil {
			slog.Error("failed to save investment", "id", a.ID, "error", err)
			if rbErr := d.restoreContributionSignal(r.Context(), prev, a.SignalID); rbErr != nil {
				slog.Error("failed to restore contribution signal", "account_id", a.ID, "signal_id", a.SignalID, "error", rbErr)
			}
			d.invalidateInsights()
			WriteError(w, http.StatusInternalServerError, "Failed to save investment: "+err.Error())
			return
		}
		d.invalidateInsights()
		slog.Info("saved investment", "id", a.ID, "name", a.Name, "signal_id", a.SignalID)
		WriteJSON(w, http.StatusOK, a)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing investment ID")
			return
		}
		a, err := d.Database.GetInvestment(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, "Failed to get investment")
			return
		}
		if err := d.removeContributionSignal(r.Context(), a.SignalID); err != nil {
			slog.Error("failed to delete contribution signal", "signal_id", a.SignalID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to delete contribution signal: "+err.Error())
			return
		}
		if err := d.Database.DeleteInvestment(r.Context(), id); err != nil {
			writeStoreError(w, err, "Failed to delete investment")
			return
		}
		d.invalidateInsights()
		slog.Info("deleted investment", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// syncContributionSignal creates or updates the companion signal while the
// contribution is positive and removes it once the contribution drops to zero.
func (d *Dependencies) syncContributionSignal(ctx context.Context, a *models.InvestmentAccount) error {
	if a.MonthlyContribution.IsPositive() {
		if a.SignalID == "" {
			a.SignalID = uuid.New().String()
		}
		now := d.now()
		return d.Database.SaveSignal(ctx, a.ContributionSignal(now.Format(models.DateLayout), now.UnixMilli()))
	}
	if err := d.removeContributionSignal(ctx, a.SignalID); err != nil {
		return err
	}
	a.SignalID = ""
	return nil
}

// contributionSnapshot returns the stored companion signal, or nil when the
// account has none yet.
func (d *Dependencies) contributionSnapshot(ctx context.Context, signalID string) (*models.FinancialSignal, error) {
	if signalID == "" {
		return nil, nil
	}
	s, err := d.Database.GetSignal(ctx, signalID)
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	return s, err
}

// restoreContributionSignal undoes syncContributionSignal after the account
// itself could not be saved: the previous signal is written back, or the
// newly created one is removed.
func (d *Dependencies) restoreContributionSignal(ctx context.Context, prev *models.FinancialSignal, signalID string) error {
	if prev != nil {
		return d.Database.SaveSignal(ctx, *prev)
	}
	return d.removeContributionSignal(ctx, signalID)
}

func (d *Dependencies) removeContributionSignal(ctx context.Context, signalID string) error {
	if signalID == "" {
		return nil
	}
	if err := d.Database.DeleteSignal(ctx, signalID); err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	return nil
}

// HandleProjections returns the yearly wealth projection over all accounts.
func (d *Dependencies) HandleProjections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	years := defaultProjectionYears
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxProjectionYears {
			WriteError(w, http.StatusBadRequest, "years must be an integer between 1 and 50")
			return
		}
		years = n
	}

	accounts, err := d.Database.ListInvestments(r.Context())
	if err != nil {
		slog.Error("failed to list investments for projection", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list investments: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, projection.Project(accounts, years, d.now().Year()))
}
