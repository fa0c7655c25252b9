package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rocjay1/burnrate/internal/dashboard"
	"github.com/rocjay1/burnrate/internal/models"
)

// HandlePanels lists, saves and deletes dashboard panels.
func (d *Dependencies) HandlePanels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		panels, err := d.Database.ListPanels(r.Context())
		if err != nil {
			slog.Error("failed to list panels", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list panels: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, panels)

	case http.MethodPost:
		var p models.DashboardPanel
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			slog.Warn("invalid panel request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := p.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid panel: "+err.Error())
			return
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.Query.TimeRange == "" {
			p.Query.TimeRange = models.TimeRange30Days
		}
		if err := d.Database.SavePanel(r.Context(), p); err != nil {
			slog.Error("failed to save panel", "id", p.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save panel: "+err.Error())
			return
		}
		slog.Info("saved panel", "id", p.ID, "title", p.Title)
		WriteJSON(w, http.StatusOK, p)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing panel ID")
			return
		}
		if err := d.Database.DeletePanel(r.Context(), id); err != nil {
			writeStoreError(w, err, "Failed to delete panel")
			return
		}
		slog.Info("deleted panel", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type panelDataResponse struct {
	Panel  models.DashboardPanel  `json:"panel"`
	Points []dashboard.PanelPoint `json:"points"`
}

// HandlePanelData evaluates one panel against the stored signals.
func (d *Dependencies) HandlePanelData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing panel ID")
		return
	}

	panel, err := d.Database.GetPanel(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get panel")
		return
	}
	signals, err := d.Database.ListSignals(r.Context())
	if err != nil {
		slog.Error("failed to list signals for panel", "id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list signals: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, panelDataResponse{
		Panel:  *panel,
		Points: dashboard.EvaluatePanel(*panel, signals, d.now()),
	})
}
