package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rocjay1/burnrate/internal/csvparse"
	"github.com/rocjay1/burnrate/internal/dashboard"
	"github.com/rocjay1/burnrate/internal/models"
)

// HandleSignals lists, creates, replaces and deletes signals.
func (d *Dependencies) HandleSignals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		signals, err := d.Database.ListSignals(r.Context())
		if err != nil {
			slog.Error("failed to list signals", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list signals: "+err.Error())
			return
		}
		q := r.URL.Query()
		views := dashboard.SearchSignals(signals, q.Get("q"), q.Get("view") == "recurring")
		slog.Info("listed signals", "total", len(signals), "returned", len(views))
		WriteJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var s models.FinancialSignal
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			slog.Warn("invalid signal request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		s.ID = uuid.New().String()
		s.CreatedAt = d.now().UnixMilli()
		if s.Currency == "" {
			s.Currency = "USD"
		}
		if err := s.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid signal: "+err.Error())
			return
		}
		if err := d.Database.SaveSignal(r.Context(), s); err != nil {
			slog.Error("failed to save signal", "merchant", s.Merchant, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save signal: "+err.Error())
			return
		}
		d.invalidateInsights()
		slog.Info("created signal", "id", s.ID, "merchant", s.Merchant)
		WriteJSON(w, http.StatusOK, s)

	case http.MethodPut:
		var s models.FinancialSignal
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			slog.Warn("invalid signal request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if id := r.URL.Query().Get("id"); id != "" {
			s.ID = id
		}
		if s.ID == "" {
			WriteError(w, http.StatusBadRequest, "Missing signal ID")
			return
		}
		existing, err := d.Database.GetSignal(r.Context(), s.ID)
		if err != nil {
			writeStoreError(w, err, "Failed to get signal")
			return
		}
		if s.CreatedAt == 0 {
			s.CreatedAt = existing.CreatedAt
		}
		if s.SourceDocID == "" {
			s.SourceDocID = existing.SourceDocID
		}
		if err := s.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid signal: "+err.Error())
			return
		}
		if err := d.Database.SaveSignal(r.Context(), s); err != nil {
			slog.Error("failed to update signal", "id", s.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to update signal: "+err.Error())
			return
		}
		d.invalidateInsights()
		slog.Info("updated signal", "id", s.ID)
		WriteJSON(w, http.StatusOK, s)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing signal ID")
			return
		}
		if err := d.Database.DeleteSignal(r.Context(), id); err != nil {
			slog.Error("failed to delete signal", "id", id, "error", err)
			writeStoreError(w, err, "Failed to delete signal")
			return
		}
		d.invalidateInsights()
		slog.Info("deleted signal", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleClearSignals deletes every signal.
func (d *Dependencies) HandleClearSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := d.Database.DeleteAllSignals(r.Context()); err != nil {
		slog.Error("failed to clear signals", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to clear signals: "+err.Error())
		return
	}
	d.invalidateInsights()
	slog.Info("cleared all signals")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// HandleImportSignals bulk-imports signals from a CSV file, sent either as the
// multipart field "file" or as the raw request body.
func (d *Dependencies) HandleImportSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, d.maxUploadBytes())
	var content []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(d.maxUploadBytes()); err != nil {
			slog.Warn("failed to parse multipart form", "error", err)
			WriteError(w, http.StatusBadRequest, "File too large or invalid form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to get file")
			return
		}
		defer file.Close()
		content, err = io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read file")
			return
		}
	} else {
		var err error
		content, err = io.ReadAll(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
	}

	signals, errs := csvparse.ParseCSV(string(content))
	slog.Info("parsed CSV import", "signals_count", len(signals), "errors_count", len(errs))
	if errs == nil {
		errs = []string{}
	}
	if len(signals) == 0 {
		WriteJSON(w, http.StatusBadRequest, importResponse{Imported: 0, Errors: errs})
		return
	}

	createdAt := d.now().UnixMilli()
	for i := range signals {
		signals[i].ID = uuid.New().String()
		signals[i].CreatedAt = createdAt
	}
	if err := d.Database.SaveSignals(r.Context(), signals); err != nil {
		slog.Error("failed to save imported signals", "count", len(signals), "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to save signals: "+err.Error())
		return
	}
	d.invalidateInsights()
	WriteJSON(w, http.StatusOK, importResponse{Imported: len(signals), Errors: errs})
}
