package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rocjay1/burnrate/internal/models"
)

// HandleDrafts returns the latest pending draft or clears all drafts.
func (d *Dependencies) HandleDrafts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		draft, err := d.Database.LatestDraft(r.Context())
		if err != nil {
			writeStoreError(w, err, "Failed to get draft")
			return
		}
		WriteJSON(w, http.StatusOK, draft)

	case http.MethodDelete:
		if err := d.Database.ClearDrafts(r.Context()); err != nil {
			slog.Error("failed to clear drafts", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to clear drafts: "+err.Error())
			return
		}
		slog.Info("cleared drafts")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type confirmDraftRequest struct {
	DraftID string                   `json:"draftId"`
	Signals []models.FinancialSignal `json:"signals"`
}

// HandleConfirmDraft saves the user-verified signals of a draft as a new
// uploaded document and clears the pending drafts.
func (d *Dependencies) HandleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req confirmDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid confirm request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DraftID == "" {
		WriteError(w, http.StatusBadRequest, "Missing draftId")
		return
	}

	draft, err := d.Database.GetDraft(r.Context(), req.DraftID)
	if err != nil {
		writeStoreError(w, err, "Failed to get draft")
		return
	}

	verified := req.Signals
	if verified == nil {
		verified = draft.Signals
	}
	for i := range verified {
		if err := verified[i].Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid signal at index %d: %v", i, err))
			return
		}
	}

	now := d.now().UnixMilli()
	doc := models.UploadedDocument{
		ID:          uuid.New().String(),
		FileName:    draft.FileName,
		BlobName:    draft.BlobName,
		UploadedAt:  now,
		SignalCount: len(verified),
	}
	signals := make([]models.FinancialSignal, len(verified))
	for i, s := range verified {
		s.ID = uuid.New().String()
		s.SourceDocID = doc.ID
		s.CreatedAt = now
		signals[i] = s
	}

	if err := d.Database.SaveDocumentWithSignals(r.Context(), doc, signals); err != nil {
		slog.Error("failed to save verified document", "draft_id", draft.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to save document: "+err.Error())
		return
	}
	if err := d.Database.ClearDrafts(r.Context()); err != nil {
		// The document is already saved.
		slog.Error("failed to clear drafts after confirm", "draft_id", draft.ID, "error", err)
	}
	d.invalidateInsights()

	slog.Info("confirmed draft", "draft_id", draft.ID, "doc_id", doc.ID, "signals_count", len(signals))
	WriteJSON(w, http.StatusOK, doc)
}
