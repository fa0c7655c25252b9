package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/rocjay1/burnrate/internal/services"
)

// HandleDocuments lists verified statement documents or deletes one together
// with the signals it produced.
func (d *Dependencies) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs, err := d.Database.ListDocuments(r.Context())
		if err != nil {
			slog.Error("failed to list documents", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list documents: "+err.Error())
			return
		}
		if docs == nil {
			docs = []models.UploadedDocument{}
		}
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt > docs[j].UploadedAt })
		WriteJSON(w, http.StatusOK, docs)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing document ID")
			return
		}
		doc, err := d.Database.GetDocument(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, "Failed to get document")
			return
		}
		if err := d.Database.DeleteDocument(r.Context(), id); err != nil {
			slog.Error("failed to delete document", "id", id, "error", err)
			writeStoreError(w, err, "Failed to delete document")
			return
		}
		d.invalidateInsights()
		d.deleteBlobQuietly(r, doc.BlobName)
		slog.Info("deleted document", "id", id, "signals_count", doc.SignalCount)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// deleteBlobQuietly removes a source image after its record is gone. Failures
// only leave an orphaned blob, so they are logged and not returned.
func (d *Dependencies) deleteBlobQuietly(r *http.Request, blobName string) {
	if d.Blob == nil || blobName == "" {
		return
	}
	if err := d.Blob.DeleteBlob(r.Context(), blobName); err != nil && !errors.Is(err, services.ErrNotFound) {
		slog.Warn("failed to delete source blob", "blob_name", blobName, "error", err)
	}
}
