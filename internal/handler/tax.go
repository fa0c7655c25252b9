package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/rocjay1/burnrate/internal/models"
)

// taxDocumentView is a tax document with the insights extracted from it.
type taxDocumentView struct {
	models.TaxDocument
	Insights []models.TaxInsight `json:"insights"`
}

// HandleTaxDocuments lists tax documents with their insights or deletes one,
// cascading to its insights.
func (d *Dependencies) HandleTaxDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs, err := d.Database.ListTaxDocuments(r.Context())
		if err != nil {
			slog.Error("failed to list tax documents", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list tax documents: "+err.Error())
			return
		}
		all, err := d.Database.ListTaxInsights(r.Context(), "")
		if err != nil {
			slog.Error("failed to list tax insights", "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list tax insights: "+err.Error())
			return
		}

		byDoc := make(map[string][]models.TaxInsight)
		for _, in := range all {
			byDoc[in.DocID] = append(byDoc[in.DocID], in)
		}
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt > docs[j].UploadedAt })

		views := make([]taxDocumentView, 0, len(docs))
		for _, doc := range docs {
			ins := byDoc[doc.ID]
			if ins == nil {
				ins = []models.TaxInsight{}
			}
			views = append(views, taxDocumentView{TaxDocument: doc, Insights: ins})
		}
		WriteJSON(w, http.StatusOK, views)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing tax document ID")
			return
		}
		doc, err := d.Database.GetTaxDocument(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, "Failed to get tax document")
			return
		}
		if err := d.Database.DeleteTaxDocument(r.Context(), id); err != nil {
			slog.Error("failed to delete tax document", "id", id, "error", err)
			writeStoreError(w, err, "Failed to delete tax document")
			return
		}
		d.deleteBlobQuietly(r, doc.BlobName)
		slog.Info("deleted tax document", "id", id)
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
