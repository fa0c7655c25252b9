package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rocjay1/burnrate/internal/extraction"
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/rocjay1/burnrate/internal/services"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// decodeQueueItem accepts the queue item as a JSON string (the host default)
// or as an already decoded object.
func decodeQueueItem(data map[string]any) (extractionJob, error) {
	var job extractionJob
	val, ok := data["queueItem"]
	if !ok {
		if val, ok = data["queueitem"]; !ok {
			return job, errors.New("missing queueItem in Data")
		}
	}

	var raw []byte
	switch v := val.(type) {
	case string:
		raw = []byte(v)
	case map[string]any:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return job, fmt.Errorf("failed to re-encode queueItem: %w", err)
		}
	default:
		return job, fmt.Errorf("unexpected queueItem type %T", val)
	}

	if err := json.Unmarshal(raw, &job); err != nil {
		return job, fmt.Errorf("invalid queueItem JSON: %w", err)
	}
	if job.BlobName == "" {
		return job, errors.New("missing blob_name")
	}
	if job.Kind == "" {
		job.Kind = KindStatement
	}
	return job, nil
}

// ProcessQueue handles the queue trigger that runs extraction on an uploaded image.
// Failures that a retry cannot fix are logged and the message is consumed.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	job, err := decodeQueueItem(invokeReq.Data)
	if err != nil {
		slog.Warn("invalid queue item", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("processing queue item", "blob_name", job.BlobName, "kind", job.Kind)

	ctx := r.Context()
	img, err := d.Blob.DownloadBytes(ctx, job.BlobName)
	if errors.Is(err, services.ErrNotFound) {
		slog.Warn("uploaded blob no longer exists, dropping message", "blob_name", job.BlobName)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		slog.Error("failed to download blob", "blob_name", job.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download blob: %v", err))
		return
	}

	mimeType, err := extraction.DetectImageType(img)
	if err != nil {
		slog.Warn("queued blob is not a supported image, dropping message", "blob_name", job.BlobName, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch job.Kind {
	case KindTax:
		err = d.processTaxDocument(ctx, job, img, mimeType)
	default:
		err = d.processStatement(ctx, job, img, mimeType)
	}

	if errors.Is(err, extraction.ErrNoJSON) || errors.Is(err, extraction.ErrMissingAPIKey) {
		// Retrying cannot fix an unconfigured key or a reply without JSON.
		slog.Error("extraction failed permanently, dropping message", "blob_name", job.BlobName, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		slog.Error("failed to process queue item", "blob_name", job.BlobName, "kind", job.Kind, "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("queue processing complete", "blob_name", job.BlobName, "kind", job.Kind)
	w.WriteHeader(http.StatusOK)
}

func (d *Dependencies) processStatement(ctx context.Context, job extractionJob, img []byte, mimeType string) error {
	extracted, err := d.Extractor.AnalyzeStatement(ctx, img, mimeType)
	if err != nil {
		return fmt.Errorf("statement extraction: %w", err)
	}

	signals := make([]models.FinancialSignal, 0, len(extracted))
	for _, s := range extracted {
		if err := s.Validate(); err != nil {
			slog.Warn("discarding invalid extracted signal", "merchant", s.Merchant, "error", err)
			continue
		}
		signals = append(signals, s)
	}

	draft := models.Draft{
		ID:        uuid.New().String(),
		FileName:  job.FileName,
		BlobName:  job.BlobName,
		Signals:   signals,
		CreatedAt: d.now().UnixMilli(),
	}
	if err := d.Database.SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	slog.Info("saved draft", "draft_id", draft.ID, "signals_count", len(signals), "discarded", len(extracted)-len(signals))
	return nil
}

func (d *Dependencies) processTaxDocument(ctx context.Context, job extractionJob, img []byte, mimeType string) error {
	extracted, err := d.Extractor.AnalyzeTaxDocument(ctx, img, mimeType)
	if err != nil {
		return fmt.Errorf("tax extraction: %w", err)
	}

	now := d.now().UnixMilli()
	doc := models.TaxDocument{
		ID:         uuid.New().String(),
		FileName:   job.FileName,
		BlobName:   job.BlobName,
		DocType:    extracted.DocType,
		TaxYear:    extracted.TaxYear,
		EntityName: extracted.EntityName,
		UploadedAt: now,
	}

	figures := extracted.Figures
	taxInsights := []models.TaxInsight{{
		ID:        uuid.New().String(),
		DocID:     doc.ID,
		Type:      models.TaxInsightExtraction,
		Figures:   &figures,
		CreatedAt: now,
	}}
	for _, advice := range extracted.Insights {
		taxInsights = append(taxInsights, models.TaxInsight{
			ID:        uuid.New().String(),
			DocID:     doc.ID,
			Type:      models.TaxInsightAdvice,
			Advice:    advice,
			CreatedAt: now,
		})
	}

	if err := d.Database.SaveTaxDocument(ctx, doc, taxInsights); err != nil {
		return fmt.Errorf("failed to save tax document: %w", err)
	}
	slog.Info("saved tax document", "doc_id", doc.ID, "doc_type", doc.DocType, "tax_year", doc.TaxYear, "insights_count", len(taxInsights))
	return nil
}
