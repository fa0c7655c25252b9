package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/rocjay1/burnrate/internal/extraction"
)

// Upload kinds accepted by HandleUpload.
const (
	KindStatement = "statement"
	KindTax       = "tax"
)

// extractionJob is the queue message that hands an uploaded image to ProcessQueue.
type extractionJob struct {
	BlobName string `json:"blob_name"`
	FileName string `json:"filename"`
	Kind     string `json:"kind"`
}

// HandleUpload stores a statement or tax document image and enqueues it for extraction.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		slog.Warn("upload attempt with invalid method", "method", r.Method, "path", r.URL.Path)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = KindStatement
	}
	if kind != KindStatement && kind != KindTax {
		WriteError(w, http.StatusBadRequest, "Invalid kind, expected 'statement' or 'tax'")
		return
	}

	limit := d.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_bytes", limit)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	mimeType, err := extraction.DetectImageType(data)
	if err != nil {
		slog.Warn("rejected upload", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusBadRequest, "Only PNG and JPEG images are supported")
		return
	}
	slog.Info("received file upload", "filename", header.Filename, "size_bytes", len(data), "kind", kind, "mime_type", mimeType)

	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("uploads/%s-%s", d.now().Format("20060102-150405"), filename)

	if err := d.Blob.UploadBytes(r.Context(), blobName, data, mimeType); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}
	slog.Info("successfully uploaded blob", "blob_name", blobName)

	job := extractionJob{BlobName: blobName, FileName: filename, Kind: kind}
	if err := d.Queue.EnqueueMessage(r.Context(), job); err != nil {
		slog.Error("failed to enqueue message", "filename", filename, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	slog.Info("successfully enqueued message", "filename", filename, "blob_name", blobName, "kind", kind)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"blobName": blobName,
		"kind":     kind,
	})
}
