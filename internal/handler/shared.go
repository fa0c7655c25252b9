package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/burnrate/internal/services"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Database  DatabaseClient
	Blob      BlobClient
	Queue     QueueClient
	Email     EmailClient
	Extractor Extractor
	Cache     SummaryCache

	// UserEmail receives the nightly digest. Empty disables it.
	UserEmail      string
	MaxUploadBytes int64

	// Now is the clock used for ids, timestamps and time ranges. Nil means time.Now.
	Now func() time.Time
}

const defaultMaxUploadBytes = 10 << 20

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dependencies) maxUploadBytes() int64 {
	if d.MaxUploadBytes > 0 {
		return d.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// invalidateInsights drops the cached summary after any signal mutation.
func (d *Dependencies) invalidateInsights() {
	if d.Cache != nil {
		d.Cache.Invalidate()
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps services.ErrNotFound to 404 and anything else to 500.
func writeStoreError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, services.ErrNotFound) {
		WriteError(w, http.StatusNotFound, message+": not found")
		return
	}
	WriteError(w, http.StatusInternalServerError, message+": "+err.Error())
}
