package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rocjay1/burnrate/internal/config"
	"github.com/rocjay1/burnrate/internal/extraction"
	"github.com/rocjay1/burnrate/internal/handler"
	"github.com/rocjay1/burnrate/internal/services"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// bodyPreviewLimit caps how much of a request body is logged.
const bodyPreviewLimit = 512

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := context.Background()

	// Initialize Services
	db, closeDB, err := newDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to init database", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeDB()

	blobService, err := services.NewBlobService(ctx, cfg.BlobServiceURL, cfg.UploadContainer)
	if err != nil {
		slog.Error("failed to init BlobService", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService(ctx, cfg.QueueServiceURL, cfg.ProcessQueue)
	if err != nil {
		slog.Error("failed to init QueueService", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Database: db,
		Blob:     blobService,
		Queue:    queueService,
		Extractor: extraction.NewClient(extraction.Config{
			APIKey:            cfg.LLMAPIKey,
			Model:             cfg.LLMModel,
			BaseURL:           cfg.LLMBaseURL,
			RequestsPerMinute: cfg.LLMRequestsPerMinute,
			DefaultTaxYear:    cfg.DefaultTaxYear,
		}),
		Cache:          services.NewInsightsCache(cfg.InsightsCacheTTL),
		UserEmail:      cfg.UserEmail,
		MaxUploadBytes: cfg.MaxUploadSizeBytes,
	}
	if cfg.LLMAPIKey == "" {
		slog.Warn("LLM_API_KEY is not set; uploaded documents will not be extracted")
	}

	if emailService, err := newEmailService(cfg); err != nil {
		slog.Warn("failed to init EmailService (continuing without digest)", "error", err)
	} else {
		deps.Email = emailService
	}

	// Router
	mux := http.NewServeMux()

	// API Routes
	mux.HandleFunc("/api/signals", deps.HandleSignals)
	mux.HandleFunc("DELETE /api/signals/all", deps.HandleClearSignals)
	mux.HandleFunc("POST /api/signals/import", deps.HandleImportSignals)

	mux.HandleFunc("GET /api/insights", deps.HandleInsights)
	mux.HandleFunc("GET /api/dashboard", deps.HandleDashboard)

	mux.HandleFunc("/api/panels", deps.HandlePanels)
	mux.HandleFunc("GET /api/panels/data", deps.HandlePanelData)

	mux.HandleFunc("/api/investments", deps.HandleInvestments)
	mux.HandleFunc("GET /api/projections", deps.HandleProjections)

	mux.HandleFunc("POST /api/upload", deps.HandleUpload)
	mux.HandleFunc("/api/drafts", deps.HandleDrafts)
	mux.HandleFunc("POST /api/drafts/confirm", deps.HandleConfirmDraft)
	mux.HandleFunc("/api/documents", deps.HandleDocuments)
	mux.HandleFunc("/api/tax", deps.HandleTaxDocuments)

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", deps.HandleHttpTrigger(mux))

	mux.HandleFunc("/ProcessQueue", deps.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", deps.HandleNightlyTrigger)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Catch-all handler for unmatched requests to debug what the Host is sending
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	loggedMux := loggingMiddleware(mux)

	slog.Info("starting server", "port", cfg.Port, "storage_backend", cfg.StorageBackend)
	if err := http.ListenAndServe(":"+cfg.Port, loggedMux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newDatabase opens the configured store and returns its close function.
func newDatabase(ctx context.Context, cfg *config.Config) (handler.DatabaseClient, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := services.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("failed to close sqlite store", "error", err)
			}
		}, nil
	case config.BackendTables:
		store, err := services.NewTableStore(ctx, cfg.TableServiceURL, services.TableNames{
			Signals:      cfg.SignalsTable,
			Documents:    cfg.DocumentsTable,
			Drafts:       cfg.DraftsTable,
			Investments:  cfg.InvestmentsTable,
			TaxDocuments: cfg.TaxDocumentsTable,
			TaxInsights:  cfg.TaxInsightsTable,
			Panels:       cfg.PanelsTable,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func newEmailService(cfg *config.Config) (*services.EmailService, error) {
	if cfg.CommunicationEndpoint == "" || cfg.SenderEmail == "" {
		return nil, errors.New("COMMUNICATION_SERVICES_ENDPOINT and SENDER_EMAIL are required")
	}
	cred, err := services.NewAzureCredential()
	if err != nil {
		return nil, err
	}
	return services.NewEmailService(cfg.CommunicationEndpoint, cfg.SenderEmail, cred)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Read body for logging (and restore it)
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		preview := bodyBytes
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			preview = nil
		} else if len(preview) > bodyPreviewLimit {
			preview = preview[:bodyPreviewLimit]
		}

		slog.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
			"body_preview", string(preview),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", duration)
	})
}
