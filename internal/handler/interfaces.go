package handler

import (
	"context"
	"time"

	"github.com/rocjay1/burnrate/internal/extraction"
	"github.com/rocjay1/burnrate/internal/models"
)

// DatabaseClient is the persistence surface used by the handlers. Missing ids
// are reported as services.ErrNotFound.
type DatabaseClient interface {
	ListSignals(ctx context.Context) ([]models.FinancialSignal, error)
	GetSignal(ctx context.Context, id string) (*models.FinancialSignal, error)
	SaveSignal(ctx context.Context, s models.FinancialSignal) error
	SaveSignals(ctx context.Context, signals []models.FinancialSignal) error
	DeleteSignal(ctx context.Context, id string) error
	DeleteAllSignals(ctx context.Context) error

	ListDocuments(ctx context.Context) ([]models.UploadedDocument, error)
	GetDocument(ctx context.Context, id string) (*models.UploadedDocument, error)
	SaveDocumentWithSignals(ctx context.Context, doc models.UploadedDocument, signals []models.FinancialSignal) error
	DeleteDocument(ctx context.Context, id string) error

	SaveDraft(ctx context.Context, d models.Draft) error
	GetDraft(ctx context.Context, id string) (*models.Draft, error)
	LatestDraft(ctx context.Context) (*models.Draft, error)
	ClearDrafts(ctx context.Context) error

	ListInvestments(ctx context.Context) ([]models.InvestmentAccount, error)
	GetInvestment(ctx context.Context, id string) (*models.InvestmentAccount, error)
	SaveInvestment(ctx context.Context, a models.InvestmentAccount) error
	DeleteInvestment(ctx context.Context, id string) error

	ListTaxDocuments(ctx context.Context) ([]models.TaxDocument, error)
	GetTaxDocument(ctx context.Context, id string) (*models.TaxDocument, error)
	SaveTaxDocument(ctx context.Context, doc models.TaxDocument, insights []models.TaxInsight) error
	ListTaxInsights(ctx context.Context, docID string) ([]models.TaxInsight, error)
	DeleteTaxDocument(ctx context.Context, id string) error

	ListPanels(ctx context.Context) ([]models.DashboardPanel, error)
	GetPanel(ctx context.Context, id string) (*models.DashboardPanel, error)
	SavePanel(ctx context.Context, p models.DashboardPanel) error
	DeletePanel(ctx context.Context, id string) error
}

// BlobClient stores uploaded document images.
type BlobClient interface {
	UploadBytes(ctx context.Context, blobName string, data []byte, contentType string) error
	DownloadBytes(ctx context.Context, blobName string) ([]byte, error)
	DeleteBlob(ctx context.Context, blobName string) error
}

// QueueClient enqueues extraction work items.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, message any) error
}

// EmailClient sends the nightly digest.
type EmailClient interface {
	SendDigestEmail(ctx context.Context, to []string, summary models.DisposableIncomeSummary, generatedAt time.Time) error
}

// Extractor reads document images with a vision model.
type Extractor interface {
	AnalyzeStatement(ctx context.Context, img []byte, mimeType string) ([]models.FinancialSignal, error)
	AnalyzeTaxDocument(ctx context.Context, img []byte, mimeType string) (*extraction.TaxExtraction, error)
}

// SummaryCache holds the last computed disposable income summary.
type SummaryCache interface {
	Get() (models.DisposableIncomeSummary, bool)
	Generation() uint64
	SetIfGeneration(gen uint64, summary models.DisposableIncomeSummary) bool
	Invalidate()
}
