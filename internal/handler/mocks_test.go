package handler

import (
	"context"
	"time"

	"github.com/rocjay1/burnrate/internal/extraction"
	"github.com/rocjay1/burnrate/internal/models"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	ListSignalsFunc             func(ctx context.Context) ([]models.FinancialSignal, error)
	GetSignalFunc               func(ctx context.Context, id string) (*models.FinancialSignal, error)
	SaveSignalFunc              func(ctx context.Context, s models.FinancialSignal) error
	SaveSignalsFunc             func(ctx context.Context, signals []models.FinancialSignal) error
	DeleteSignalFunc            func(ctx context.Context, id string) error
	DeleteAllSignalsFunc        func(ctx context.Context) error
	ListDocumentsFunc           func(ctx context.Context) ([]models.UploadedDocument, error)
	GetDocumentFunc             func(ctx context.Context, id string) (*models.UploadedDocument, error)
	SaveDocumentWithSignalsFunc func(ctx context.Context, doc models.UploadedDocument, signals []models.FinancialSignal) error
	DeleteDocumentFunc          func(ctx context.Context, id string) error
	SaveDraftFunc               func(ctx context.Context, d models.Draft) error
	GetDraftFunc                func(ctx context.Context, id string) (*models.Draft, error)
	LatestDraftFunc             func(ctx context.Context) (*models.Draft, error)
	ClearDraftsFunc             func(ctx context.Context) error
	ListInvestmentsFunc         func(ctx context.Context) ([]models.InvestmentAccount, error)
	GetInvestmentFunc           func(ctx context.Context, id string) (*models.InvestmentAccount, error)
	SaveInvestmentFunc          func(ctx context.Context, a models.InvestmentAccount) error
	DeleteInvestmentFunc        func(ctx context.Context, id string) error
	ListTaxDocumentsFunc        func(ctx context.Context) ([]models.TaxDocument, error)
	GetTaxDocumentFunc          func(ctx context.Context, id string) (*models.TaxDocument, error)
	SaveTaxDocumentFunc         func(ctx context.Context, doc models.TaxDocument, insights []models.TaxInsight) error
	ListTaxInsightsFunc         func(ctx context.Context, docID string) ([]models.TaxInsight, error)
	DeleteTaxDocumentFunc       func(ctx context.Context, id string) error
	ListPanelsFunc              func(ctx context.Context) ([]models.DashboardPanel, error)
	GetPanelFunc                func(ctx context.Context, id string) (*models.DashboardPanel, error)
	SavePanelFunc               func(ctx context.Context, p models.DashboardPanel) error
	DeletePanelFunc             func(ctx context.Context, id string) error
}

func (m *MockDatabaseClient) ListSignals(ctx context.Context) ([]models.FinancialSignal, error) {
	if m.ListSignalsFunc != nil {
		return m.ListSignalsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetSignal(ctx context.Context, id string) (*models.FinancialSignal, error) {
	if m.GetSignalFunc != nil {
		return m.GetSignalFunc(ctx, id)
	}
	return &models.FinancialSignal{ID: id}, nil
}

func (m *MockDatabaseClient) SaveSignal(ctx context.Context, s models.FinancialSignal) error {
	if m.SaveSignalFunc != nil {
		return m.SaveSignalFunc(ctx, s)
	}
	return nil
}

func (m *MockDatabaseClient) SaveSignals(ctx context.Context, signals []models.FinancialSignal) error {
	if m.SaveSignalsFunc != nil {
		return m.SaveSignalsFunc(ctx, signals)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteSignal(ctx context.Context, id string) error {
	if m.DeleteSignalFunc != nil {
		return m.DeleteSignalFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteAllSignals(ctx context.Context) error {
	if m.DeleteAllSignalsFunc != nil {
		return m.DeleteAllSignalsFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseClient) ListDocuments(ctx context.Context) ([]models.UploadedDocument, error) {
	if m.ListDocumentsFunc != nil {
		return m.ListDocumentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetDocument(ctx context.Context, id string) (*models.UploadedDocument, error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, id)
	}
	return &models.UploadedDocument{ID: id}, nil
}

func (m *MockDatabaseClient) SaveDocumentWithSignals(ctx context.Context, doc models.UploadedDocument, signals []models.FinancialSignal) error {
	if m.SaveDocumentWithSignalsFunc != nil {
		return m.SaveDocumentWithSignalsFunc(ctx, doc, signals)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	if m.DeleteDocumentFunc != nil {
		return m.DeleteDocumentFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) SaveDraft(ctx context.Context, d models.Draft) error {
	if m.SaveDraftFunc != nil {
		return m.SaveDraftFunc(ctx, d)
	}
	return nil
}

func (m *MockDatabaseClient) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	if m.GetDraftFunc != nil {
		return m.GetDraftFunc(ctx, id)
	}
	return &models.Draft{ID: id}, nil
}

func (m *MockDatabaseClient) LatestDraft(ctx context.Context) (*models.Draft, error) {
	if m.LatestDraftFunc != nil {
		return m.LatestDraftFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) ClearDrafts(ctx context.Context) error {
	if m.ClearDraftsFunc != nil {
		return m.ClearDraftsFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseClient) ListInvestments(ctx context.Context) ([]models.InvestmentAccount, error) {
	if m.ListInvestmentsFunc != nil {
		return m.ListInvestmentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetInvestment(ctx context.Context, id string) (*models.InvestmentAccount, error) {
	if m.GetInvestmentFunc != nil {
		return m.GetInvestmentFunc(ctx, id)
	}
	return &models.InvestmentAccount{ID: id}, nil
}

func (m *MockDatabaseClient) SaveInvestment(ctx context.Context, a models.InvestmentAccount) error {
	if m.SaveInvestmentFunc != nil {
		return m.SaveInvestmentFunc(ctx, a)
	}
	return nil
}

func (m *MockDatabaseClient) DeleteInvestment(ctx context.Context, id string) error {
	if m.DeleteInvestmentFunc != nil {
		return m.DeleteInvestmentFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) ListTaxDocuments(ctx context.Context) ([]models.TaxDocument, error) {
	if m.ListTaxDocumentsFunc != nil {
		return m.ListTaxDocumentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetTaxDocument(ctx context.Context, id string) (*models.TaxDocument, error) {
	if m.GetTaxDocumentFunc != nil {
		return m.GetTaxDocumentFunc(ctx, id)
	}
	return &models.TaxDocument{ID: id}, nil
}

func (m *MockDatabaseClient) SaveTaxDocument(ctx context.Context, doc models.TaxDocument, insights []models.TaxInsight) error {
	if m.SaveTaxDocumentFunc != nil {
		return m.SaveTaxDocumentFunc(ctx, doc, insights)
	}
	return nil
}

func (m *MockDatabaseClient) ListTaxInsights(ctx context.Context, docID string) ([]models.TaxInsight, error) {
	if m.ListTaxInsightsFunc != nil {
		return m.ListTaxInsightsFunc(ctx, docID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) DeleteTaxDocument(ctx context.Context, id string) error {
	if m.DeleteTaxDocumentFunc != nil {
		return m.DeleteTaxDocumentFunc(ctx, id)
	}
	return nil
}

func (m *MockDatabaseClient) ListPanels(ctx context.Context) ([]models.DashboardPanel, error) {
	if m.ListPanelsFunc != nil {
		return m.ListPanelsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDatabaseClient) GetPanel(ctx context.Context, id string) (*models.DashboardPanel, error) {
	if m.GetPanelFunc != nil {
		return m.GetPanelFunc(ctx, id)
	}
	return &models.DashboardPanel{ID: id}, nil
}

func (m *MockDatabaseClient) SavePanel(ctx context.Context, p models.DashboardPanel) error {
	if m.SavePanelFunc != nil {
		return m.SavePanelFunc(ctx, p)
	}
	return nil
}

func (m *MockDatabaseClient) DeletePanel(ctx context.Context, id string) error {
	if m.DeletePanelFunc != nil {
		return m.DeletePanelFunc(ctx, id)
	}
	return nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadBytesFunc   func(ctx context.Context, blobName string, data []byte, contentType string) error
	DownloadBytesFunc func(ctx context.Context, blobName string) ([]byte, error)
	DeleteBlobFunc    func(ctx context.Context, blobName string) error
}

func (m *MockBlobClient) UploadBytes(ctx context.Context, blobName string, data []byte, contentType string) error {
	if m.UploadBytesFunc != nil {
		return m.UploadBytesFunc(ctx, blobName, data, contentType)
	}
	return nil
}

func (m *MockBlobClient) DownloadBytes(ctx context.Context, blobName string) ([]byte, error) {
	if m.DownloadBytesFunc != nil {
		return m.DownloadBytesFunc(ctx, blobName)
	}
	return nil, nil
}

func (m *MockBlobClient) DeleteBlob(ctx context.Context, blobName string) error {
	if m.DeleteBlobFunc != nil {
		return m.DeleteBlobFunc(ctx, blobName)
	}
	return nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendDigestEmailFunc func(ctx context.Context, to []string, summary models.DisposableIncomeSummary, generatedAt time.Time) error
}

func (m *MockEmailClient) SendDigestEmail(ctx context.Context, to []string, summary models.DisposableIncomeSummary, generatedAt time.Time) error {
	if m.SendDigestEmailFunc != nil {
		return m.SendDigestEmailFunc(ctx, to, summary, generatedAt)
	}
	return nil
}

// MockExtractor is a mock implementation of Extractor
type MockExtractor struct {
	AnalyzeStatementFunc   func(ctx context.Context, img []byte, mimeType string) ([]models.FinancialSignal, error)
	AnalyzeTaxDocumentFunc func(ctx context.Context, img []byte, mimeType string) (*extraction.TaxExtraction, error)
}

func (m *MockExtractor) AnalyzeStatement(ctx context.Context, img []byte, mimeType string) ([]models.FinancialSignal, error) {
	if m.AnalyzeStatementFunc != nil {
		return m.AnalyzeStatementFunc(ctx, img, mimeType)
	}
	return nil, nil
}

func (m *MockExtractor) AnalyzeTaxDocument(ctx context.Context, img []byte, mimeType string) (*extraction.TaxExtraction, error) {
	if m.AnalyzeTaxDocumentFunc != nil {
		return m.AnalyzeTaxDocumentFunc(ctx, img, mimeType)
	}
	return &extraction.TaxExtraction{DocType: models.TaxDocOther}, nil
}

// MockCache is an in-memory SummaryCache that records invalidations.
type MockCache struct {
	summary       *models.DisposableIncomeSummary
	Invalidations int
}

func (m *MockCache) Get() (models.DisposableIncomeSummary, bool) {
	if m.summary == nil {
		return models.DisposableIncomeSummary{}, false
	}
	return *m.summary, true
}

func (m *MockCache) Generation() uint64 {
	return uint64(m.Invalidations)
}

func (m *MockCache) SetIfGeneration(gen uint64, summary models.DisposableIncomeSummary) bool {
	if gen != uint64(m.Invalidations) {
		return false
	}
	m.summary = &summary
	return true
}

func (m *MockCache) Invalidate() {
	m.summary = nil
	m.Invalidations++
}
