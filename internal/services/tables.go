package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/burnrate/internal/models"
)

// TableNames maps each record kind onto an Azure table.
type TableNames struct {
	Signals      string
	Documents    string
	Drafts       string
	Investments  string
	TaxDocuments string
	TaxInsights  string
	Panels       string
}

// All records of a kind share one partition so cascades can run as batch transactions.
const (
	signalPartition     = "SIGNALS"
	documentPartition   = "DOCUMENTS"
	draftPartition      = "DRAFTS"
	investmentPartition = "INVESTMENTS"
	taxDocPartition     = "TAX_DOCUMENTS"
	taxInsightPartition = "TAX_INSIGHTS"
	panelPartition      = "PANELS"

	batchSize = 100
)

// TableStore persists records in Azure Table Storage. Each entity carries the
// record as a JSON "Data" property plus the properties used in filters.
type TableStore struct {
	serviceClient *aztables.ServiceClient
	tables        TableNames
}

type tableEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Data         string `json:"Data"`
	CreatedAt    int64  `json:"CreatedAt,omitempty"`
}

// NewTableStore connects to serviceURL and creates any missing tables.
func NewTableStore(ctx context.Context, serviceURL string, tables TableNames) (*TableStore, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL is required")
	}

	var client *aztables.ServiceClient
	if usesAzurite(serviceURL) {
		slog.Info("using Azurite credentials for table store")
		cred, err := aztables.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := NewAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	s := &TableStore{serviceClient: client, tables: tables}
	for _, name := range []string{tables.Signals, tables.Documents, tables.Drafts, tables.Investments,
		tables.TaxDocuments, tables.TaxInsights, tables.Panels} {
		if _, err := client.CreateTable(ctx, name, nil); err != nil && !isAlreadyExists(err) {
			return nil, fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}

	slog.Info("table store initialized", "table_url", serviceURL, "signals_table", tables.Signals)
	return s, nil
}

func (s *TableStore) client(table string) *aztables.Client {
	return s.serviceClient.NewClient(table)
}

func quoteOData(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func entityJSON(pk, rk string, v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	entity := map[string]any{
		"PartitionKey": pk,
		"RowKey":       rk,
		"Data":         string(data),
	}
	for k, val := range extra {
		entity[k] = val
	}
	return json.Marshal(entity)
}

func upsertAction(pk, rk string, v any, extra map[string]any) (aztables.TransactionAction, error) {
	raw, err := entityJSON(pk, rk, v, extra)
	if err != nil {
		return aztables.TransactionAction{}, err
	}
	return aztables.TransactionAction{ActionType: aztables.TransactionTypeInsertReplace, Entity: raw}, nil
}

func deleteAction(pk, rk string) aztables.TransactionAction {
	raw, _ := json.Marshal(map[string]any{"PartitionKey": pk, "RowKey": rk})
	return aztables.TransactionAction{ActionType: aztables.TransactionTypeDelete, Entity: raw}
}

// submit sends actions in chunks of 100, the Table service batch limit.
func submit(ctx context.Context, client *aztables.Client, actions []aztables.TransactionAction) error {
	for i := 0; i < len(actions); i += batchSize {
		end := min(i+batchSize, len(actions))
		if _, err := client.SubmitTransaction(ctx, actions[i:end], nil); err != nil {
			return fmt.Errorf("failed to submit transaction batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func listEntities(ctx context.Context, client *aztables.Client, filter string) ([]tableEntity, error) {
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	var out []tableEntity
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}
		for _, raw := range resp.Entities {
			var e tableEntity
			if err := json.Unmarshal(raw, &e); err != nil {
				slog.Warn("skipping unreadable entity", "error", err)
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func listRecords[T any](ctx context.Context, client *aztables.Client, filter string) ([]T, error) {
	entities, err := listEntities(ctx, client, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		var v T
		if err := json.Unmarshal([]byte(e.Data), &v); err != nil {
			slog.Warn("skipping unreadable record", "row_key", e.RowKey, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func getRecord[T any](ctx context.Context, client *aztables.Client, pk, rk string) (*T, error) {
	resp, err := client.GetEntity(ctx, pk, rk, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entity %s: %w", rk, err)
	}
	var e tableEntity
	if err := json.Unmarshal(resp.Value, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entity %s: %w", rk, err)
	}
	var v T
	if err := json.Unmarshal([]byte(e.Data), &v); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", rk, err)
	}
	return &v, nil
}

func upsertRecordEntity(ctx context.Context, client *aztables.Client, pk, rk string, v any, extra map[string]any) error {
	raw, err := entityJSON(pk, rk, v, extra)
	if err != nil {
		return fmt.Errorf("failed to encode entity %s: %w", rk, err)
	}
	if _, err := client.UpsertEntity(ctx, raw, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace}); err != nil {
		return fmt.Errorf("failed to upsert entity %s: %w", rk, err)
	}
	return nil
}

func deleteEntity(ctx context.Context, client *aztables.Client, pk, rk string) error {
	if _, err := client.DeleteEntity(ctx, pk, rk, nil); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete entity %s: %w", rk, err)
	}
	return nil
}

// deleteWhere removes every entity in the partition matching the extra filter.
func deleteWhere(ctx context.Context, client *aztables.Client, pk, extraFilter string) (int, error) {
	filter := "PartitionKey eq " + quoteOData(pk)
	if extraFilter != "" {
		filter += " and " + extraFilter
	}
	entities, err := listEntities(ctx, client, filter)
	if err != nil {
		return 0, err
	}
	actions := make([]aztables.TransactionAction, 0, len(entities))
	for _, e := range entities {
		actions = append(actions, deleteAction(pk, e.RowKey))
	}
	return len(actions), submit(ctx, client, actions)
}

func signalExtra(sig models.FinancialSignal) map[string]any {
	return map[string]any{"SourceDocID": sig.SourceDocID}
}

// ListSignals returns every stored signal.
func (s *TableStore) ListSignals(ctx context.Context) ([]models.FinancialSignal, error) {
	return listRecords[models.FinancialSignal](ctx, s.client(s.tables.Signals), "PartitionKey eq "+quoteOData(signalPartition))
}

// GetSignal returns one signal or ErrNotFound.
func (s *TableStore) GetSignal(ctx context.Context, id string) (*models.FinancialSignal, error) {
	return getRecord[models.FinancialSignal](ctx, s.client(s.tables.Signals), signalPartition, id)
}

// SaveSignal inserts or replaces a signal.
func (s *TableStore) SaveSignal(ctx context.Context, sig models.FinancialSignal) error {
	return upsertRecordEntity(ctx, s.client(s.tables.Signals), signalPartition, sig.ID, sig, signalExtra(sig))
}

// SaveSignals upserts signals in batches.
func (s *TableStore) SaveSignals(ctx context.Context, signals []models.FinancialSignal) error {
	actions := make([]aztables.TransactionAction, 0, len(signals))
	for _, sig := range signals {
		a, err := upsertAction(signalPartition, sig.ID, sig, signalExtra(sig))
		if err != nil {
			return fmt.Errorf("failed to encode signal %s: %w", sig.ID, err)
		}
		actions = append(actions, a)
	}
	return submit(ctx, s.client(s.tables.Signals), actions)
}

// DeleteSignal removes a signal or returns ErrNotFound.
func (s *TableStore) DeleteSignal(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.client(s.tables.Signals), signalPartition, id)
}

// DeleteAllSignals removes every signal.
func (s *TableStore) DeleteAllSignals(ctx context.Context) error {
	n, err := deleteWhere(ctx, s.client(s.tables.Signals), signalPartition, "")
	if err != nil {
		return fmt.Errorf("failed to clear signals: %w", err)
	}
	slog.Info("cleared signals", "count", n)
	return nil
}

// ListDocuments returns every uploaded statement.
func (s *TableStore) ListDocuments(ctx context.Context) ([]models.UploadedDocument, error) {
	return listRecords[models.UploadedDocument](ctx, s.client(s.tables.Documents), "PartitionKey eq "+quoteOData(documentPartition))
}

// GetDocument returns one document or ErrNotFound.
func (s *TableStore) GetDocument(ctx context.Context, id string) (*models.UploadedDocument, error) {
	return getRecord[models.UploadedDocument](ctx, s.client(s.tables.Documents), documentPartition, id)
}

// SaveDocumentWithSignals stores the document after its signals so a failed
// batch never leaves a document without signals.
func (s *TableStore) SaveDocumentWithSignals(ctx context.Context, doc models.UploadedDocument, signals []models.FinancialSignal) error {
	if err := s.SaveSignals(ctx, signals); err != nil {
		return err
	}
	return upsertRecordEntity(ctx, s.client(s.tables.Documents), documentPartition, doc.ID, doc, nil)
}

// DeleteDocument removes a document and every signal sourced from it.
func (s *TableStore) DeleteDocument(ctx context.Context, id string) error {
	if err := deleteEntity(ctx, s.client(s.tables.Documents), documentPartition, id); err != nil {
		return err
	}
	n, err := deleteWhere(ctx, s.client(s.tables.Signals), signalPartition, "SourceDocID eq "+quoteOData(id))
	if err != nil {
		return fmt.Errorf("failed to delete signals of document %s: %w", id, err)
	}
	slog.Info("deleted document signals", "document_id", id, "count", n)
	return nil
}

// SaveDraft stores an extraction draft.
func (s *TableStore) SaveDraft(ctx context.Context, d models.Draft) error {
	return upsertRecordEntity(ctx, s.client(s.tables.Drafts), draftPartition, d.ID, d, map[string]any{"CreatedAt": d.CreatedAt})
}

// GetDraft returns one draft or ErrNotFound.
func (s *TableStore) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	return getRecord[models.Draft](ctx, s.client(s.tables.Drafts), draftPartition, id)
}

// LatestDraft returns the most recently created draft or ErrNotFound.
func (s *TableStore) LatestDraft(ctx context.Context) (*models.Draft, error) {
	drafts, err := listRecords[models.Draft](ctx, s.client(s.tables.Drafts), "PartitionKey eq "+quoteOData(draftPartition))
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, ErrNotFound
	}
	sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].CreatedAt > drafts[j].CreatedAt })
	return &drafts[0], nil
}

// ClearDrafts removes all drafts.
func (s *TableStore) ClearDrafts(ctx context.Context) error {
	if _, err := deleteWhere(ctx, s.client(s.tables.Drafts), draftPartition, ""); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

// ListInvestments returns every investment account.
func (s *TableStore) ListInvestments(ctx context.Context) ([]models.InvestmentAccount, error) {
	return listRecords[models.InvestmentAccount](ctx, s.client(s.tables.Investments), "PartitionKey eq "+quoteOData(investmentPartition))
}

// GetInvestment returns one account or ErrNotFound.
func (s *TableStore) GetInvestment(ctx context.Context, id string) (*models.InvestmentAccount, error) {
	return getRecord[models.InvestmentAccount](ctx, s.client(s.tables.Investments), investmentPartition, id)
}

// SaveInvestment inserts or replaces an account.
func (s *TableStore) SaveInvestment(ctx context.Context, a models.InvestmentAccount) error {
	return upsertRecordEntity(ctx, s.client(s.tables.Investments), investmentPartition, a.ID, a, nil)
}

// DeleteInvestment removes an account or returns ErrNotFound.
func (s *TableStore) DeleteInvestment(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.client(s.tables.Investments), investmentPartition, id)
}

// ListTaxDocuments returns every tax document.
func (s *TableStore) ListTaxDocuments(ctx context.Context) ([]models.TaxDocument, error) {
	return listRecords[models.TaxDocument](ctx, s.client(s.tables.TaxDocuments), "PartitionKey eq "+quoteOData(taxDocPartition))
}

// GetTaxDocument returns one tax document or ErrNotFound.
func (s *TableStore) GetTaxDocument(ctx context.Context, id string) (*models.TaxDocument, error) {
	return getRecord[models.TaxDocument](ctx, s.client(s.tables.TaxDocuments), taxDocPartition, id)
}

// SaveTaxDocument stores the insights first, then the document.
func (s *TableStore) SaveTaxDocument(ctx context.Context, doc models.TaxDocument, insights []models.TaxInsight) error {
	actions := make([]aztables.TransactionAction, 0, len(insights))
	for _, in := range insights {
		a, err := upsertAction(taxInsightPartition, in.ID, in, map[string]any{"DocID": in.DocID})
		if err != nil {
			return fmt.Errorf("failed to encode tax insight %s: %w", in.ID, err)
		}
		actions = append(actions, a)
	}
	if err := submit(ctx, s.client(s.tables.TaxInsights), actions); err != nil {
		return err
	}
	return upsertRecordEntity(ctx, s.client(s.tables.TaxDocuments), taxDocPartition, doc.ID, doc, nil)
}

// ListTaxInsights returns the insights of one document, or all when docID is empty.
func (s *TableStore) ListTaxInsights(ctx context.Context, docID string) ([]models.TaxInsight, error) {
	filter := "PartitionKey eq " + quoteOData(taxInsightPartition)
	if docID != "" {
		filter += " and DocID eq " + quoteOData(docID)
	}
	return listRecords[models.TaxInsight](ctx, s.client(s.tables.TaxInsights), filter)
}

// DeleteTaxDocument removes a tax document and its insights.
func (s *TableStore) DeleteTaxDocument(ctx context.Context, id string) error {
	if err := deleteEntity(ctx, s.client(s.tables.TaxDocuments), taxDocPartition, id); err != nil {
		return err
	}
	if _, err := deleteWhere(ctx, s.client(s.tables.TaxInsights), taxInsightPartition, "DocID eq "+quoteOData(id)); err != nil {
		return fmt.Errorf("failed to delete insights of tax document %s: %w", id, err)
	}
	return nil
}

// ListPanels returns every dashboard panel.
func (s *TableStore) ListPanels(ctx context.Context) ([]models.DashboardPanel, error) {
	return listRecords[models.DashboardPanel](ctx, s.client(s.tables.Panels), "PartitionKey eq "+quoteOData(panelPartition))
}

// GetPanel returns one panel or ErrNotFound.
func (s *TableStore) GetPanel(ctx context.Context, id string) (*models.DashboardPanel, error) {
	return getRecord[models.DashboardPanel](ctx, s.client(s.tables.Panels), panelPartition, id)
}

// SavePanel inserts or replaces a panel.
func (s *TableStore) SavePanel(ctx context.Context, p models.DashboardPanel) error {
	return upsertRecordEntity(ctx, s.client(s.tables.Panels), panelPartition, p.ID, p, nil)
}

// DeletePanel removes a panel or returns ErrNotFound.
func (s *TableStore) DeletePanel(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.client(s.tables.Panels), panelPartition, id)
}
