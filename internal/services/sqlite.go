package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocjay1/burnrate/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps all records in a local SQLite file. Each table stores the
// record as JSON next to the columns needed for lookups and cascades.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS signals (
	id TEXT PRIMARY KEY,
	source_doc_id TEXT NOT NULL DEFAULT '',
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_signals_source_doc ON signals(source_doc_id);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS investments (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tax_documents (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tax_insights (
	id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tax_insights_doc ON tax_insights(doc_id);

CREATE TABLE IF NOT EXISTS panels (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	slog.Info("sqlite store initialized", "path", path)
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func queryRecords[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			slog.Warn("skipping unreadable record", "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryRecord[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var raw string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &v, nil
}

func deleteByID(ctx context.Context, ex execer, table, id string) error {
	res, err := ex.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertSignal(ctx context.Context, ex execer, sig models.FinancialSignal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("failed to encode signal: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO signals (id, source_doc_id, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET source_doc_id = excluded.source_doc_id, data = excluded.data`,
		sig.ID, sig.SourceDocID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save signal %s: %w", sig.ID, err)
	}
	return nil
}

func upsertRecord(ctx context.Context, ex execer, table, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", table, err)
	}
	_, err = ex.ExecContext(ctx,
		"INSERT INTO "+table+" (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		id, string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s record %s: %w", table, id, err)
	}
	return nil
}

// ListSignals returns every stored signal.
func (s *SQLiteStore) ListSignals(ctx context.Context) ([]models.FinancialSignal, error) {
	signals, err := queryRecords[models.FinancialSignal](ctx, s.db, "SELECT data FROM signals ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	return signals, nil
}

// GetSignal returns one signal or ErrNotFound.
func (s *SQLiteStore) GetSignal(ctx context.Context, id string) (*models.FinancialSignal, error) {
	return queryRecord[models.FinancialSignal](ctx, s.db, "SELECT data FROM signals WHERE id = ?", id)
}

// SaveSignal inserts or replaces a signal.
func (s *SQLiteStore) SaveSignal(ctx context.Context, sig models.FinancialSignal) error {
	return upsertSignal(ctx, s.db, sig)
}

// SaveSignals writes all signals in one transaction.
func (s *SQLiteStore) SaveSignals(ctx context.Context, signals []models.FinancialSignal) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, sig := range signals {
			if err := upsertSignal(ctx, tx, sig); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSignal removes a signal or returns ErrNotFound.
func (s *SQLiteStore) DeleteSignal(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "signals", id)
}

// DeleteAllSignals empties the signal table.
func (s *SQLiteStore) DeleteAllSignals(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM signals"); err != nil {
		return fmt.Errorf("failed to clear signals: %w", err)
	}
	return nil
}

// ListDocuments returns every uploaded statement.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]models.UploadedDocument, error) {
	docs, err := queryRecords[models.UploadedDocument](ctx, s.db, "SELECT data FROM documents ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// GetDocument returns one document or ErrNotFound.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*models.UploadedDocument, error) {
	return queryRecord[models.UploadedDocument](ctx, s.db, "SELECT data FROM documents WHERE id = ?", id)
}

// SaveDocumentWithSignals stores a verified document and its signals atomically.
func (s *SQLiteStore) SaveDocumentWithSignals(ctx context.Context, doc models.UploadedDocument, signals []models.FinancialSignal) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertRecord(ctx, tx, "documents", doc.ID, doc); err != nil {
			return err
		}
		for _, sig := range signals {
			if err := upsertSignal(ctx, tx, sig); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteDocument removes a document and every signal sourced from it.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteByID(ctx, tx, "documents", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM signals WHERE source_doc_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete signals of document %s: %w", id, err)
		}
		return nil
	})
}

// SaveDraft stores an extraction draft.
func (s *SQLiteStore) SaveDraft(ctx context.Context, d models.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, created_at, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, data = excluded.data`,
		d.ID, d.CreatedAt, string(data))
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", d.ID, err)
	}
	return nil
}

// GetDraft returns one draft or ErrNotFound.
func (s *SQLiteStore) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	return queryRecord[models.Draft](ctx, s.db, "SELECT data FROM drafts WHERE id = ?", id)
}

// LatestDraft returns the most recently created draft or ErrNotFound.
func (s *SQLiteStore) LatestDraft(ctx context.Context) (*models.Draft, error) {
	return queryRecord[models.Draft](ctx, s.db, "SELECT data FROM drafts ORDER BY created_at DESC, rowid DESC LIMIT 1")
}

// ClearDrafts removes all drafts.
func (s *SQLiteStore) ClearDrafts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts"); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

// ListInvestments returns every investment account.
func (s *SQLiteStore) ListInvestments(ctx context.Context) ([]models.InvestmentAccount, error) {
	accounts, err := queryRecords[models.InvestmentAccount](ctx, s.db, "SELECT data FROM investments ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return accounts, nil
}

// GetInvestment returns one account or ErrNotFound.
func (s *SQLiteStore) GetInvestment(ctx context.Context, id string) (*models.InvestmentAccount, error) {
	return queryRecord[models.InvestmentAccount](ctx, s.db, "SELECT data FROM investments WHERE id = ?", id)
}

// SaveInvestment inserts or replaces an account.
func (s *SQLiteStore) SaveInvestment(ctx context.Context, a models.InvestmentAccount) error {
	return upsertRecord(ctx, s.db, "investments", a.ID, a)
}

// DeleteInvestment removes an account or returns ErrNotFound.
func (s *SQLiteStore) DeleteInvestment(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "investments", id)
}

// ListTaxDocuments returns every tax document.
func (s *SQLiteStore) ListTaxDocuments(ctx context.Context) ([]models.TaxDocument, error) {
	docs, err := queryRecords[models.TaxDocument](ctx, s.db, "SELECT data FROM tax_documents ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list tax documents: %w", err)
	}
	return docs, nil
}

// GetTaxDocument returns one tax document or ErrNotFound.
func (s *SQLiteStore) GetTaxDocument(ctx context.Context, id string) (*models.TaxDocument, error) {
	return queryRecord[models.TaxDocument](ctx, s.db, "SELECT data FROM tax_documents WHERE id = ?", id)
}

// SaveTaxDocument stores a tax document with its insights atomically.
func (s *SQLiteStore) SaveTaxDocument(ctx context.Context, doc models.TaxDocument, insights []models.TaxInsight) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertRecord(ctx, tx, "tax_documents", doc.ID, doc); err != nil {
			return err
		}
		for _, in := range insights {
			data, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("failed to encode tax insight: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tax_insights (id, doc_id, data) VALUES (?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET doc_id = excluded.doc_id, data = excluded.data`,
				in.ID, in.DocID, string(data)); err != nil {
				return fmt.Errorf("failed to save tax insight %s: %w", in.ID, err)
			}
		}
		return nil
	})
}

// ListTaxInsights returns the insights of one document, or all when docID is empty.
func (s *SQLiteStore) ListTaxInsights(ctx context.Context, docID string) ([]models.TaxInsight, error) {
	var (
		insights []models.TaxInsight
		err      error
	)
	if docID == "" {
		insights, err = queryRecords[models.TaxInsight](ctx, s.db, "SELECT data FROM tax_insights ORDER BY rowid")
	} else {
		insights, err = queryRecords[models.TaxInsight](ctx, s.db, "SELECT data FROM tax_insights WHERE doc_id = ? ORDER BY rowid", docID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tax insights: %w", err)
	}
	return insights, nil
}

// DeleteTaxDocument removes a tax document and its insights.
func (s *SQLiteStore) DeleteTaxDocument(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteByID(ctx, tx, "tax_documents", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tax_insights WHERE doc_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete insights of tax document %s: %w", id, err)
		}
		return nil
	})
}

// ListPanels returns every dashboard panel in creation order.
func (s *SQLiteStore) ListPanels(ctx context.Context) ([]models.DashboardPanel, error) {
	panels, err := queryRecords[models.DashboardPanel](ctx, s.db, "SELECT data FROM panels ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}
	return panels, nil
}

// GetPanel returns one panel or ErrNotFound.
func (s *SQLiteStore) GetPanel(ctx context.Context, id string) (*models.DashboardPanel, error) {
	return queryRecord[models.DashboardPanel](ctx, s.db, "SELECT data FROM panels WHERE id = ?", id)
}

// SavePanel inserts or replaces a panel.
func (s *SQLiteStore) SavePanel(ctx context.Context, p models.DashboardPanel) error {
	return upsertRecord(ctx, s.db, "panels", p.ID, p)
}

// DeletePanel removes a panel or returns ErrNotFound.
func (s *SQLiteStore) DeletePanel(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "panels", id)
}
