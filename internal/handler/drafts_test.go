package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/rocjay1/burnrate/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDrafts_Latest(t *testing.T) {
	mockDb := &MockDatabaseClient{
		LatestDraftFunc: func(ctx context.Context) (*models.Draft, error) {
			return &models.Draft{ID: "d1", FileName: "march.png"}, nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	w := httptest.NewRecorder()
	deps.HandleDrafts(w, httptest.NewRequest(http.MethodGet, "/api/drafts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var draft models.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draft))
	assert.Equal(t, "d1", draft.ID)

	mockDb.LatestDraftFunc = func(ctx context.Context) (*models.Draft, error) { return nil, services.ErrNotFound }
	w = httptest.NewRecorder()
	deps.HandleDrafts(w, httptest.NewRequest(http.MethodGet, "/api/drafts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDrafts_Clear(t *testing.T) {
	cleared := false
	deps := &Dependencies{Database: &MockDatabaseClient{
		ClearDraftsFunc: func(ctx context.Context) error {
			cleared = true
			return nil
		},
	}}

	w := httptest.NewRecorder()
	deps.HandleDrafts(w, httptest.NewRequest(http.MethodDelete, "/api/drafts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cleared)
}

func TestHandleConfirmDraft_SavesVerifiedSignals(t *testing.T) {
	var doc models.UploadedDocument
	var saved []models.FinancialSignal
	cleared := false
	mockDb := &MockDatabaseClient{
		GetDraftFunc: func(ctx context.Context, id string) (*models.Draft, error) {
			return &models.Draft{ID: id, FileName: "march.png", BlobName: "uploads/march.png"}, nil
		},
		SaveDocumentWithSignalsFunc: func(ctx context.Context, d models.UploadedDocument, signals []models.FinancialSignal) error {
			doc = d
			saved = signals
			return nil
		},
		ClearDraftsFunc: func(ctx context.Context) error {
			cleared = true
			return nil
		},
	}
	cache := &MockCache{}
	deps := &Dependencies{Database: mockDb, Cache: cache, Now: fixedClock}

	body := `{"draftId":"d1","signals":[
		{"id":"tmp-1","date":"2024-03-01","amount":1500,"flow":"outflow","nature":"fixed_recurring","frequency":"monthly","merchant":"Rent","category":"Housing","currency":"USD"},
		{"id":"tmp-2","date":"2024-03-05","amount":60,"flow":"outflow","nature":"variable_estimate","merchant":"Gas","category":"Transport","currency":"USD"}
	]}`
	w := httptest.NewRecorder()
	deps.HandleConfirmDraft(w, httptest.NewRequest(http.MethodPost, "/api/drafts/confirm", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "march.png", doc.FileName)
	assert.Equal(t, "uploads/march.png", doc.BlobName)
	assert.Equal(t, 2, doc.SignalCount)
	assert.Equal(t, fixedNow.UnixMilli(), doc.UploadedAt)
	require.Len(t, saved, 2)
	for _, s := range saved {
		assert.NotContains(t, []string{"tmp-1", "tmp-2"}, s.ID)
		assert.Equal(t, doc.ID, s.SourceDocID)
		assert.Equal(t, fixedNow.UnixMilli(), s.CreatedAt)
	}
	assert.True(t, cleared)
	assert.Equal(t, 1, cache.Invalidations)
}

func TestHandleConfirmDraft_FallsBackToDraftSignals(t *testing.T) {
	var saved []models.FinancialSignal
	mockDb := &MockDatabaseClient{
		GetDraftFunc: func(ctx context.Context, id string) (*models.Draft, error) {
			return &models.Draft{ID: id, Signals: []models.FinancialSignal{
				sig("x", "2024-03-01", "Rent", 1500, models.FlowOutflow, models.NatureFixedRecurring, models.FrequencyMonthly),
			}}, nil
		},
		SaveDocumentWithSignalsFunc: func(ctx context.Context, d models.UploadedDocument, signals []models.FinancialSignal) error {
			saved = signals
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	w := httptest.NewRecorder()
	deps.HandleConfirmDraft(w, httptest.NewRequest(http.MethodPost, "/api/drafts/confirm", strings.NewReader(`{"draftId":"d1"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, saved, 1)
	assert.Equal(t, "Rent", saved[0].Merchant)
}

func TestHandleConfirmDraft_Errors(t *testing.T) {
	mockDb := &MockDatabaseClient{
		GetDraftFunc: func(ctx context.Context, id string) (*models.Draft, error) {
			if id == "gone" {
				return nil, services.ErrNotFound
			}
			return &models.Draft{ID: id}, nil
		},
		SaveDocumentWithSignalsFunc: func(ctx context.Context, d models.UploadedDocument, signals []models.FinancialSignal) error {
			assert.Fail(t, "nothing should be saved")
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing draft id", `{"signals":[]}`, http.StatusBadRequest},
		{"unknown draft", `{"draftId":"gone"}`, http.StatusNotFound},
		{"invalid signal", `{"draftId":"d1","signals":[{"amount":-3,"flow":"outflow","nature":"fixed_recurring"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			deps.HandleConfirmDraft(w, httptest.NewRequest(http.MethodPost, "/api/drafts/confirm", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
