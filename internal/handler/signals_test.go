package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/rocjay1/burnrate/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sig(id, date, merchant string, amount int64, flow models.FlowDirection, nature models.Nature, freq models.Frequency) models.FinancialSignal {
	return models.FinancialSignal{
		ID:        id,
		Date:      date,
		Amount:    decimal.NewFromInt(amount),
		Currency:  "USD",
		Flow:      flow,
		Nature:    nature,
		Frequency: freq,
		Merchant:  merchant,
		Category:  models.CategoryUncategorized,
	}
}

func TestHandleSignals_ListFiltersAndSorts(t *testing.T) {
	mockDb := &MockDatabaseClient{
		ListSignalsFunc: func(ctx context.Context) ([]models.FinancialSignal, error) {
			return []models.FinancialSignal{
				sig("1", "2024-01-01", "Netflix", 15, models.FlowOutflow, models.NatureFixedRecurring, models.FrequencyMonthly),
				sig("2", "2024-03-01", "Coffee Shop", 4, models.FlowOutflow, models.NatureVariableEstimate, ""),
				sig("3", "2024-02-01", "Gym", 120, models.FlowOutflow, models.NatureFixedRecurring, models.FrequencyAnnual),
			}, nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	req := httptest.NewRequest(http.MethodGet, "/api/signals?view=recurring", nil)
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rows []struct {
		ID            string          `json:"id"`
		MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0].ID)
	assert.True(t, rows[0].MonthlyAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "1", rows[1].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/signals?q=coffee", nil)
	w = httptest.NewRecorder()
	deps.HandleSignals(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].ID)
}

func TestHandleSignals_CreateAssignsIDAndInvalidatesCache(t *testing.T) {
	var saved models.FinancialSignal
	mockDb := &MockDatabaseClient{
		SaveSignalFunc: func(ctx context.Context, s models.FinancialSignal) error {
			saved = s
			return nil
		},
	}
	cache := &MockCache{}
	deps := &Dependencies{Database: mockDb, Cache: cache, Now: fixedClock}

	body := `{"date":"2024-06-01","amount":50,"flow":"outflow","nature":"fixed_recurring","frequency":"monthly","merchant":"Internet","category":"Utilities"}`
	req := httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(body))
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "USD", saved.Currency)
	assert.Equal(t, fixedNow.UnixMilli(), saved.CreatedAt)
	assert.Equal(t, 1, cache.Invalidations)
}

func TestHandleSignals_CreateRejectsInvalid(t *testing.T) {
	mockDb := &MockDatabaseClient{
		SaveSignalFunc: func(ctx context.Context, s models.FinancialSignal) error {
			assert.Fail(t, "invalid signal should not be saved")
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	for _, body := range []string{
		`{"amount":-5,"flow":"outflow","nature":"fixed_recurring"}`,
		`{"amount":5,"flow":"sideways","nature":"fixed_recurring"}`,
		`{"amount":5,"flow":"outflow","nature":"fixed_recurring","frequency":"hourly"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(body))
		w := httptest.NewRecorder()
		deps.HandleSignals(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHandleSignals_UpdateKeepsProvenance(t *testing.T) {
	var saved models.FinancialSignal
	mockDb := &MockDatabaseClient{
		GetSignalFunc: func(ctx context.Context, id string) (*models.FinancialSignal, error) {
			s := sig(id, "2024-01-01", "Rent", 1500, models.FlowOutflow, models.NatureFixedRecurring, models.FrequencyMonthly)
			s.SourceDocID = "doc-1"
			s.CreatedAt = 42
			return &s, nil
		},
		SaveSignalFunc: func(ctx context.Context, s models.FinancialSignal) error {
			saved = s
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	body := `{"id":"s1","date":"2024-01-01","amount":1600,"flow":"outflow","nature":"fixed_recurring","frequency":"monthly","merchant":"Rent","category":"Housing"}`
	req := httptest.NewRequest(http.MethodPut, "/api/signals", strings.NewReader(body))
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", saved.ID)
	assert.Equal(t, "doc-1", saved.SourceDocID)
	assert.Equal(t, int64(42), saved.CreatedAt)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(1600)))
}

func TestHandleSignals_UpdateUnknownID(t *testing.T) {
	mockDb := &MockDatabaseClient{
		GetSignalFunc: func(ctx context.Context, id string) (*models.FinancialSignal, error) {
			return nil, services.ErrNotFound
		},
	}
	deps := &Dependencies{Database: mockDb}

	body := `{"id":"missing","amount":1,"flow":"outflow","nature":"fixed_recurring"}`
	req := httptest.NewRequest(http.MethodPut, "/api/signals", strings.NewReader(body))
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSignals_Delete(t *testing.T) {
	var deleted string
	mockDb := &MockDatabaseClient{
		DeleteSignalFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	cache := &MockCache{}
	deps := &Dependencies{Database: mockDb, Cache: cache}

	req := httptest.NewRequest(http.MethodDelete, "/api/signals?id=abc", nil)
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", deleted)
	assert.Equal(t, 1, cache.Invalidations)

	req = httptest.NewRequest(http.MethodDelete, "/api/signals", nil)
	w = httptest.NewRecorder()
	deps.HandleSignals(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSignals_MethodNotAllowed(t *testing.T) {
	deps := &Dependencies{}
	req := httptest.NewRequest(http.MethodPatch, "/api/signals", nil)
	w := httptest.NewRecorder()
	deps.HandleSignals(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleClearSignals(t *testing.T) {
	called := false
	mockDb := &MockDatabaseClient{
		DeleteAllSignalsFunc: func(ctx context.Context) error {
			called = true
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb, Cache: &MockCache{}}

	req := httptest.NewRequest(http.MethodDelete, "/api/signals/all", nil)
	w := httptest.NewRecorder()
	deps.HandleClearSignals(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)

	mockDb.DeleteAllSignalsFunc = func(ctx context.Context) error { return errors.New("db down") }
	w = httptest.NewRecorder()
	deps.HandleClearSignals(w, httptest.NewRequest(http.MethodDelete, "/api/signals/all", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleImportSignals_Multipart(t *testing.T) {
	var saved []models.FinancialSignal
	mockDb := &MockDatabaseClient{
		SaveSignalsFunc: func(ctx context.Context, signals []models.FinancialSignal) error {
			saved = signals
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb, Cache: &MockCache{}, Now: fixedClock}

	csvContent := "Date,Merchant,Amount,Flow,Nature,Frequency,Category,Currency\n" +
		"2024-06-01,Employer,5000,inflow,income_source,monthly,Salary,USD\n" +
		"2024-06-03,Rent,1500,outflow,fixed_recurring,monthly,Housing,USD\n" +
		"bad-date,Oops,1,outflow,,,,\n"

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "signals.csv")
	part.Write([]byte(csvContent))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/signals/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	deps.HandleImportSignals(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
	assert.Len(t, resp.Errors, 1)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[0].ID)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)
	assert.Equal(t, fixedNow.UnixMilli(), saved[1].CreatedAt)
}

func TestHandleImportSignals_RawBodyWithNoValidRows(t *testing.T) {
	mockDb := &MockDatabaseClient{
		SaveSignalsFunc: func(ctx context.Context, signals []models.FinancialSignal) error {
			assert.Fail(t, "nothing should be saved")
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	req := httptest.NewRequest(http.MethodPost, "/api/signals/import", strings.NewReader("Date,Merchant\n2024-01-01,Shop\n"))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	deps.HandleImportSignals(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Imported)
	assert.NotEmpty(t, resp.Errors)
}
