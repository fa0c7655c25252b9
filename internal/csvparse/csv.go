// Package csvparse imports financial signals from CSV exports.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

// Header is the column layout accepted by ParseCSV. Column order is free and
// only Date, Merchant and Amount are required.
var Header = []string{"Date", "Merchant", "Amount", "Flow", "Nature", "Frequency", "Category", "Currency"}

// ParseCSV parses signals from CSV content. It returns the valid signals and
// one message per rejected row. Ids and timestamps are left for the caller.
func ParseCSV(content string) ([]models.FinancialSignal, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}
	if len(records) < 2 {
		return []models.FinancialSignal{}, nil
	}

	headers := parseHeaders(records[0])
	for _, required := range []string{"date", "merchant", "amount"} {
		if _, ok := headers[required]; !ok {
			return nil, []string{fmt.Sprintf("Missing required column: %s", required)}
		}
	}

	signals := []models.FinancialSignal{}
	var errs []string
	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for name, idx := range headers {
			if idx < len(record) {
				row[name] = strings.TrimSpace(record[idx])
			}
		}

		s, err := mapToSignal(row)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		signals = append(signals, *s)
	}
	return signals, errs
}

// parseHeaders maps lowercased column names to their index.
func parseHeaders(row []string) map[string]int {
	headers := make(map[string]int, len(row))
	for i, h := range row {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return headers
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func mapToSignal(row map[string]string) (*models.FinancialSignal, error) {
	date := row["date"]
	if date == "" {
		return nil, fmt.Errorf("missing Date")
	}
	if _, ok := models.ParseDate(date); !ok {
		return nil, fmt.Errorf("invalid Date format: %s", date)
	}

	merchant := row["merchant"]
	if merchant == "" {
		return nil, fmt.Errorf("missing Merchant")
	}

	amountStr := strings.NewReplacer("$", "", ",", "").Replace(row["amount"])
	if amountStr == "" {
		return nil, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Amount: %s", row["amount"])
	}

	// Without an explicit flow the amount sign decides: negative amounts are spending.
	var flow models.FlowDirection
	switch v := strings.ToLower(row["flow"]); v {
	case "":
		flow = models.FlowInflow
		if amount.IsNegative() {
			flow = models.FlowOutflow
		}
	default:
		flow = models.FlowDirection(v)
		if !flow.Valid() {
			return nil, fmt.Errorf("invalid Flow: %s", row["flow"])
		}
	}

	nature := models.NatureVariableEstimate
	if v := row["nature"]; v != "" {
		nature = models.Nature(strings.ToLower(v))
		if !nature.Valid() {
			return nil, fmt.Errorf("invalid Nature: %s", v)
		}
	}

	var freq models.Frequency
	if v := row["frequency"]; v != "" {
		f, ok := models.ParseFrequency(v)
		if !ok {
			return nil, fmt.Errorf("invalid Frequency: %s", v)
		}
		freq = f
	}

	category := models.Category(row["category"])
	if category == "" {
		category = models.CategoryUncategorized
	}
	currency := strings.ToUpper(row["currency"])
	if currency == "" {
		currency = "USD"
	}

	return &models.FinancialSignal{
		Date:      date,
		Amount:    amount.Abs(),
		Currency:  currency,
		Flow:      flow,
		Nature:    nature,
		Frequency: freq,
		Merchant:  merchant,
		Category:  category,
	}, nil
}
