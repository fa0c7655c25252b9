package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocjay1/burnrate/internal/insights"
	"github.com/rocjay1/burnrate/internal/models"
)

// ErrNoJSON is returned when a model reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSONObject returns the text between the first '{' and the last '}'.
// Models often wrap JSON in prose or markdown fences.
func ExtractJSONObject(content string) (string, error) {
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first == -1 || last == -1 || last < first {
		return "", ErrNoJSON
	}
	return content[first : last+1], nil
}

type rawSignal struct {
	Date      looseString `json:"date"`
	Amount    looseNumber `json:"amount"`
	Currency  looseString `json:"currency"`
	Flow      looseString `json:"flow"`
	Nature    looseString `json:"nature"`
	Frequency looseString `json:"frequency"`
	Merchant  looseString `json:"merchant"`
	Category  looseString `json:"category"`
}

// ParseStatement decodes a statement extraction reply and coerces every item
// into a valid FinancialSignal. Ids, createdAt and sourceDocId are left empty
// for the caller to assign. Items that are not JSON objects are skipped.
func ParseStatement(raw []byte) ([]models.FinancialSignal, error) {
	var envelope struct {
		Signals []json.RawMessage `json:"signals"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode statement extraction: %w", err)
	}

	signals := make([]models.FinancialSignal, 0, len(envelope.Signals))
	for i, item := range envelope.Signals {
		var rs rawSignal
		if err := json.Unmarshal(item, &rs); err != nil {
			slog.Warn("skipping malformed extracted signal", "index", i, "error", err)
			continue
		}
		signals = append(signals, coerceSignal(rs))
	}

	insights.SortByDateDesc(signals)
	return signals, nil
}

func coerceSignal(rs rawSignal) models.FinancialSignal {
	s := models.FinancialSignal{
		Date:     string(rs.Date),
		Currency: strings.ToUpper(string(rs.Currency)),
		Flow:     models.FlowOutflow,
		Nature:   models.Nature(strings.ToLower(string(rs.Nature))),
		Merchant: string(rs.Merchant),
		Category: models.Category(rs.Category),
	}
	if strings.EqualFold(string(rs.Flow), string(models.FlowInflow)) {
		s.Flow = models.FlowInflow
	}
	if !s.Nature.Valid() {
		s.Nature = models.NatureVariableEstimate
	}
	if rs.Amount.Valid {
		s.Amount = rs.Amount.Value.Abs()
	}
	if f, ok := models.ParseFrequency(string(rs.Frequency)); ok {
		s.Frequency = f
	}
	if s.Currency == "" {
		s.Currency = "USD"
	}
	if s.Merchant == "" {
		s.Merchant = "Unknown"
	}
	if s.Category == "" {
		s.Category = models.CategoryUncategorized
	}
	return s
}
