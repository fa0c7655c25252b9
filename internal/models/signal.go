package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlowDirection is the direction of a money movement relative to the user.
type FlowDirection string

const (
	FlowInflow  FlowDirection = "inflow"
	FlowOutflow FlowDirection = "outflow"
)

// Valid reports whether f is a known flow direction.
func (f FlowDirection) Valid() bool {
	return f == FlowInflow || f == FlowOutflow
}

// Nature classifies the recurrence character of a signal.
type Nature string

const (
	NatureFixedRecurring   Nature = "fixed_recurring"
	NatureVariableEstimate Nature = "variable_estimate"
	NatureIncomeSource     Nature = "income_source"
)

// Valid reports whether n is a known nature.
func (n Nature) Valid() bool {
	switch n {
	case NatureFixedRecurring, NatureVariableEstimate, NatureIncomeSource:
		return true
	}
	return false
}

// Frequency is a recurrence interval. The zero value means the frequency is absent.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiWeekly   Frequency = "bi-weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyAnnual     Frequency = "annual"

	// FrequencyUnknown is only produced by recurrence inference, never stored on a signal.
	FrequencyUnknown Frequency = "unknown"
)

// Valid reports whether f is one of the storable frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual:
		return true
	}
	return false
}

// ParseFrequency normalises a loosely written frequency ("Bi-Weekly", " yearly ")
// into a Frequency. ok is false for anything unrecognised.
func ParseFrequency(s string) (Frequency, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "biweekly", "bi weekly", "fortnightly":
		return FrequencyBiWeekly, true
	case "semiannual", "semi annual", "semi-annually", "biannual":
		return FrequencySemiAnnual, true
	case "yearly", "annually":
		return FrequencyAnnual, true
	}
	f := Frequency(v)
	if f.Valid() {
		return f, true
	}
	return "", false
}

// FinancialSignal is a single observed cash-flow event.
type FinancialSignal struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // ISO 8601, may be malformed
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Flow        FlowDirection   `json:"flow"`
	Nature      Nature          `json:"nature"`
	Frequency   Frequency       `json:"frequency,omitempty"`
	Merchant    string          `json:"merchant"`
	Category    Category        `json:"category"`
	SourceDocID string          `json:"sourceDocId,omitempty"`
	CreatedAt   int64           `json:"createdAt"` // unix millis
}

// Validate checks the type constraints of a signal. Malformed dates are allowed.
func (s *FinancialSignal) Validate() error {
	if s.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative: %s", s.Amount)
	}
	if !s.Flow.Valid() {
		return fmt.Errorf("invalid flow: %q", s.Flow)
	}
	if !s.Nature.Valid() {
		return fmt.Errorf("invalid nature: %q", s.Nature)
	}
	if s.Frequency != "" && !s.Frequency.Valid() {
		return fmt.Errorf("invalid frequency: %q", s.Frequency)
	}
	return nil
}

// MerchantKey is the grouping key for recurrence detection.
func (s *FinancialSignal) MerchantKey() string {
	return strings.ToLower(strings.TrimSpace(s.Merchant))
}

// ParsedDate returns the signal date, or false if it cannot be parsed.
func (s *FinancialSignal) ParsedDate() (time.Time, bool) {
	return ParseDate(s.Date)
}
