package models

import "github.com/shopspring/decimal"

// RecurringEntity is a merchant-grouped, monthly-normalised recurring cash flow.
type RecurringEntity struct {
	Merchant  string          `json:"merchant"`
	Amount    decimal.Decimal `json:"amount"` // monthly equivalent
	Frequency Frequency       `json:"frequency"`
	LastDate  string          `json:"lastDate"`
}

// DisposableIncomeSummary is the top-line recurring cash-flow summary.
type DisposableIncomeSummary struct {
	TotalIncome       decimal.Decimal   `json:"totalIncome"`
	TotalFixedCosts   decimal.Decimal   `json:"totalFixedCosts"`
	DisposableIncome  decimal.Decimal   `json:"disposableIncome"`
	RecurringIncome   []RecurringEntity `json:"recurringIncome"`
	RecurringExpenses []RecurringEntity `json:"recurringExpenses"`
}
