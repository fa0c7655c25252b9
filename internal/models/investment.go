package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InvestmentAccount is an account tracked for wealth projections.
type InvestmentAccount struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	AnnualGrowthRate    decimal.Decimal `json:"annualGrowthRate"` // percent per year, 7 means 7%
	SignalID            string          `json:"signalId,omitempty"`
}

// Validate checks the account fields a user can edit.
func (a *InvestmentAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if a.MonthlyContribution.IsNegative() {
		return fmt.Errorf("monthly contribution must not be negative: %s", a.MonthlyContribution)
	}
	return nil
}

// ContributionSignal builds the companion recurring-outflow signal that represents
// the account's monthly contribution. The signal id is the account's SignalID.
func (a *InvestmentAccount) ContributionSignal(date string, createdAt int64) FinancialSignal {
	return FinancialSignal{
		ID:        a.SignalID,
		Date:      date,
		Amount:    a.MonthlyContribution,
		Currency:  "USD",
		Flow:      FlowOutflow,
		Nature:    NatureFixedRecurring,
		Frequency: FrequencyMonthly,
		Merchant:  a.Name,
		Category:  CategoryInvestments,
		CreatedAt: createdAt,
	}
}

// ProjectionSnapshot is one year of a wealth projection. Money values are whole currency units.
type ProjectionSnapshot struct {
	Year     int                        `json:"year"`
	Amount   decimal.Decimal            `json:"amount"`
	Invested decimal.Decimal            `json:"invested"`
	Accounts map[string]decimal.Decimal `json:"accounts"`
}
