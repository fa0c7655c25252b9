// Package insights derives recurring income and fixed-cost estimates from
// financial signals. All functions are pure and safe to call on every change
// of the underlying signal set.
package insights

import (
	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

// CalculateMonthlyIncome returns recurring income streams, built only from
// inflow signals of nature income_source.
func CalculateMonthlyIncome(signals []models.FinancialSignal) []models.RecurringEntity {
	return groupAndNormalize(filter(signals, models.FlowInflow, models.NatureIncomeSource))
}

// CalculateRecurringExpenses returns fixed recurring costs, built only from
// outflow signals of nature fixed_recurring.
func CalculateRecurringExpenses(signals []models.FinancialSignal) []models.RecurringEntity {
	return groupAndNormalize(filter(signals, models.FlowOutflow, models.NatureFixedRecurring))
}

// CalculateDisposableIncome sums income and expenses. The disposable figure
// may be negative.
func CalculateDisposableIncome(income, expenses []models.RecurringEntity) models.DisposableIncomeSummary {
	totalIncome := sum(income)
	totalExpenses := sum(expenses)
	return models.DisposableIncomeSummary{
		TotalIncome:       totalIncome,
		TotalFixedCosts:   totalExpenses,
		DisposableIncome:  totalIncome.Sub(totalExpenses),
		RecurringIncome:   income,
		RecurringExpenses: expenses,
	}
}

// Compute runs the whole pipeline over a signal set.
func Compute(signals []models.FinancialSignal) models.DisposableIncomeSummary {
	return CalculateDisposableIncome(CalculateMonthlyIncome(signals), CalculateRecurringExpenses(signals))
}

func filter(signals []models.FinancialSignal, flow models.FlowDirection, nature models.Nature) []models.FinancialSignal {
	var out []models.FinancialSignal
	for _, s := range signals {
		if s.Flow == flow && s.Nature == nature {
			out = append(out, s)
		}
	}
	return out
}

func sum(entities []models.RecurringEntity) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entities {
		total = total.Add(e.Amount)
	}
	return total
}
