// Package projection simulates month-by-month compound growth of investment
// accounts to produce a yearly wealth projection.
package projection

import (
	"math"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

type accountState struct {
	id           string
	balance      float64
	invested     float64
	contribution float64
	monthlyRate  float64
}

// Project returns years+1 snapshots; snapshot i is startYear+i and snapshot 0
// reflects current balances with nothing applied. Each month interest accrues
// on the opening balance before that month's contribution is added, so a
// contribution first earns interest the following month. Values are rounded
// to whole units only when a snapshot is emitted. Negative years are treated
// as zero; no accounts yields an empty series.
func Project(accounts []models.InvestmentAccount, years, startYear int) []models.ProjectionSnapshot {
	if len(accounts) == 0 {
		return []models.ProjectionSnapshot{}
	}
	if years < 0 {
		years = 0
	}

	states := make([]accountState, len(accounts))
	for i, acc := range accounts {
		balance := acc.CurrentBalance.InexactFloat64()
		states[i] = accountState{
			id:           acc.ID,
			balance:      balance,
			invested:     balance,
			contribution: acc.MonthlyContribution.InexactFloat64(),
			monthlyRate:  acc.AnnualGrowthRate.InexactFloat64() / 100 / monthsPerYear,
		}
	}

	series := make([]models.ProjectionSnapshot, 0, years+1)
	for year := 0; year <= years; year++ {
		series = append(series, snapshot(states, startYear+year))
		if year == years {
			break
		}
		for i := range states {
			advanceYear(&states[i])
		}
	}
	return series
}

func advanceYear(s *accountState) {
	for m := 0; m < monthsPerYear; m++ {
		s.balance = s.balance + s.balance*s.monthlyRate + s.contribution
		s.invested += s.contribution
	}
}

func snapshot(states []accountState, year int) models.ProjectionSnapshot {
	var totalBalance, totalInvested float64
	perAccount := make(map[string]decimal.Decimal, len(states))
	for _, s := range states {
		totalBalance += s.balance
		totalInvested += s.invested
		if s.id != "" {
			perAccount[s.id] = roundUnits(s.balance)
		}
	}
	return models.ProjectionSnapshot{
		Year:     year,
		Amount:   roundUnits(totalBalance),
		Invested: roundUnits(totalInvested),
		Accounts: perAccount,
	}
}

// roundUnits rounds half up to a whole currency unit.
func roundUnits(v float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Floor(v + 0.5))
}
