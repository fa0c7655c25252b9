package projection

import (
	"math"
	"testing"

	"github.com/rocjay1/burnrate/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id string, balance, contribution, rate float64) models.InvestmentAccount {
	return models.InvestmentAccount{
		ID:                  id,
		Name:                id,
		CurrentBalance:      decimal.NewFromFloat(balance),
		MonthlyContribution: decimal.NewFromFloat(contribution),
		AnnualGrowthRate:    decimal.NewFromFloat(rate),
	}
}

func TestProject_Empty(t *testing.T) {
	series := Project(nil, 30, 2025)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestProject_LengthAndYearZero(t *testing.T) {
	accounts := []models.InvestmentAccount{
		account("a", 1234.4, 100, 7),
		account("b", 5000, 0, 5),
	}
	for _, years := range []int{0, 1, 5, 30, 50} {
		series := Project(accounts, years, 2025)
		require.Len(t, series, years+1)
		first := series[0]
		assert.Equal(t, 2025, first.Year)
		assert.True(t, first.Accounts["a"].Equal(decimal.NewFromInt(1234)))
		assert.True(t, first.Accounts["b"].Equal(decimal.NewFromInt(5000)))
		assert.True(t, first.Amount.Equal(decimal.NewFromInt(6234)))
		assert.True(t, first.Invested.Equal(decimal.NewFromInt(6234)))
		assert.Equal(t, 2025+years, series[years].Year)
	}
}

func TestProject_FlatBalance(t *testing.T) {
	series := Project([]models.InvestmentAccount{account("cash", 10000, 0, 0)}, 10, 2025)
	for _, snap := range series {
		assert.True(t, snap.Amount.Equal(decimal.NewFromInt(10000)), "year %d: %s", snap.Year, snap.Amount)
		assert.True(t, snap.Invested.Equal(decimal.NewFromInt(10000)))
	}
}

func TestProject_ContributionsOnly(t *testing.T) {
	series := Project([]models.InvestmentAccount{account("ira", 0, 100, 0)}, 1, 2025)
	require.Len(t, series, 2)
	assert.True(t, series[1].Amount.Equal(decimal.NewFromInt(1200)), "got %s", series[1].Amount)
	assert.True(t, series[1].Invested.Equal(decimal.NewFromInt(1200)))
	assert.True(t, series[1].Accounts["ira"].Equal(decimal.NewFromInt(1200)))
}

func TestProject_InterestBeforeContribution(t *testing.T) {
	series := Project([]models.InvestmentAccount{account("x", 1000, 100, 12)}, 1, 2025)

	balance := 1000.0
	for m := 0; m < 12; m++ {
		balance = balance + balance*0.01 + 100
	}
	want := decimal.NewFromFloat(math.Floor(balance + 0.5))
	assert.True(t, series[1].Amount.Equal(want), "want %s got %s", want, series[1].Amount)
	assert.True(t, series[1].Invested.Equal(decimal.NewFromInt(2200)))

	// Contributing first would have produced a larger balance.
	alt := 1000.0
	for m := 0; m < 12; m++ {
		alt = (alt + 100) * 1.01
	}
	assert.True(t, decimal.NewFromFloat(alt).GreaterThan(series[1].Amount))
}

func TestProject_NoIntermediateRounding(t *testing.T) {
	// 0.4 per month would round to 0 each month if rounding happened early.
	series := Project([]models.InvestmentAccount{account("pennies", 0, 0.4, 0)}, 2, 2025)
	assert.True(t, series[1].Amount.Equal(decimal.NewFromInt(5)), "4.8 rounds to 5, got %s", series[1].Amount)
	assert.True(t, series[2].Amount.Equal(decimal.NewFromInt(10)), "9.6 rounds to 10, got %s", series[2].Amount)
}

func TestProject_NegativeGrowth(t *testing.T) {
	series := Project([]models.InvestmentAccount{account("crypto", 10000, 0, -12)}, 3, 2025)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i].Amount.LessThan(series[i-1].Amount))
	}
	want := math.Floor(10000*math.Pow(0.99, 12) + 0.5)
	assert.True(t, series[1].Amount.Equal(decimal.NewFromFloat(want)))
	assert.True(t, series[3].Invested.Equal(decimal.NewFromInt(10000)))
}

func TestProject_ZeroAccountStillListed(t *testing.T) {
	series := Project([]models.InvestmentAccount{
		account("empty", 0, 0, 7),
		account("main", 100, 0, 0),
	}, 3, 2025)
	for _, snap := range series {
		v, ok := snap.Accounts["empty"]
		assert.True(t, ok)
		assert.True(t, v.IsZero())
	}
}

func TestProject_NegativeYears(t *testing.T) {
	series := Project([]models.InvestmentAccount{account("a", 1, 0, 0)}, -4, 2025)
	assert.Len(t, series, 1)
}
