package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFinancialSignal_Validate(t *testing.T) {
	valid := FinancialSignal{
		Amount: decimal.NewFromFloat(12.5),
		Flow:   FlowOutflow,
		Nature: NatureFixedRecurring,
		Date:   "not a date",
	}
	assert.NoError(t, valid.Validate(), "malformed dates must be tolerated")

	negative := valid
	negative.Amount = decimal.NewFromInt(-1)
	assert.Error(t, negative.Validate())

	badFlow := valid
	badFlow.Flow = "sideways"
	assert.Error(t, badFlow.Validate())

	badNature := valid
	badNature.Nature = ""
	assert.Error(t, badNature.Validate())

	badFreq := valid
	badFreq.Frequency = FrequencyUnknown
	assert.Error(t, badFreq.Validate())
}

func TestParseFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"monthly":     FrequencyMonthly,
		" Bi-Weekly ": FrequencyBiWeekly,
		"biweekly":    FrequencyBiWeekly,
		"yearly":      FrequencyAnnual,
		"semi-annual": FrequencySemiAnnual,
		"Quarterly":   FrequencyQuarterly,
	}
	for in, want := range cases {
		got, ok := ParseFrequency(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseFrequency("every full moon")
	assert.False(t, ok)
	_, ok = ParseFrequency("unknown")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-02-08")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("2024-02-08T10:30:00.000Z")
	assert.True(t, ok)
	assert.Equal(t, 10, d.Hour())

	_, ok = ParseDate("32/13/2024")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	a, _ := ParseDate("2024-01-08")
	b, _ := ParseDate("2024-02-08")
	assert.Equal(t, 31, DaysBetween(a, b))
	assert.Equal(t, 31, DaysBetween(b, a))

	early, _ := ParseDate("0001-01-01")
	late, _ := ParseDate("2024-01-01")
	assert.Equal(t, 738885, DaysBetween(early, late))
	assert.Equal(t, 738885, DaysBetween(late, early))

	morning, _ := ParseDate("2024-01-01T23:00:00Z")
	night, _ := ParseDate("2024-01-02T01:00:00Z")
	assert.Equal(t, 0, DaysBetween(morning, night))
}

func TestInvestmentAccount_ContributionSignal(t *testing.T) {
	acc := InvestmentAccount{
		Name:                "Brokerage",
		MonthlyContribution: decimal.NewFromInt(500),
		SignalID:            "sig-1",
	}
	s := acc.ContributionSignal("2025-06-01", 1)

	assert.Equal(t, "sig-1", s.ID)
	assert.Equal(t, FlowOutflow, s.Flow)
	assert.Equal(t, NatureFixedRecurring, s.Nature)
	assert.Equal(t, FrequencyMonthly, s.Frequency)
	assert.Equal(t, CategoryInvestments, s.Category)
	assert.Equal(t, "Brokerage", s.Merchant)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(500)))
	assert.NoError(t, s.Validate())
}
