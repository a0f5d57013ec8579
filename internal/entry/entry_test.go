package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Plan(t *testing.T) {
	amount, rate, paid := 5000.0, 16.0, 3
	ok := Plan{Card: "HDFC", Amount: &amount, Rate: &rate, Paid: &paid}
	require.NoError(t, Validate(ok))

	blank := Plan{Card: "HDFC"}
	assert.NoError(t, Validate(blank), "blank inputs are allowed for plans")

	negative := -1
	bad := Plan{Paid: &negative}
	err := Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card is required")
	assert.Contains(t, err.Error(), "paid must be at least 0")

	steep := 120.0
	assert.NoError(t, Validate(Plan{Card: "x", Rate: &steep}), "rates above 100% are allowed")
	below := -0.5
	assert.ErrorContains(t, Validate(Plan{Card: "x", Rate: &below}), "rate must be at least 0")
}

func TestValidate_OtherKinds(t *testing.T) {
	assert.NoError(t, Validate(Income{Type: "Salary", Amount: 1000, Recurring: true}))
	assert.ErrorContains(t, Validate(Income{Amount: 1}), "type is required")
	assert.ErrorContains(t, Validate(Fixed{Category: "Rent", Amount: -5}), "amount must be at least 0")
	assert.NoError(t, Validate(Expense{Category: "Food", Amount: 10}))
	assert.NoError(t, Validate(Loan{Type: "Payday", Rate: 390}))
	assert.ErrorContains(t, Validate(Loan{Type: "Home", Rate: -1}), "rate must be at least 0")
	assert.ErrorContains(t, Validate(Card{}), "name is required")
	assert.ErrorContains(t, Validate(Savings{Target: 1}), "month is required")
}

func TestLedgerConversion(t *testing.T) {
	amount := 2500.0
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := Plan{Card: "Axis", Amount: &amount, Start: start}.Ledger()
	require.Len(t, l.Plans, 1)
	p := l.Plans[0]
	assert.Equal(t, "Axis", p.CardName)
	assert.Equal(t, 2500.0, *p.InstallmentAmount)
	assert.Nil(t, p.AnnualRatePercent)
	assert.Nil(t, p.InstallmentsPaid)
	assert.Equal(t, start, p.StartDate)
	assert.Nil(t, p.EMI)
	assert.Equal(t, 1, l.Len())

	assert.Equal(t, 1, Income{Type: "Salary"}.Ledger().Len())
	assert.Equal(t, 1, Loan{Type: "Car"}.Ledger().Len())
	assert.Equal(t, 1, Savings{Month: "Jan"}.Ledger().Len())
}

func TestParseHelpers(t *testing.T) {
	v, err := ParseAmount(" 1,25,000.50 ")
	require.NoError(t, err)
	assert.Equal(t, 125000.5, *v)

	v, err = ParseAmount("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseAmount("12abc")
	assert.Error(t, err)

	n, err := ParseCount("7")
	require.NoError(t, err)
	assert.Equal(t, 7, *n)
	_, err = ParseCount("7.5")
	assert.Error(t, err)

	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)
	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)

	for in, want := range map[string]bool{"Yes": true, "y": true, "no": false, "": false} {
		got, err := ParseYesNo(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err = ParseYesNo("maybe")
	assert.Error(t, err)
}
