package storage

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triplog/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleCollection(t *testing.T) core.Collection {
	t.Helper()
	e, err := core.NewExpense("e-1", core.ExpenseInput{
		Title:           "Shell",
		Amount:          dec("65"),
		Category:        core.Fuel,
		Date:            core.NewDate(2024, 5, 9),
		Location:        "Shell",
		Description:     `65 dollars at "Shell"`,
		OdometerReading: dec("45280"),
	})
	require.NoError(t, err)
	e2, err := core.NewExpense("e-2", core.ExpenseInput{
		Title:    "Comped lunch",
		Amount:   decimal.Zero,
		Category: core.Meals,
		Date:     core.NewDate(2024, 5, 10),
	})
	require.NoError(t, err)
	m, err := core.NewMileageEntry("m-1", core.MileageInput{
		Date:          core.NewDate(2023, 11, 2),
		StartLocation: "Home Office",
		EndLocation:   "ABC Corp",
		StartOdometer: dec("45180"),
		EndOdometer:   dec("45230"),
	}, core.NewRateTable([]core.YearRate{{Year: 2023, Rate: dec("0.655")}}))
	require.NoError(t, err)

	return core.Collection{}.WithExpense(e).WithExpense(e2).WithMileage(m)
}

func TestCollectionRoundTrip(t *testing.T) {
	c := sampleCollection(t)

	data, err := EncodeCollection(c)
	require.NoError(t, err)

	back, problems := DecodeCollection(data)
	require.Empty(t, problems)
	require.Len(t, back.Expenses, 2)
	require.Len(t, back.Mileage, 1)

	for i := range c.Expenses {
		want, got := c.Expenses[i], back.Expenses[i]
		assert.Equal(t, want.ID, got.ID)
		assert.True(t, want.Date.Equal(got.Date))
		assert.True(t, want.Amount.Equal(got.Amount))
		assert.True(t, want.OdometerReading.Equal(got.OdometerReading))
		assert.Equal(t, want.Description, got.Description)
	}

	// The stored rate wins over the default table.
	m := back.Mileage[0]
	assert.True(t, m.Rate.Equal(dec("0.655")))
	assert.Equal(t, "32.75", core.FormatAmount(m.Amount))
	assert.True(t, m.Distance.Equal(dec("50")))
}

func TestEncodeUsesFlatTypedEntries(t *testing.T) {
	data, err := EncodeCollection(sampleCollection(t))
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"type": "expense"`)
	assert.Contains(t, s, `"type": "mileage"`)
	assert.Contains(t, s, `"date": "2024-05-09"`)
	assert.Contains(t, s, `"amount": "65.00"`)
}

func TestDecodeDropsBadEntries(t *testing.T) {
	data := `[
		{"type":"expense","id":"ok","date":"2024-01-02","title":"Taxi","amount":"12.00","category":"Transportation"},
		{"type":"expense","id":"bad-date","date":"02/01/2024","title":"Taxi","amount":"12.00","category":"Transportation"},
		{"type":"expense","id":"bad-cat","date":"2024-01-02","title":"Taxi","amount":"12.00","category":"Groceries"},
		{"type":"mileage","id":"bad-range","date":"2024-01-02","startLocation":"A","endLocation":"B","startOdometer":"100","endOdometer":"100","amount":"0.00"},
		{"type":"boat","id":"x"},
		"not an object"
	]`
	c, problems := DecodeCollection([]byte(data))
	require.Len(t, c.Expenses, 1)
	assert.Equal(t, "ok", c.Expenses[0].ID)
	assert.Empty(t, c.Mileage)
	assert.Len(t, problems, 5)
}

func TestDecodeEmptyAndBroken(t *testing.T) {
	c, problems := DecodeCollection([]byte("  \n"))
	assert.Zero(t, c.Len())
	assert.Empty(t, problems)

	c, problems = DecodeCollection([]byte("{"))
	assert.Zero(t, c.Len())
	require.Len(t, problems, 1)
	assert.True(t, strings.HasPrefix(problems[0].Error(), "decode collection"))
}
