package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triplog/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(date core.Date, cat core.Category, amount string) core.Line {
	return core.Line{Kind: core.KindExpense, Date: date, Category: cat, Amount: dec(amount), Title: string(cat)}
}

var now = time.Date(2024, 5, 17, 15, 0, 0, 0, time.UTC)

func TestPeriodRanges(t *testing.T) {
	cases := []struct {
		period     Period
		start, end string
	}{
		{Period{Kind: CurrentMonth}, "2024-05-01", "2024-05-31"},
		{Period{Kind: LastMonth}, "2024-04-01", "2024-04-30"},
		{Period{Kind: Quarter}, "2024-04-01", "2024-06-30"},
		{Period{Kind: Year}, "2024-01-01", "2024-12-31"},
		{Period{Kind: Custom, Start: core.NewDate(2024, 2, 10), End: core.NewDate(2024, 2, 12)}, "2024-02-10", "2024-02-12"},
	}
	for _, tc := range cases {
		t.Run(tc.period.String(), func(t *testing.T) {
			r := tc.period.Range(now)
			assert.Equal(t, tc.start, r.Start.String())
			assert.Equal(t, tc.end, r.End.String())
		})
	}
}

func TestLastMonthAcrossYearBoundary(t *testing.T) {
	r := Period{Kind: LastMonth}.Range(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-01", r.Start.String())
	assert.Equal(t, "2023-12-31", r.End.String())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, CurrentMonth, p.Kind)

	p, err = ParsePeriod("Quarter")
	require.NoError(t, err)
	assert.Equal(t, Quarter, p.Kind)

	p, err = ParsePeriod("2024-01-01..2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, Custom, p.Kind)
	assert.Equal(t, "2024-03-31", p.End.String())

	_, err = ParsePeriod("2024-03-31..2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ParsePeriod("fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestFilterByPeriodIsInclusive(t *testing.T) {
	lines := []core.Line{
		line(core.NewDate(2024, 4, 30), core.Meals, "10"),
		line(core.NewDate(2024, 5, 1), core.Meals, "20"),
		line(core.NewDate(2024, 5, 31), core.Fuel, "30"),
		line(core.NewDate(2024, 6, 1), core.Fuel, "40"),
	}
	got := FilterByPeriod(lines, Period{Kind: CurrentMonth}, now)
	require.Len(t, got, 2)
	assert.True(t, TotalAmount(got).Equal(dec("50")))

	assert.Len(t, FilterByCategory(lines, core.Fuel), 2)
	assert.Len(t, FilterByCategory(lines, ""), 4)
}

func TestEmptyCollection(t *testing.T) {
	assert.True(t, TotalAmount(nil).IsZero())
	assert.Empty(t, CategoryBreakdown(nil))
	_, ok := TopCategory(nil)
	assert.False(t, ok)
	assert.True(t, Average(nil).IsZero())

	s := Summarize(nil, Period{Kind: Year}.Range(now))
	assert.Equal(t, 0, s.Count)
	assert.NotNil(t, s.Breakdown)
	assert.Empty(t, s.TopCategory)
}

func TestCategoryBreakdown(t *testing.T) {
	d := core.NewDate(2024, 5, 2)
	lines := []core.Line{
		line(d, core.Meals, "25"),
		line(d, core.Fuel, "60"),
		line(d, core.Accommodation, "25"),
		line(d, core.Meals, "15"),
		line(d, core.Equipment, "0"),
	}
	b := CategoryBreakdown(lines)
	require.Len(t, b, 4)

	assert.Equal(t, core.Fuel, b[0].Category)
	assert.Equal(t, core.Meals, b[1].Category)
	assert.Equal(t, 2, b[1].Count)
	assert.Equal(t, core.Accommodation, b[2].Category)
	assert.Equal(t, core.Equipment, b[3].Category)
	assert.True(t, b[3].Percentage.IsZero())

	sum := decimal.Zero
	for _, s := range b {
		sum = sum.Add(s.Percentage)
	}
	assert.True(t, sum.Sub(dec("100")).Abs().LessThan(dec("0.0001")), "percentages sum to %s", sum)

	top, ok := TopCategory(lines)
	require.True(t, ok)
	assert.Equal(t, core.Fuel, top)
}

func TestCategoryBreakdownTiesKeepInputOrder(t *testing.T) {
	d := core.NewDate(2024, 5, 2)
	lines := []core.Line{
		line(d, core.Transportation, "10"),
		line(d, core.Meals, "10"),
		line(d, core.Fuel, "10"),
	}
	b := CategoryBreakdown(lines)
	assert.Equal(t, []core.Category{core.Transportation, core.Meals, core.Fuel},
		[]core.Category{b[0].Category, b[1].Category, b[2].Category})
}

func TestCategoryBreakdownZeroTotal(t *testing.T) {
	d := core.NewDate(2024, 5, 2)
	b := CategoryBreakdown([]core.Line{line(d, core.Meals, "0")})
	require.Len(t, b, 1)
	assert.True(t, b[0].Percentage.IsZero())
}

func TestMonthOverMonthDelta(t *testing.T) {
	assert.True(t, MonthOverMonthDelta(dec("150"), dec("100")).Equal(dec("50")))
	assert.True(t, MonthOverMonthDelta(dec("50"), dec("100")).Equal(dec("-50")))
	for _, x := range []string{"0", "1", "999.99"} {
		assert.True(t, MonthOverMonthDelta(dec(x), decimal.Zero).IsZero())
	}
}

func TestCompareMonths(t *testing.T) {
	lines := []core.Line{
		line(core.NewDate(2024, 4, 3), core.Meals, "80"),
		line(core.NewDate(2024, 5, 3), core.Meals, "100"),
	}
	c := CompareMonths(lines, now)
	assert.True(t, c.Current.Equal(dec("100")))
	assert.True(t, c.Previous.Equal(dec("80")))
	assert.True(t, c.Delta.Equal(dec("25")))
}

func TestWeeklyBuckets(t *testing.T) {
	lines := []core.Line{
		line(core.NewDate(2024, 5, 1), core.Meals, "1"),
		line(core.NewDate(2024, 5, 7), core.Meals, "2"),
		line(core.NewDate(2024, 5, 8), core.Meals, "4"),
		line(core.NewDate(2024, 5, 21), core.Meals, "8"),
		line(core.NewDate(2024, 5, 22), core.Meals, "16"),
		line(core.NewDate(2024, 5, 31), core.Meals, "32"),
		line(core.NewDate(2024, 6, 1), core.Meals, "64"),
	}
	b := WeeklyBuckets(lines, core.NewDate(2024, 5, 17))

	want := []struct {
		amount string
		count  int
	}{{"3", 2}, {"4", 1}, {"8", 1}, {"48", 2}}
	for i, w := range want {
		assert.True(t, b[i].Amount.Equal(dec(w.amount)), "bucket %d amount %s", i, b[i].Amount)
		assert.Equal(t, w.count, b[i].Count, "bucket %d count", i)
	}
	assert.Equal(t, "Week 4", b[3].Label)
	assert.Equal(t, "2024-05-31", b[3].End.String())
}

func TestAverageAndSummary(t *testing.T) {
	lines := []core.Line{
		line(core.NewDate(2024, 5, 3), core.Meals, "10"),
		line(core.NewDate(2024, 5, 4), core.Fuel, "20.01"),
		line(core.NewDate(2024, 5, 5), core.Fuel, "5"),
	}
	assert.Equal(t, "11.67", core.FormatAmount(Average(lines)))

	s := Summarize(lines, Period{Kind: CurrentMonth}.Range(now))
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, core.Fuel, s.TopCategory)
	assert.True(t, s.Total.Equal(dec("35.01")))
}

func TestSummarizeMileage(t *testing.T) {
	entries := []core.MileageEntry{
		{Date: core.NewDate(2024, 5, 2), Distance: dec("50"), Amount: dec("34")},
		{Date: core.NewDate(2024, 5, 9), Distance: dec("10"), Amount: dec("6.8")},
		{Date: core.NewDate(2024, 3, 9), Distance: dec("99"), Amount: dec("67.32")},
	}
	m := SummarizeMileage(entries, Period{Kind: CurrentMonth}.Range(now))
	assert.Equal(t, 2, m.Trips)
	assert.True(t, m.Distance.Equal(dec("60")))
	assert.True(t, m.Amount.Equal(dec("40.8")))
}
