package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
)

// Summary is the headline view of one period.
type Summary struct {
	Range       Range           `json:"range"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	Average     decimal.Decimal `json:"average"`
	Breakdown   []CategoryShare `json:"breakdown"`
	TopCategory core.Category   `json:"topCategory,omitempty"`
}

// Summarize filters lines to r and aggregates them.
func Summarize(lines []core.Line, r Range) Summary {
	in := FilterByRange(lines, r)
	top, _ := TopCategory(in)
	breakdown := CategoryBreakdown(in)
	if breakdown == nil {
		breakdown = []CategoryShare{}
	}
	return Summary{
		Range:       r,
		Total:       TotalAmount(in),
		Count:       len(in),
		Average:     Average(in),
		Breakdown:   breakdown,
		TopCategory: top,
	}
}

// MonthComparison compares the month containing now with the one before.
type MonthComparison struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Delta    decimal.Decimal `json:"delta"`
}

func CompareMonths(lines []core.Line, now time.Time) MonthComparison {
	current := TotalAmount(FilterByPeriod(lines, Period{Kind: CurrentMonth}, now))
	previous := TotalAmount(FilterByPeriod(lines, Period{Kind: LastMonth}, now))
	return MonthComparison{
		Current:  current,
		Previous: previous,
		Delta:    MonthOverMonthDelta(current, previous),
	}
}

// MileageSummary totals the trips inside a range.
type MileageSummary struct {
	Trips    int             `json:"trips"`
	Distance decimal.Decimal `json:"distance"`
	Amount   decimal.Decimal `json:"amount"`
}

func SummarizeMileage(entries []core.MileageEntry, r Range) MileageSummary {
	out := MileageSummary{Distance: decimal.Zero, Amount: decimal.Zero}
	for _, m := range entries {
		if !r.Contains(m.Date) {
			continue
		}
		out.Trips++
		out.Distance = out.Distance.Add(m.Distance)
		out.Amount = out.Amount.Add(m.Amount)
	}
	return out
}
