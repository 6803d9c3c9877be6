package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMileageRate is the per-mile reimbursement for 2024.
var DefaultMileageRate = decimal.RequireFromString("0.68")

type YearRate struct {
	Year int
	Rate decimal.Decimal
}

// RateTable is a read-only, year-ordered per-distance-unit rate lookup.
type RateTable struct {
	entries []YearRate
}

// NewRateTable copies and sorts entries. A later duplicate year replaces an
// earlier one. An empty list yields a table holding only DefaultMileageRate
// for 2024.
func NewRateTable(entries []YearRate) *RateTable {
	byYear := make(map[int]decimal.Decimal, len(entries))
	for _, e := range entries {
		byYear[e.Year] = e.Rate
	}
	if len(byYear) == 0 {
		byYear[2024] = DefaultMileageRate
	}
	sorted := make([]YearRate, 0, len(byYear))
	for y, r := range byYear {
		sorted = append(sorted, YearRate{Year: y, Rate: r})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return &RateTable{entries: sorted}
}

// DefaultRateTable returns the built-in table.
func DefaultRateTable() *RateTable {
	return NewRateTable(nil)
}

// RateFor returns the rate of the greatest configured year <= year, or the
// earliest configured rate when year predates the whole table.
func (t *RateTable) RateFor(year int) decimal.Decimal {
	if t == nil || len(t.entries) == 0 {
		return DefaultMileageRate
	}
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Year > year })
	if i == 0 {
		return t.entries[0].Rate
	}
	return t.entries[i-1].Rate
}

// Entries returns a copy of the configured (year, rate) pairs in year order.
func (t *RateTable) Entries() []YearRate {
	return append([]YearRate(nil), t.entries...)
}

// ParseRateTable reads "2023:0.68,2024:0.70" style lists.
func ParseRateTable(s string) (*RateTable, error) {
	var entries []YearRate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		yearStr, rateStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("rate entry %q: expected YEAR:RATE", part)
		}
		year, err := strconv.Atoi(strings.TrimSpace(yearStr))
		if err != nil {
			return nil, fmt.Errorf("rate entry %q: invalid year: %w", part, err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rateStr))
		if err != nil {
			return nil, fmt.Errorf("rate entry %q: invalid rate: %w", part, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("rate entry %q: rate cannot be negative", part)
		}
		entries = append(entries, YearRate{Year: year, Rate: rate})
	}
	return NewRateTable(entries), nil
}
