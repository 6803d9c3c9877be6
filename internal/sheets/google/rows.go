package google

import (
	"fmt"
	"strings"

	"triplog/internal/core"
)

var (
	expenseHeader = []any{"ID", "Date", "Title", "Category", "Amount", "Business Purpose", "Location", "Description", "Attendees", "Odometer"}
	mileageHeader = []any{"ID", "Date", "Start Location", "End Location", "Start Odometer", "End Odometer", "Distance", "Rate", "Amount", "Business Purpose", "Attendees", "Description"}
)

// expenseRow lays out an expense in expenseHeader order. Amounts go out as
// fixed two-decimal strings and USER_ENTERED turns them into numbers.
func expenseRow(e core.Expense) []any {
	odometer := ""
	if !e.OdometerReading.IsZero() {
		odometer = e.OdometerReading.String()
	}
	return []any{
		e.ID,
		e.Date.String(),
		e.Title,
		string(e.Category),
		core.FormatAmount(e.Amount),
		e.BusinessPurpose,
		e.Location,
		e.Description,
		e.Attendees,
		odometer,
	}
}

func mileageRow(m core.MileageEntry) []any {
	return []any{
		m.ID,
		m.Date.String(),
		m.StartLocation,
		m.EndLocation,
		m.StartOdometer.String(),
		m.EndOdometer.String(),
		m.Distance.String(),
		m.Rate.String(),
		core.FormatAmount(m.Amount),
		m.BusinessPurpose,
		m.Attendees,
		m.Description,
	}
}

func firstColumn(values [][]any) []string {
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out
}

// findRow returns the 1-based sheet row holding id, or 0.
func findRow(ids []string, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0
	}
	for i, v := range ids {
		if v == id {
			return i + 1
		}
	}
	return 0
}
