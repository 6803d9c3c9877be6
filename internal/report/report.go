// Package report renders record lines into the exported text formats.
// Output is byte-for-byte deterministic for identical input and clock.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/analytics"
	"triplog/internal/core"
)

const (
	KindDelimited Kind = "csv"
	KindTax       Kind = "tax"
)

// DefaultSavingsRate is the flat marginal rate behind the savings estimate.
var DefaultSavingsRate = decimal.RequireFromString("0.25")

// Kind names an export format.
type Kind string

var tableHeader = []string{"Date", "Title", "Category", "Amount", "Business Purpose", "Location", "Description"}

// ToDelimitedTable renders one comma-separated row per line under a header.
// Free-text columns are always quoted; rows keep input order and are joined
// by "\n" with no trailing newline.
func ToDelimitedTable(lines []core.Line) string {
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, strings.Join(tableHeader, ","))
	for _, l := range lines {
		rows = append(rows, strings.Join([]string{
			l.Date.String(),
			quote(l.Title),
			string(l.Category),
			core.FormatAmount(l.Amount),
			quote(l.BusinessPurpose),
			quote(l.Location),
			quote(l.Description),
		}, ","))
	}
	return strings.Join(rows, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// TaxOptions parameterise the tax summary.
type TaxOptions struct {
	Range       analytics.Range
	Now         time.Time
	SavingsRate *decimal.Decimal // nil means DefaultSavingsRate
}

const humanDate = "Jan 02, 2006"

// ToTaxSummary renders the plain-text tax report for lines, which the caller
// has already filtered to opts.Range. breakdown is printed in the given order.
func ToTaxSummary(lines []core.Line, opts TaxOptions, breakdown []analytics.CategoryShare) string {
	rate := DefaultSavingsRate
	if opts.SavingsRate != nil {
		rate = *opts.SavingsRate
	}
	total := analytics.TotalAmount(lines)

	out := []string{
		"BUSINESS EXPENSE TAX REPORT",
		"Period: " + opts.Range.Start.Format(humanDate) + " - " + opts.Range.End.Format(humanDate),
		"Generated: " + opts.Now.Format(humanDate),
		"",
		"SUMMARY:",
		"Total Business Expenses: " + dollars(total),
		"Number of Transactions: " + decimal.NewFromInt(int64(len(lines))).String(),
		"Estimated Tax Deduction: " + dollars(total),
		"Estimated Tax Savings (" + rate.Mul(decimal.NewFromInt(100)).String() + "%): " + dollars(total.Mul(rate)),
		"",
		"CATEGORY BREAKDOWN:",
	}
	for _, b := range breakdown {
		out = append(out, string(b.Category)+": "+dollars(b.Amount))
	}
	out = append(out,
		"",
		"DETAILED TRANSACTIONS:",
		"Date\t\tTitle\t\tCategory\t\tAmount\t\tBusiness Purpose",
	)
	for _, l := range lines {
		purpose := l.BusinessPurpose
		if purpose == "" {
			purpose = "N/A"
		}
		out = append(out, strings.Join([]string{
			l.Date.String(), l.Title, string(l.Category), dollars(l.Amount), purpose,
		}, "\t\t"))
	}
	return strings.Join(out, "\n")
}

func dollars(d decimal.Decimal) string {
	return "$" + core.FormatAmount(d)
}

// FileName is the download name of an export covering r.
func FileName(kind Kind, r analytics.Range) string {
	switch kind {
	case KindTax:
		return "tax-report-" + r.Start.String() + "-to-" + r.End.String() + ".txt"
	default:
		return "expense-report-" + r.Start.String() + "-to-" + r.End.String() + ".csv"
	}
}

// ParseKind accepts "csv" and "tax".
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDelimited:
		return KindDelimited, true
	case KindTax:
		return KindTax, true
	}
	return "", false
}

// Render produces the named export for lines, filtering them to opts.Range
// first.
func Render(kind Kind, lines []core.Line, opts TaxOptions) string {
	in := analytics.FilterByRange(lines, opts.Range)
	if kind == KindTax {
		return ToTaxSummary(in, opts, analytics.CategoryBreakdown(in))
	}
	return ToDelimitedTable(in)
}
