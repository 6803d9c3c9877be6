package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Category   core.Category   `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// WeekBucket aggregates one of the four fixed weekly windows of a month.
type WeekBucket struct {
	Label  string          `json:"label"`
	Start  core.Date       `json:"start"`
	End    core.Date       `json:"end"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

func FilterByRange(lines []core.Line, r Range) []core.Line {
	return filter(lines, func(l core.Line) bool { return r.Contains(l.Date) })
}

func FilterByPeriod(lines []core.Line, p Period, now time.Time) []core.Line {
	return FilterByRange(lines, p.Range(now))
}

// FilterByCategory keeps lines of category c. The empty category keeps all.
func FilterByCategory(lines []core.Line, c core.Category) []core.Line {
	if c == "" {
		return append([]core.Line(nil), lines...)
	}
	return filter(lines, func(l core.Line) bool { return l.Category == c })
}

func FilterByKind(lines []core.Line, k core.RecordKind) []core.Line {
	return filter(lines, func(l core.Line) bool { return l.Kind == k })
}

func filter(lines []core.Line, keep func(core.Line) bool) []core.Line {
	out := make([]core.Line, 0, len(lines))
	for _, l := range lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func TotalAmount(lines []core.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// Average is the mean amount per line, rounded to cents. Zero for no lines.
func Average(lines []core.Line) decimal.Decimal {
	if len(lines) == 0 {
		return decimal.Zero
	}
	return core.RoundCurrency(TotalAmount(lines).Div(decimal.NewFromInt(int64(len(lines)))))
}

// CategoryBreakdown groups lines by category, largest amount first. Equal
// amounts keep the order in which their categories first appear.
func CategoryBreakdown(lines []core.Line) []CategoryShare {
	var (
		out   []CategoryShare
		index = map[core.Category]int{}
	)
	for _, l := range lines {
		i, ok := index[l.Category]
		if !ok {
			i = len(out)
			index[l.Category] = i
			out = append(out, CategoryShare{Category: l.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(l.Amount)
		out[i].Count++
	}
	total := TotalAmount(lines)
	for i := range out {
		out[i].Percentage = Percentage(out[i].Amount, total)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

// Percentage returns part/total*100, or zero when total is zero.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// TopCategory returns the category with the largest total. The bool is false
// for empty input.
func TopCategory(lines []core.Line) (core.Category, bool) {
	b := CategoryBreakdown(lines)
	if len(b) == 0 {
		return "", false
	}
	return b[0].Category, true
}

// MonthOverMonthDelta is the percentage change from previous to current,
// defined as zero when previous is zero.
func MonthOverMonthDelta(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// WeeklyBuckets splits the month containing monthRef into days 1-7, 8-14,
// 15-21 and 22 to month end, and aggregates lines into them. Lines outside
// the month are ignored.
func WeeklyBuckets(lines []core.Line, monthRef core.Date) [4]WeekBucket {
	month := MonthRange(monthRef.Time)
	var out [4]WeekBucket
	for i := range out {
		out[i] = WeekBucket{
			Label:  "Week " + strconv.Itoa(i+1),
			Start:  core.NewDate(monthRef.Year(), monthRef.Month(), i*7+1),
			End:    core.NewDate(monthRef.Year(), monthRef.Month(), (i+1)*7),
			Amount: decimal.Zero,
		}
	}
	out[3].End = month.End

	for _, l := range lines {
		if !month.Contains(l.Date) {
			continue
		}
		i := (l.Date.Day() - 1) / 7
		if i > 3 {
			i = 3
		}
		out[i].Amount = out[i].Amount.Add(l.Amount)
		out[i].Count++
	}
	return out
}
