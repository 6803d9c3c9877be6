package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Fuel           Category = "Fuel"
	Meals          Category = "Meals"
	Accommodation  Category = "Accommodation"
	Transportation Category = "Transportation"
	OfficeSupplies Category = "Office Supplies"
	Equipment      Category = "Equipment"
	Miscellaneous  Category = "Miscellaneous"
)

const (
	KindExpense RecordKind = "expense"
	KindMileage RecordKind = "mileage"
)

// DateLayout is the ISO-8601 calendar date layout used on every wire format.
const DateLayout = "2006-01-02"

type (
	// Category is the closed set of expense categories.
	Category string

	// RecordKind discriminates the two persisted record types.
	RecordKind string

	// Date is a calendar date. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	Expense struct {
		ID              string
		Title           string
		Amount          decimal.Decimal
		Category        Category
		Date            Date
		BusinessPurpose string
		Location        string
		Description     string
		Attendees       string
		OdometerReading decimal.Decimal // fuel stops only, zero when not spoken
	}

	// ExpenseInput carries the caller supplied fields of an Expense.
	ExpenseInput struct {
		Title           string
		Amount          decimal.Decimal
		Category        Category
		Date            Date
		BusinessPurpose string
		Location        string
		Description     string
		Attendees       string
		OdometerReading decimal.Decimal
	}

	// MileageEntry is one business trip. Distance, Rate and Amount are derived.
	MileageEntry struct {
		ID              string
		Date            Date
		StartLocation   string
		EndLocation     string
		BusinessPurpose string
		ClientName      string
		Attendees       string
		Description     string
		StartOdometer   decimal.Decimal
		EndOdometer     decimal.Decimal
		Distance        decimal.Decimal
		Rate            decimal.Decimal
		Amount          decimal.Decimal
	}

	MileageInput struct {
		Date            Date
		StartLocation   string
		EndLocation     string
		BusinessPurpose string
		ClientName      string
		Attendees       string
		Description     string
		StartOdometer   decimal.Decimal
		EndOdometer     decimal.Decimal
	}

	// Line is the flat projection of a record used by aggregation and export.
	Line struct {
		ID              string
		Kind            RecordKind
		Date            Date
		Title           string
		Category        Category
		Amount          decimal.Decimal
		BusinessPurpose string
		Location        string
		Description     string
	}

	// Entry is implemented by every record that can be aggregated or exported.
	Entry interface {
		Line() Line
	}
)

var allCategories = []Category{Fuel, Meals, Accommodation, Transportation, OfficeSupplies, Equipment, Miscellaneous}

// Categories returns the closed category list in declaration order.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory matches a category name case-insensitively, ignoring spaces,
// so "OfficeSupplies" and "office supplies" both resolve.
func ParseCategory(s string) (Category, error) {
	key := normalizeCategoryKey(s)
	for _, c := range allCategories {
		if normalizeCategoryKey(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func normalizeCategoryKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// Valid reports whether c is one of the closed set.
func (c Category) Valid() bool {
	for _, v := range allCategories {
		if v == c {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf keeps the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Equal compares calendar dates.
func (d Date) Equal(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// Between reports whether d lies in the inclusive interval [start, end].
func (d Date) Between(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the calendar part is kept.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// NewExpense validates in and returns the immutable record.
func NewExpense(id string, in ExpenseInput) (Expense, error) {
	if strings.TrimSpace(id) == "" {
		return Expense{}, missingField("id")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Expense{}, missingField("title")
	}
	if in.Amount.IsNegative() {
		return Expense{}, &ValidationError{Kind: InvalidAmount, Field: "amount", Reason: "amount cannot be negative"}
	}
	if !in.Category.Valid() {
		return Expense{}, &ValidationError{Kind: MissingRequiredField, Field: "category", Reason: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if in.Date.IsZero() {
		return Expense{}, missingField("date")
	}
	if in.OdometerReading.IsNegative() {
		return Expense{}, &ValidationError{Kind: InvalidOdometerRange, Field: "odometerReading", Reason: "odometer reading cannot be negative"}
	}
	return Expense{
		ID:              id,
		Title:           title,
		Amount:          RoundCurrency(in.Amount),
		Category:        in.Category,
		Date:            DateOf(in.Date.Time),
		BusinessPurpose: strings.TrimSpace(in.BusinessPurpose),
		Location:        strings.TrimSpace(in.Location),
		Description:     in.Description,
		Attendees:       strings.TrimSpace(in.Attendees),
		OdometerReading: in.OdometerReading,
	}, nil
}

// NewMileageEntry validates the odometer range and derives distance, rate and amount.
func NewMileageEntry(id string, in MileageInput, rates *RateTable) (MileageEntry, error) {
	if strings.TrimSpace(id) == "" {
		return MileageEntry{}, missingField("id")
	}
	if in.Date.IsZero() {
		return MileageEntry{}, missingField("date")
	}
	if in.StartOdometer.IsNegative() || in.EndOdometer.IsNegative() {
		return MileageEntry{}, &ValidationError{Kind: InvalidOdometerRange, Field: "odometer", Reason: "odometer readings cannot be negative"}
	}
	distance := in.EndOdometer.Sub(in.StartOdometer)
	if !distance.IsPositive() {
		return MileageEntry{}, &ValidationError{
			Kind:   InvalidOdometerRange,
			Field:  "endOdometer",
			Reason: fmt.Sprintf("end odometer %s must be greater than start odometer %s", in.EndOdometer, in.StartOdometer),
		}
	}
	if strings.TrimSpace(in.StartLocation) == "" {
		return MileageEntry{}, missingField("startLocation")
	}
	if strings.TrimSpace(in.EndLocation) == "" {
		return MileageEntry{}, missingField("endLocation")
	}
	date := DateOf(in.Date.Time)
	rate := rates.RateFor(date.Year())
	return MileageEntry{
		ID:              id,
		Date:            date,
		StartLocation:   strings.TrimSpace(in.StartLocation),
		EndLocation:     strings.TrimSpace(in.EndLocation),
		BusinessPurpose: strings.TrimSpace(in.BusinessPurpose),
		ClientName:      strings.TrimSpace(in.ClientName),
		Attendees:       strings.TrimSpace(in.Attendees),
		Description:     in.Description,
		StartOdometer:   in.StartOdometer,
		EndOdometer:     in.EndOdometer,
		Distance:        distance,
		Rate:            rate,
		Amount:          RoundCurrency(distance.Mul(rate)),
	}, nil
}

// IsZeroAmount flags comped or otherwise free expenses for a UI warning.
func (e Expense) IsZeroAmount() bool {
	return e.Amount.IsZero()
}

func (e Expense) Line() Line {
	return Line{
		ID:              e.ID,
		Kind:            KindExpense,
		Date:            e.Date,
		Title:           e.Title,
		Category:        e.Category,
		Amount:          e.Amount,
		BusinessPurpose: e.BusinessPurpose,
		Location:        e.Location,
		Description:     e.Description,
	}
}

// Line projects a trip as a Transportation line titled "<start> to <end>".
func (m MileageEntry) Line() Line {
	return Line{
		ID:              m.ID,
		Kind:            KindMileage,
		Date:            m.Date,
		Title:           m.StartLocation + " to " + m.EndLocation,
		Category:        Transportation,
		Amount:          m.Amount,
		BusinessPurpose: m.BusinessPurpose,
		Location:        m.EndLocation,
		Description:     m.Description,
	}
}

// Lines projects any slice of entries.
func Lines[E Entry](entries []E) []Line {
	out := make([]Line, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Line())
	}
	return out
}

func missingField(field string) *ValidationError {
	return &ValidationError{Kind: MissingRequiredField, Field: field, Reason: field + " is required"}
}
