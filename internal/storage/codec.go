package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
)

// storedRecord is the flat on-disk shape of both record kinds. Decimal
// values are strings so amounts keep exactly two decimals.
type storedRecord struct {
	Type            core.RecordKind `json:"type"`
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	Title           string          `json:"title,omitempty"`
	Amount          string          `json:"amount"`
	Category        core.Category   `json:"category,omitempty"`
	BusinessPurpose string          `json:"businessPurpose,omitempty"`
	Location        string          `json:"location,omitempty"`
	Description     string          `json:"description,omitempty"`
	Attendees       string          `json:"attendees,omitempty"`
	OdometerReading string          `json:"odometerReading,omitempty"`
	StartLocation   string          `json:"startLocation,omitempty"`
	EndLocation     string          `json:"endLocation,omitempty"`
	ClientName      string          `json:"clientName,omitempty"`
	StartOdometer   string          `json:"startOdometer,omitempty"`
	EndOdometer     string          `json:"endOdometer,omitempty"`
	Distance        string          `json:"distance,omitempty"`
	Rate            string          `json:"rate,omitempty"`
}

// EncodeCollection serialises c as one ordered JSON list: expenses first,
// then mileage entries, each in collection order.
func EncodeCollection(c core.Collection) ([]byte, error) {
	out := make([]storedRecord, 0, c.Len())
	for _, e := range c.Expenses {
		out = append(out, fromExpense(e))
	}
	for _, m := range c.Mileage {
		out = append(out, fromMileage(m))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return data, nil
}

// DecodeCollection parses data written by EncodeCollection. Entries that do
// not describe a valid record are dropped and reported in the returned
// errors; only an unreadable top-level document yields an empty collection.
func DecodeCollection(data []byte) (core.Collection, []error) {
	var c core.Collection
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return c, []error{fmt.Errorf("decode collection: %w", err)}
	}

	var problems []error
	for i, msg := range raw {
		var rec storedRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			problems = append(problems, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		switch rec.Type {
		case core.KindExpense:
			e, err := rec.expense()
			if err != nil {
				problems = append(problems, fmt.Errorf("entry %d (%s): %w", i, rec.ID, err))
				continue
			}
			c.Expenses = append(c.Expenses, e)
		case core.KindMileage:
			m, err := rec.mileage()
			if err != nil {
				problems = append(problems, fmt.Errorf("entry %d (%s): %w", i, rec.ID, err))
				continue
			}
			c.Mileage = append(c.Mileage, m)
		default:
			problems = append(problems, fmt.Errorf("entry %d: unknown record type %q", i, rec.Type))
		}
	}
	return c, problems
}

func fromExpense(e core.Expense) storedRecord {
	r := storedRecord{
		Type:            core.KindExpense,
		ID:              e.ID,
		Date:            e.Date.String(),
		Title:           e.Title,
		Amount:          core.FormatAmount(e.Amount),
		Category:        e.Category,
		BusinessPurpose: e.BusinessPurpose,
		Location:        e.Location,
		Description:     e.Description,
		Attendees:       e.Attendees,
	}
	if !e.OdometerReading.IsZero() {
		r.OdometerReading = e.OdometerReading.String()
	}
	return r
}

func fromMileage(m core.MileageEntry) storedRecord {
	return storedRecord{
		Type:            core.KindMileage,
		ID:              m.ID,
		Date:            m.Date.String(),
		Amount:          core.FormatAmount(m.Amount),
		BusinessPurpose: m.BusinessPurpose,
		Description:     m.Description,
		Attendees:       m.Attendees,
		StartLocation:   m.StartLocation,
		EndLocation:     m.EndLocation,
		ClientName:      m.ClientName,
		StartOdometer:   m.StartOdometer.String(),
		EndOdometer:     m.EndOdometer.String(),
		Distance:        m.Distance.String(),
		Rate:            m.Rate.String(),
	}
}

func (r storedRecord) expense() (core.Expense, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("date: %w", err)
	}
	amount, err := parseDecimal(r.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount: %w", err)
	}
	odometer, err := parseDecimal(r.OdometerReading)
	if err != nil {
		return core.Expense{}, fmt.Errorf("odometer reading: %w", err)
	}
	return core.NewExpense(r.ID, core.ExpenseInput{
		Title:           r.Title,
		Amount:          amount,
		Category:        r.Category,
		Date:            date,
		BusinessPurpose: r.BusinessPurpose,
		Location:        r.Location,
		Description:     r.Description,
		Attendees:       r.Attendees,
		OdometerReading: odometer,
	})
}

// mileage rebuilds an entry with the rate it was priced at, which may
// differ from the rate table now in force.
func (r storedRecord) mileage() (core.MileageEntry, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.MileageEntry{}, fmt.Errorf("date: %w", err)
	}
	start, err := parseDecimal(r.StartOdometer)
	if err != nil {
		return core.MileageEntry{}, fmt.Errorf("start odometer: %w", err)
	}
	end, err := parseDecimal(r.EndOdometer)
	if err != nil {
		return core.MileageEntry{}, fmt.Errorf("end odometer: %w", err)
	}
	var rates *core.RateTable
	if r.Rate != "" {
		rate, err := parseDecimal(r.Rate)
		if err != nil {
			return core.MileageEntry{}, fmt.Errorf("rate: %w", err)
		}
		rates = core.NewRateTable([]core.YearRate{{Year: date.Year(), Rate: rate}})
	}
	return core.NewMileageEntry(r.ID, core.MileageInput{
		Date:            date,
		StartLocation:   r.StartLocation,
		EndLocation:     r.EndLocation,
		BusinessPurpose: r.BusinessPurpose,
		ClientName:      r.ClientName,
		Attendees:       r.Attendees,
		Description:     r.Description,
		StartOdometer:   start,
		EndOdometer:     end,
	}, rates)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// EncodeExpense serialises one expense in the collection entry format.
func EncodeExpense(e core.Expense) ([]byte, error) {
	return json.Marshal(fromExpense(e))
}

// EncodeMileage serialises one mileage entry in the collection entry format.
func EncodeMileage(m core.MileageEntry) ([]byte, error) {
	return json.Marshal(fromMileage(m))
}

// DecodeRecord parses a single entry. Exactly one of the returned records is
// non-nil on success.
func DecodeRecord(data []byte) (*core.Expense, *core.MileageEntry, error) {
	var rec storedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("decode record: %w", err)
	}
	switch rec.Type {
	case core.KindExpense:
		e, err := rec.expense()
		if err != nil {
			return nil, nil, err
		}
		return &e, nil, nil
	case core.KindMileage:
		m, err := rec.mileage()
		if err != nil {
			return nil, nil, err
		}
		return nil, &m, nil
	default:
		return nil, nil, fmt.Errorf("decode record: unknown record type %q", rec.Type)
	}
}
