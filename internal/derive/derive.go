// Package derive completes parser drafts into validated records.
package derive

import (
	"errors"
	"fmt"
	"time"

	"triplog/internal/core"
	"triplog/internal/voice"
)

// ErrIntentMismatch is returned when a draft is derived into the wrong record
// type, e.g. a mileage draft passed to Expense.
var ErrIntentMismatch = errors.New("draft intent does not match record type")

// WarnZeroAmount is attached to expenses saved with a zero amount.
const WarnZeroAmount = "Amount is zero. Check that this expense was really free."

// Deriver applies defaults, computes derived fields and assigns ids.
type Deriver struct {
	rates *core.RateTable
	ids   core.IDGenerator
	now   func() time.Time
}

type Option func(*Deriver)

// WithClock sets the clock used for drafts without a date.
func WithClock(now func() time.Time) Option {
	return func(d *Deriver) { d.now = now }
}

func New(rates *core.RateTable, ids core.IDGenerator, opts ...Option) *Deriver {
	if rates == nil {
		rates = core.DefaultRateTable()
	}
	if ids == nil {
		ids = core.UUIDGenerator{}
	}
	d := &Deriver{rates: rates, ids: ids, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Rates returns the table used to price mileage.
func (d *Deriver) Rates() *core.RateTable {
	return d.rates
}

// Expense completes an expense draft. declared overrides the category the
// draft's intent implies; pass "" to keep it.
func (d *Deriver) Expense(draft voice.Draft, declared core.Category) (core.Expense, error) {
	in, err := d.ExpenseInput(draft)
	if err != nil {
		return core.Expense{}, err
	}
	if declared != "" {
		in.Category = declared
	}
	return core.NewExpense(d.ids.NewID(), in)
}

// ExpenseInput applies defaults to an expense draft without validating it.
// Callers use it to show the completed form before the user confirms.
func (d *Deriver) ExpenseInput(draft voice.Draft) (core.ExpenseInput, error) {
	base := draft.Base()
	in := core.ExpenseInput{
		Date:        d.dateOf(base),
		Description: base.Description,
	}
	switch v := draft.(type) {
	case voice.FuelDraft:
		in.Category = core.Fuel
		in.Amount = v.Amount
		in.Title = or(v.Title, DefaultFuelStop)
		in.Location = or(v.Location, DefaultFuelStop)
		in.OdometerReading = v.OdometerReading
	case voice.MealDraft:
		in.Category = core.Meals
		in.Amount = v.Amount
		in.Title = or(v.Title, DefaultMealTitle)
		in.Location = or(v.Location, DefaultMealLocation)
		in.Attendees = or(v.Attendees, DefaultAttendees)
		in.BusinessPurpose = or(v.BusinessPurpose, DefaultMeetingPurpose)
	case voice.AccommodationDraft:
		in.Category = core.Accommodation
		in.Amount = v.Amount
		in.Title = or(v.Title, DefaultLodgingTitle)
		in.Location = or(v.Location, DefaultLodgingLocation)
	case voice.MiscDraft:
		in.Category = core.Miscellaneous
		in.Amount = v.Amount
		in.Title = or(v.Title, DefaultMiscTitle)
		in.BusinessPurpose = or(v.BusinessPurpose, DefaultMiscPurpose)
	case voice.GenericDraft:
		in.Category = v.Category
		if in.Category == "" {
			in.Category = core.Miscellaneous
		}
		in.Amount = v.Amount
		in.Title = or(v.Title, string(in.Category)+" expense")
	default:
		return core.ExpenseInput{}, fmt.Errorf("derive expense from %s draft: %w", draft.Intent(), ErrIntentMismatch)
	}
	return in, nil
}

// Mileage completes a mileage draft, pricing it with the rate in effect for
// the trip's year.
func (d *Deriver) Mileage(draft voice.Draft) (core.MileageEntry, error) {
	in, err := d.MileageInput(draft)
	if err != nil {
		return core.MileageEntry{}, err
	}
	return core.NewMileageEntry(d.ids.NewID(), in, d.rates)
}

// MileageInput applies defaults to a mileage draft without validating it.
func (d *Deriver) MileageInput(draft voice.Draft) (core.MileageInput, error) {
	v, ok := draft.(voice.MileageDraft)
	if !ok {
		return core.MileageInput{}, fmt.Errorf("derive mileage from %s draft: %w", draft.Intent(), ErrIntentMismatch)
	}
	return core.MileageInput{
		Date:            d.dateOf(v.Common),
		StartLocation:   or(v.StartLocation, DefaultStartLocation),
		EndLocation:     or(v.EndLocation, DefaultEndLocation),
		BusinessPurpose: or(v.BusinessPurpose, DefaultMeetingPurpose),
		Attendees:       or(v.Attendees, DefaultAttendees),
		Description:     v.Description,
		StartOdometer:   v.StartOdometer,
		EndOdometer:     v.EndOdometer,
	}, nil
}

// Warnings lists non-blocking problems with a saved expense.
func Warnings(e core.Expense) []string {
	var out []string
	if e.IsZeroAmount() {
		out = append(out, WarnZeroAmount)
	}
	return out
}

func (d *Deriver) dateOf(c voice.Common) core.Date {
	if c.Date.IsZero() {
		return core.DateOf(d.now())
	}
	return c.Date
}
