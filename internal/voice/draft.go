package voice

import (
	"github.com/shopspring/decimal"

	"triplog/internal/core"
)

// Draft is the parser output: one variant per intent, each carrying only the
// fields that intent can fill.
type Draft interface {
	Intent() Intent
	Base() Common
	isDraft()
}

// Common holds the fields every draft carries. Description is the raw
// transcript, kept verbatim for audit.
type Common struct {
	Description string    `json:"description"`
	Date        core.Date `json:"date"`
}

type MileageDraft struct {
	Common
	StartOdometer   decimal.Decimal `json:"startOdometer"`
	EndOdometer     decimal.Decimal `json:"endOdometer"`
	StartLocation   string          `json:"startLocation,omitempty"`
	EndLocation     string          `json:"endLocation,omitempty"`
	Attendees       string          `json:"attendees,omitempty"`
	BusinessPurpose string          `json:"businessPurpose,omitempty"`
}

type FuelDraft struct {
	Common
	Amount          decimal.Decimal `json:"amount"`
	Title           string          `json:"title,omitempty"`
	Location        string          `json:"location,omitempty"`
	OdometerReading decimal.Decimal `json:"odometerReading"`
}

type MealDraft struct {
	Common
	Amount          decimal.Decimal `json:"amount"`
	Title           string          `json:"title,omitempty"`
	Location        string          `json:"location,omitempty"`
	Attendees       string          `json:"attendees,omitempty"`
	BusinessPurpose string          `json:"businessPurpose,omitempty"`
}

type AccommodationDraft struct {
	Common
	Amount   decimal.Decimal `json:"amount"`
	Title    string          `json:"title,omitempty"`
	Location string          `json:"location,omitempty"`
}

type MiscDraft struct {
	Common
	Amount          decimal.Decimal `json:"amount"`
	Title           string          `json:"title,omitempty"`
	BusinessPurpose string          `json:"businessPurpose,omitempty"`
}

// GenericDraft comes from the free-form path where the category is inferred
// from keywords instead of declared.
type GenericDraft struct {
	Common
	Amount   decimal.Decimal `json:"amount"`
	Title    string          `json:"title,omitempty"`
	Category core.Category   `json:"category"`
}

func (MileageDraft) Intent() Intent       { return IntentMileage }
func (FuelDraft) Intent() Intent          { return IntentFuel }
func (MealDraft) Intent() Intent          { return IntentMeal }
func (AccommodationDraft) Intent() Intent { return IntentAccommodation }
func (MiscDraft) Intent() Intent          { return IntentMiscellaneous }
func (GenericDraft) Intent() Intent       { return IntentGeneric }

func (d MileageDraft) Base() Common       { return d.Common }
func (d FuelDraft) Base() Common          { return d.Common }
func (d MealDraft) Base() Common          { return d.Common }
func (d AccommodationDraft) Base() Common { return d.Common }
func (d MiscDraft) Base() Common          { return d.Common }
func (d GenericDraft) Base() Common       { return d.Common }

func (MileageDraft) isDraft()       {}
func (FuelDraft) isDraft()          {}
func (MealDraft) isDraft()          {}
func (AccommodationDraft) isDraft() {}
func (MiscDraft) isDraft()          {}
func (GenericDraft) isDraft()       {}
