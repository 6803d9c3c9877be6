package voice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triplog/internal/core"
)

var fixedNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestParser() *Parser {
	return NewParser(WithClock(func() time.Time { return fixedNow }))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseMileageWithPriorOdometer(t *testing.T) {
	text := "Odometer 45230 to ABC Corp Toronto meeting with John Smith for contract discussion"
	prior := dec("45180")

	d := newTestParser().ParseWithHints(text, IntentMileage, Hints{PriorOdometer: &prior})

	m, ok := d.(MileageDraft)
	require.True(t, ok, "expected MileageDraft, got %T", d)
	assert.True(t, m.StartOdometer.Equal(dec("45180")))
	assert.True(t, m.EndOdometer.Equal(dec("45230")))
	assert.Equal(t, "ABC Corp Toronto meeting", m.EndLocation)
	assert.Equal(t, "John Smith", m.Attendees)
	assert.Equal(t, "contract discussion", m.BusinessPurpose)
	assert.Empty(t, m.StartLocation)
	assert.Equal(t, text, m.Description)
	assert.Equal(t, "2024-03-14", m.Date.String())
}

func TestParseMileageTwoReadings(t *testing.T) {
	d := newTestParser().Parse("from Home 100 to Ottawa office 180, purpose site visit", IntentMileage)

	m := d.(MileageDraft)
	assert.True(t, m.StartOdometer.Equal(dec("100")))
	assert.True(t, m.EndOdometer.Equal(dec("180")))
	assert.Equal(t, "Home 100", m.StartLocation)
	assert.Equal(t, "Ottawa office 180", m.EndLocation)
	assert.Equal(t, "site visit", m.BusinessPurpose)
}

func TestParseMileageSingleReadingWithoutHint(t *testing.T) {
	m := newTestParser().Parse("odometer 45230", IntentMileage).(MileageDraft)
	assert.True(t, m.StartOdometer.Equal(dec("45230")))
	assert.True(t, m.EndOdometer.IsZero())
}

func TestParseFuel(t *testing.T) {
	text := "65 dollars at Shell gas station odometer 45280"

	f, ok := newTestParser().Parse(text, IntentFuel).(FuelDraft)
	require.True(t, ok)
	assert.True(t, f.Amount.Equal(dec("65")))
	assert.Equal(t, "Shell gas station odometer 45280", f.Title)
	assert.Equal(t, "Shell gas station odometer 45280", f.Location)
	assert.True(t, f.OdometerReading.Equal(dec("45280")))
}

func TestParseMeal(t *testing.T) {
	text := "$42.50 at The Keg, with Jane Doe for quarterly review"

	m := newTestParser().Parse(text, IntentMeal).(MealDraft)
	assert.True(t, m.Amount.Equal(dec("42.50")))
	assert.Equal(t, "The Keg", m.Title)
	assert.Equal(t, "The Keg", m.Location)
	assert.Equal(t, "Jane Doe", m.Attendees)
	assert.Equal(t, "quarterly review", m.BusinessPurpose)
}

func TestParseMealMeetingFallback(t *testing.T) {
	m := newTestParser().Parse("lunch 30 meeting Bob", IntentMeal).(MealDraft)
	assert.Equal(t, "Bob", m.Attendees)
	assert.Empty(t, m.BusinessPurpose)
}

func TestParseAccommodation(t *testing.T) {
	cases := []struct {
		text     string
		title    string
		location string
	}{
		{"189 dollars at Hilton hotel in Toronto", "Hilton hotel", "Toronto"},
		{"stayed at Marriott Inn downtown, 210", "Marriott Inn downtown", ""},
		{"150 for Holiday Inn Express in Ottawa", "Holiday Inn Express", "Ottawa"},
		{"dinner 40", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			a := newTestParser().Parse(tc.text, IntentAccommodation).(AccommodationDraft)
			assert.Equal(t, tc.title, a.Title)
			assert.Equal(t, tc.location, a.Location)
		})
	}
}

func TestParseMiscellaneous(t *testing.T) {
	m := newTestParser().Parse("Parking downtown 18 for client visit", IntentMiscellaneous).(MiscDraft)
	assert.True(t, m.Amount.Equal(dec("18")))
	assert.Equal(t, "Parking", m.Title)
	assert.Equal(t, "client visit", m.BusinessPurpose)

	m = newTestParser().Parse("25 bridge fee", IntentMiscellaneous).(MiscDraft)
	assert.Empty(t, m.Title)
}

func TestParseGeneric(t *testing.T) {
	cases := []struct {
		text     string
		category core.Category
		title    string
		amount   string
	}{
		{"$45.00 gas at Esso", core.Fuel, "gas at Esso", "45.00"},
		{"lunch with team 30", core.Meals, "lunch with team", "30"},
		{"uber to airport 22", core.Transportation, "uber to airport", "22"},
		{"new laptop 1200", core.Equipment, "new laptop", "1200"},
		{"printer paper supplies 12", core.OfficeSupplies, "printer paper supplies", "12"},
		{"99", core.Miscellaneous, "Miscellaneous expense", "99"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			g := newTestParser().Parse(tc.text, IntentGeneric).(GenericDraft)
			assert.Equal(t, tc.category, g.Category)
			assert.Equal(t, tc.title, g.Title)
			assert.True(t, g.Amount.Equal(dec(tc.amount)), "amount %s", g.Amount)
		})
	}
}

func TestInferCategoryRuleOrder(t *testing.T) {
	// "gas" outranks "dinner": Fuel is checked first.
	assert.Equal(t, core.Fuel, InferCategory("dinner at the gas station", DefaultCategoryRules()))

	custom := []CategoryRule{{Category: core.Meals, Keywords: []string{"dinner"}}}
	assert.Equal(t, core.Meals, InferCategory("dinner at the gas station", custom))
	assert.Equal(t, core.Miscellaneous, InferCategory("anything", nil))
}

func TestParseIsTotal(t *testing.T) {
	p := newTestParser()
	inputs := []string{"", "   ", ",,,...", "to", "from , to .", strings.Repeat("at ", 500), "€€€ 1.2.3.4"}
	for _, in := range inputs {
		for _, intent := range Intents() {
			assert.NotPanics(t, func() {
				d := p.Parse(in, intent)
				assert.Equal(t, intent, d.Intent())
				assert.Equal(t, in, d.Base().Description)
			})
		}
	}
}

func TestExtractPhrase(t *testing.T) {
	cases := []struct {
		text, keyword, want string
	}{
		{"drove to Ottawa, then home", "to", "Ottawa"},
		{"drove TO Ottawa. Then home", "to", "Ottawa"},
		{"went into town to the office", "to", "the office"},
		{"to, the client to Kanata", "to", "Kanata"},
		{"paid 12.50 at Tim Hortons", "at", "Tim Hortons"},
		{"nothing here", "from", ""},
		{"ended at", "at", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractPhrase(tc.text, tc.keyword), "%q / %q", tc.text, tc.keyword)
	}
}

func TestExtractNumbers(t *testing.T) {
	nums := ExtractNumbers("paid $12.50 then 7 and 1,200")
	require.Len(t, nums, 4)
	assert.True(t, nums[0].Equal(dec("12.50")))
	assert.True(t, nums[1].Equal(dec("7")))
	assert.True(t, nums[2].Equal(dec("1")))
	assert.True(t, nums[3].Equal(dec("200")))
}

func TestParseIntent(t *testing.T) {
	i, err := ParseIntent(" Hotel ")
	require.NoError(t, err)
	assert.Equal(t, IntentAccommodation, i)

	i, err = ParseIntent("MILEAGE")
	require.NoError(t, err)
	assert.Equal(t, IntentMileage, i)

	_, err = ParseIntent("groceries")
	assert.Error(t, err)
}

func TestMissingFields(t *testing.T) {
	d := newTestParser().Parse("45 at Esso", IntentFuel)
	assert.Equal(t, []string{"odometerReading"}, MissingFields(d))
}

func TestPromptsAndConfirmations(t *testing.T) {
	assert.Equal(t, "Please say the fuel cost, location, and odometer reading.", Prompt(IntentFuel))
	assert.Equal(t, MsgPromptFallback, Prompt(IntentGeneric))
	assert.Equal(t, "Mileage entry added successfully", Confirmation(IntentMileage))
	assert.Equal(t, "Expense added successfully", Confirmation(IntentMeal))
}
