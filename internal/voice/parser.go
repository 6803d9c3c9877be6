package voice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
)

// Hints carry context the transcript alone cannot supply.
type Hints struct {
	// PriorOdometer is the most recent recorded odometer reading. A mileage
	// transcript with a single numeral is read as the end of a trip that
	// started there.
	PriorOdometer *decimal.Decimal
}

// Parser extracts drafts from transcripts.
type Parser struct {
	now   func() time.Time
	rules []CategoryRule
}

type Option func(*Parser)

// WithClock sets the clock used to date drafts.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithCategoryRules replaces the free-form category rules.
func WithCategoryRules(rules []CategoryRule) Option {
	return func(p *Parser) { p.rules = rules }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now, rules: DefaultCategoryRules()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse extracts a draft for intent from text without hints.
func (p *Parser) Parse(text string, intent Intent) Draft {
	return p.ParseWithHints(text, intent, Hints{})
}

// ParseWithHints extracts a draft for intent from text. It never fails;
// unknown intents take the free-form path.
func (p *Parser) ParseWithHints(text string, intent Intent, hints Hints) Draft {
	base := Common{
		Description: text,
		Date:        core.DateOf(p.now()),
	}
	nums := ExtractNumbers(text)

	switch intent {
	case IntentMileage:
		return parseMileage(base, text, nums, hints)
	case IntentFuel:
		return FuelDraft{
			Common:          base,
			Amount:          numberAt(nums, 0),
			OdometerReading: numberAt(nums, 1),
			Location:        ExtractPhrase(text, "at"),
			Title:           ExtractPhrase(text, "at"),
		}
	case IntentMeal:
		return MealDraft{
			Common:          base,
			Amount:          numberAt(nums, 0),
			Title:           ExtractPhrase(text, "at"),
			Location:        ExtractPhrase(text, "at"),
			Attendees:       attendees(text),
			BusinessPurpose: purpose(text),
		}
	case IntentAccommodation:
		return AccommodationDraft{
			Common:   base,
			Amount:   numberAt(nums, 0),
			Title:    ExtractLodging(text),
			Location: ExtractPhrase(text, "in"),
		}
	case IntentMiscellaneous:
		return MiscDraft{
			Common:          base,
			Amount:          numberAt(nums, 0),
			Title:           miscTitle(text),
			BusinessPurpose: purpose(text),
		}
	default:
		category := InferCategory(text, p.rules)
		title := stripNumerals(text)
		if title == "" {
			title = string(category) + " expense"
		}
		return GenericDraft{
			Common:   base,
			Amount:   numberAt(nums, 0),
			Title:    title,
			Category: category,
		}
	}
}

func parseMileage(base Common, text string, nums []decimal.Decimal, hints Hints) MileageDraft {
	d := MileageDraft{
		Common:          base,
		StartLocation:   ExtractPhrase(text, "from"),
		EndLocation:     ExtractPhrase(text, "to"),
		Attendees:       attendees(text),
		BusinessPurpose: purpose(text),
	}
	switch {
	case len(nums) >= 2:
		d.StartOdometer, d.EndOdometer = nums[0], nums[1]
	case len(nums) == 1 && hints.PriorOdometer != nil:
		d.StartOdometer, d.EndOdometer = *hints.PriorOdometer, nums[0]
	default:
		d.StartOdometer = numberAt(nums, 0)
	}
	return d
}

func attendees(text string) string {
	if s := ExtractPhrase(text, "with"); s != "" {
		return s
	}
	return ExtractPhrase(text, "meeting")
}

func purpose(text string) string {
	if s := ExtractPhrase(text, "for"); s != "" {
		return s
	}
	return ExtractPhrase(text, "purpose")
}

// Transcript trims surrounding whitespace from raw recogniser output. The
// rest is kept verbatim, since it becomes the record description.
func Transcript(raw string) string {
	return strings.TrimSpace(raw)
}
