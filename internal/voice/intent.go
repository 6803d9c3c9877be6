// Package voice turns spoken transcripts into draft records.
//
// Parsing is lexical and deliberately literal: numerals are read left to
// right, prepositional phrases run from the first whole-word occurrence of
// their keyword to the end of the clause or the next extraction keyword.
// The parser never fails and never invents values; fields it cannot find
// stay empty (or zero for numerals) and are defaulted by package derive.
package voice

import (
	"fmt"
	"strings"

	"triplog/internal/core"
)

const (
	IntentMileage       Intent = "mileage"
	IntentFuel          Intent = "fuel"
	IntentMeal          Intent = "meal"
	IntentAccommodation Intent = "accommodation"
	IntentMiscellaneous Intent = "miscellaneous"
	IntentGeneric       Intent = "generic"
)

// Intent is the entry type the user picked before speaking.
type Intent string

var intents = []Intent{IntentMileage, IntentFuel, IntentMeal, IntentAccommodation, IntentMiscellaneous, IntentGeneric}

// Intents lists every supported intent.
func Intents() []Intent {
	return append([]Intent(nil), intents...)
}

// ParseIntent accepts the intent names case-insensitively. "hotel" and
// "other" are accepted as aliases used by the capture screen.
func ParseIntent(s string) (Intent, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "hotel":
		return IntentAccommodation, nil
	case "other", "misc":
		return IntentMiscellaneous, nil
	case "meals":
		return IntentMeal, nil
	}
	for _, i := range intents {
		if string(i) == key {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Category returns the category an expense intent files under. Mileage and
// generic intents have no fixed category.
func (i Intent) Category() (core.Category, bool) {
	switch i {
	case IntentFuel:
		return core.Fuel, true
	case IntentMeal:
		return core.Meals, true
	case IntentAccommodation:
		return core.Accommodation, true
	case IntentMiscellaneous:
		return core.Miscellaneous, true
	default:
		return "", false
	}
}
